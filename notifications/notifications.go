package notifications

import (
	"net/http"

	"vasati/db"
	"vasati/models"
	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetNotificationsBySociety lists the derived admin notifications, newest
// first.
func GetNotificationsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(100)
	cur, err := db.NotificationsCollection.Find(r.Context(),
		bson.M{"societyId": ps.ByName("societyId")}, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []models.Notification
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []models.Notification{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "notifications": out})
}

func MarkNotificationRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.NotificationsCollection.UpdateOne(r.Context(),
		bson.M{"notificationId": ps.ByName("notificationId")},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Notification marked as read"})
}

func MarkAllRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	_, err := db.NotificationsCollection.UpdateMany(r.Context(),
		bson.M{"societyId": ps.ByName("societyId"), "read": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "All notifications marked as read"})
}

func DeleteNotification(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.NotificationsCollection.DeleteOne(r.Context(),
		bson.M{"notificationId": ps.ByName("notificationId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete notification")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notification not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Notification deleted successfully"})
}
