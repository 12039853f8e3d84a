package notices

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"vasati/db"
	"vasati/models"
	"vasati/mq"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Notice struct {
	NoticeID    string    `json:"noticeId" bson:"noticeId"`
	SocietyID   string    `json:"societyId" bson:"societyId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// Create persists the notice and drops an admin notification on the outbox.
// The realtime gateway calls this too, so it stays handler-free.
func Create(ctx context.Context, n *Notice) error {
	if n.SocietyID == "" || n.Title == "" {
		return errors.New("societyId and title are required")
	}
	n.NoticeID = uuid.NewString()
	n.CreatedAt = time.Now()
	if _, err := db.NoticesCollection.InsertOne(ctx, n); err != nil {
		return err
	}
	mq.Emit(ctx, models.NotificationEvent{
		SocietyID: n.SocietyID,
		Category:  "notice",
		Title:     "New Notice",
		Message:   n.Title,
		EntityID:  n.NoticeID,
	})
	return nil
}

func ListBySociety(ctx context.Context, societyID string) ([]Notice, error) {
	cur, err := db.NoticesCollection.Find(ctx, bson.M{"societyId": societyID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Notice
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Notice{}
	}
	return out, nil
}

func CreateNotice(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var n Notice
	if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := Create(r.Context(), &n); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "notice": n})
}

func GetNoticesBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	out, err := ListBySociety(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "notices": out})
}

func UpdateNotice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	set := bson.M{}
	if body.Title != "" {
		set["title"] = body.Title
	}
	if body.Description != "" {
		set["description"] = body.Description
	}
	if body.Category != "" {
		set["category"] = body.Category
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	res, err := db.NoticesCollection.UpdateOne(r.Context(),
		bson.M{"noticeId": ps.ByName("noticeId")},
		bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update notice")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notice not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Notice updated successfully"})
}

func DeleteNotice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.NoticesCollection.DeleteOne(r.Context(), bson.M{"noticeId": ps.ByName("noticeId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete notice")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Notice not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Notice deleted successfully"})
}

func GetNoticeByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var n Notice
	err := db.NoticesCollection.FindOne(r.Context(), bson.M{"noticeId": ps.ByName("noticeId")}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Notice not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "notice": n})
}
