package complaints

import (
	"encoding/json"
	"net/http"
	"time"

	"vasati/db"
	"vasati/models"
	"vasati/mq"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

type Complaint struct {
	ComplaintID string    `json:"complaintId" bson:"complaintId"`
	SocietyID   string    `json:"societyId" bson:"societyId"`
	UserID      string    `json:"userId" bson:"userId"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Subject     string    `json:"subject" bson:"subject"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Status      string    `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

func CreateComplaint(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c Complaint
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if c.SocietyID == "" || c.UserID == "" || c.Subject == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	c.ComplaintID = uuid.NewString()
	c.Status = StatusPending
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt

	if _, err := db.ComplaintsCollection.InsertOne(r.Context(), c); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register complaint")
		return
	}

	mq.Emit(r.Context(), models.NotificationEvent{
		SocietyID: c.SocietyID,
		Category:  "complaint",
		Title:     "New Complaint",
		Message:   c.Subject,
		EntityID:  c.ComplaintID,
	})

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "complaint": c})
}

func GetComplaintsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cur, err := db.ComplaintsCollection.Find(r.Context(), bson.M{"societyId": ps.ByName("societyId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []Complaint
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []Complaint{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "complaints": out})
}

// UpdateComplaintStatus only moves a complaint between the known states.
func UpdateComplaintStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	switch body.Status {
	case StatusPending, StatusInProgress, StatusResolved:
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	res, err := db.ComplaintsCollection.UpdateOne(r.Context(),
		bson.M{"complaintId": ps.ByName("complaintId")},
		bson.M{"$set": bson.M{"status": body.Status, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update complaint")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Complaint not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Complaint status updated"})
}

func DeleteComplaint(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.ComplaintsCollection.DeleteOne(r.Context(), bson.M{"complaintId": ps.ByName("complaintId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete complaint")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Complaint not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Complaint deleted successfully"})
}
