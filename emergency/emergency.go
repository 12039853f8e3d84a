package emergency

import (
	"encoding/json"
	"net/http"
	"time"

	"vasati/db"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

type Contact struct {
	ContactID   string    `json:"contactId" bson:"contactId"`
	SocietyID   string    `json:"societyId" bson:"societyId"`
	Name        string    `json:"name" bson:"name"`
	Designation string    `json:"designation,omitempty" bson:"designation,omitempty"`
	PhoneNumber string    `json:"phoneNumber" bson:"phoneNumber"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

func CreateContact(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var c Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if c.SocietyID == "" || c.Name == "" || c.PhoneNumber == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	c.ContactID = uuid.NewString()
	c.CreatedAt = time.Now()
	if _, err := db.EmergencyCollection.InsertOne(r.Context(), c); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to add contact")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "contact": c})
}

func GetContactsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cur, err := db.EmergencyCollection.Find(r.Context(), bson.M{"societyId": ps.ByName("societyId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []Contact
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []Contact{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "contacts": out})
}

func UpdateContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body struct {
		Name        string `json:"name"`
		Designation string `json:"designation"`
		PhoneNumber string `json:"phoneNumber"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	set := bson.M{}
	if body.Name != "" {
		set["name"] = body.Name
	}
	if body.Designation != "" {
		set["designation"] = body.Designation
	}
	if body.PhoneNumber != "" {
		set["phoneNumber"] = body.PhoneNumber
	}
	if body.Category != "" {
		set["category"] = body.Category
	}
	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	res, err := db.EmergencyCollection.UpdateOne(r.Context(),
		bson.M{"contactId": ps.ByName("contactId")},
		bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Contact not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Contact updated successfully"})
}

func DeleteContact(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.EmergencyCollection.DeleteOne(r.Context(), bson.M{"contactId": ps.ByName("contactId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Contact not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Contact deleted successfully"})
}
