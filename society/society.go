package society

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vasati/db"
	"vasati/globals"
	"vasati/idgen"
	"vasati/models"
	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func CreateSociety(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var soc models.Society
	if err := json.NewDecoder(r.Body).Decode(&soc); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if soc.Name == "" {
		http.Error(w, "Society name is required", http.StatusBadRequest)
		return
	}

	adminID, _ := r.Context().Value(globals.UserIDKey).(string)
	soc.AdminID = adminID
	soc.CreatedAt = time.Now()

	// The stored id carries an "s" prefix, so the persisted check runs here
	// against the prefixed value rather than inside idgen.
	code, err := idgen.Code(r.Context(), "society", 6, nil, "")
	if err != nil {
		http.Error(w, "Failed to generate society id", http.StatusInternalServerError)
		return
	}
	soc.SocietyID = "s" + code
	if n, err := db.SocietiesCollection.CountDocuments(r.Context(), bson.M{"societyId": soc.SocietyID}); err != nil || n > 0 {
		http.Error(w, "Failed to generate society id", http.StatusInternalServerError)
		return
	}

	if _, err := db.SocietiesCollection.InsertOne(r.Context(), soc); err != nil {
		http.Error(w, "Failed to create society", http.StatusInternalServerError)
		return
	}

	if adminID != "" {
		_, _ = db.UserCollection.UpdateOne(r.Context(),
			bson.M{"userid": adminID},
			bson.M{"$set": bson.M{"societyId": soc.SocietyID}, "$addToSet": bson.M{"role": "admin"}})
	}

	utils.SendResponse(w, http.StatusCreated, soc, "Society created", nil)
}

func GetSociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")

	var soc models.Society
	err := db.SocietiesCollection.FindOne(r.Context(), bson.M{"societyId": societyID}).Decode(&soc)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "society": soc})
}

func ListSocieties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.SocietiesCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	var societies []models.Society
	if err := cur.All(ctx, &societies); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "societies": societies})
}
