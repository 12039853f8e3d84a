package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const uploadDir = "static/profilepic"

// Profile is a resident's directory entry within a society.
type Profile struct {
	UserID    string    `json:"userId" bson:"userId"`
	SocietyID string    `json:"societyId" bson:"societyId"`
	Name      string    `json:"name" bson:"name"`
	Phone     string    `json:"phoneNumber" bson:"phoneNumber"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Block     string    `json:"block" bson:"block"`
	FlatNo    string    `json:"flatNo" bson:"flatNo"`
	Members   []string  `json:"members,omitempty" bson:"members,omitempty"`
	Vehicles  []string  `json:"vehicles,omitempty" bson:"vehicles,omitempty"`
	Avatar    string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

func CreateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	p := Profile{
		UserID:    r.FormValue("userId"),
		SocietyID: r.FormValue("societyId"),
		Name:      r.FormValue("name"),
		Phone:     r.FormValue("phoneNumber"),
		Email:     r.FormValue("email"),
		Block:     r.FormValue("block"),
		FlatNo:    r.FormValue("flatNo"),
		CreatedAt: time.Now(),
	}
	if p.UserID == "" || p.SocietyID == "" || p.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		if !utils.ValidateImageFileType(w, header) {
			return
		}
		filename, err := filemgr.SaveImage(file, header, uploadDir)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save avatar")
			return
		}
		p.Avatar = filemgr.PublicPath("profilepic", filename)
	}

	var existing Profile
	err := db.ProfilesCollection.FindOne(r.Context(), bson.M{"societyId": p.SocietyID, "userId": p.UserID}).Decode(&existing)
	if err == nil {
		utils.RespondWithError(w, http.StatusConflict, "Profile already exists")
		return
	} else if err != mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := db.ProfilesCollection.InsertOne(r.Context(), p); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "profile": p})
}

func GetProfilesBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.ProfilesCollection.Find(ctx, bson.M{"societyId": societyID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	var profiles []Profile
	if err := cur.All(ctx, &profiles); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if profiles == nil {
		utils.RespondWithError(w, http.StatusNotFound, "No residents found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "residents": profiles})
}

func GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	userID := ps.ByName("userId")

	var p Profile
	err := db.ProfilesCollection.FindOne(r.Context(), bson.M{"societyId": societyID, "userId": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Resident not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "profile": p})
}

func UpdateProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	userID := ps.ByName("userId")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	// Only whitelisted fields may change through this path.
	update := bson.M{}
	for _, k := range []string{"name", "phoneNumber", "email", "block", "flatNo", "members", "vehicles"} {
		if v, ok := fields[k]; ok {
			update[k] = v
		}
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No updatable fields")
		return
	}
	update["updatedAt"] = time.Now()

	res, err := db.ProfilesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID, "userId": userID},
		bson.M{"$set": update})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Resident not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Profile updated"})
}

func UpdateAvatar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	userID := ps.ByName("userId")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Avatar file is required")
		return
	}
	defer file.Close()
	if !utils.ValidateImageFileType(w, header) {
		return
	}

	var existing Profile
	err = db.ProfilesCollection.FindOne(r.Context(), bson.M{"societyId": societyID, "userId": userID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Resident not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	filename, err := filemgr.SaveImage(file, header, uploadDir)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}
	avatar := filemgr.PublicPath("profilepic", filename)

	_, err = db.ProfilesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID, "userId": userID},
		bson.M{"$set": bson.M{"avatar": avatar, "updatedAt": time.Now()}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update avatar")
		return
	}

	// Old avatar file goes away best-effort.
	filemgr.RemoveImage(uploadDir, filepath.Base(existing.Avatar))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "avatar": avatar})
}

func DeleteProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	userID := ps.ByName("userId")

	var existing Profile
	err := db.ProfilesCollection.FindOne(r.Context(), bson.M{"societyId": societyID, "userId": userID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Resident not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := db.ProfilesCollection.DeleteOne(r.Context(), bson.M{"societyId": societyID, "userId": userID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	filemgr.RemoveImage(uploadDir, filepath.Base(existing.Avatar))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Resident deleted"})
}
