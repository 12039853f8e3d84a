package market

import (
	"log"
	"net/http"
	"path/filepath"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/globals"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const uploadDir = "static/marketpic"

type Listing struct {
	ListingID   string    `json:"listingId" bson:"listingId"`
	SocietyID   string    `json:"societyId" bson:"societyId"`
	UserID      string    `json:"userId" bson:"userId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Price       string    `json:"price,omitempty" bson:"price,omitempty"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Contact     string    `json:"contact,omitempty" bson:"contact,omitempty"`
	Images      []string  `json:"images" bson:"images"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// CreateListing accepts multipart input with up to a handful of pictures.
func CreateListing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	l := Listing{
		ListingID:   uuid.NewString(),
		SocietyID:   r.FormValue("societyId"),
		UserID:      r.FormValue("userId"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		Contact:     r.FormValue("contact"),
		Images:      []string{},
		CreatedAt:   time.Now(),
	}
	if l.SocietyID == "" || l.UserID == "" || l.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["images"] {
			file, err := hdr.Open()
			if err != nil {
				continue
			}
			filename, err := filemgr.SaveImage(file, hdr, uploadDir)
			file.Close()
			if err != nil {
				log.Printf("market: save image: %v", err)
				continue
			}
			l.Images = append(l.Images, filemgr.PublicPath("marketpic", filename))
		}
	}

	if _, err := db.MarketCollection.InsertOne(r.Context(), l); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create listing")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "listing": l})
}

func GetListingsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cur, err := db.MarketCollection.Find(r.Context(), bson.M{"societyId": ps.ByName("societyId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []Listing
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []Listing{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "listings": out})
}

// DeleteListing removes a listing and its pictures. Only the seller may
// delete their own listing.
func DeleteListing(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, _ := r.Context().Value(globals.UserIDKey).(string)

	var l Listing
	err := db.MarketCollection.FindOne(r.Context(), bson.M{"listingId": ps.ByName("listingId")}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Listing not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if requester == "" || requester != l.UserID {
		utils.RespondWithError(w, http.StatusForbidden, "Only the seller can delete this listing")
		return
	}

	if _, err := db.MarketCollection.DeleteOne(r.Context(), bson.M{"listingId": l.ListingID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete listing")
		return
	}
	for _, img := range l.Images {
		filemgr.RemoveImage(uploadDir, filepath.Base(img))
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Listing deleted successfully"})
}
