package documents

import (
	"net/http"
	"path/filepath"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const uploadDir = "static/societydocs"

type Document struct {
	DocumentID string    `json:"documentId" bson:"documentId"`
	SocietyID  string    `json:"societyId" bson:"societyId"`
	Title      string    `json:"title" bson:"title"`
	Category   string    `json:"category,omitempty" bson:"category,omitempty"`
	FileURL    string    `json:"fileUrl" bson:"fileUrl"`
	UploadedBy string    `json:"uploadedBy,omitempty" bson:"uploadedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

func UploadDocument(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(15 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	d := Document{
		DocumentID: uuid.NewString(),
		SocietyID:  r.FormValue("societyId"),
		Title:      r.FormValue("title"),
		Category:   r.FormValue("category"),
		UploadedBy: r.FormValue("userId"),
		CreatedAt:  time.Now(),
	}
	if d.SocietyID == "" || d.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Document file is required")
		return
	}
	defer file.Close()

	filename, err := utils.SaveFile(file, header, uploadDir)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save document")
		return
	}
	d.FileURL = filemgr.PublicPath("societydocs", filename)

	if _, err := db.DocumentsCollection.InsertOne(r.Context(), d); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store document")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "document": d})
}

func GetDocumentsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cur, err := db.DocumentsCollection.Find(r.Context(), bson.M{"societyId": ps.ByName("societyId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []Document
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []Document{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "documents": out})
}

func DeleteDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var d Document
	err := db.DocumentsCollection.FindOne(r.Context(), bson.M{"documentId": ps.ByName("documentId")}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Document not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := db.DocumentsCollection.DeleteOne(r.Context(), bson.M{"documentId": d.DocumentID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}
	utils.RemoveFileIfExists(filepath.Join(uploadDir, filepath.Base(d.FileURL)))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Document deleted successfully"})
}
