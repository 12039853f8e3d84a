package bills

import (
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	uploadDir = "static/billdoc"

	StatusUnpaid = "Unpaid"
	StatusPaid   = "Paid"
)

type Bill struct {
	BillID    string     `json:"billId" bson:"billId"`
	SocietyID string     `json:"societyId" bson:"societyId"`
	Title     string     `json:"title" bson:"title"`
	Category  string     `json:"category,omitempty" bson:"category,omitempty"`
	Amount    float64    `json:"amount" bson:"amount"`
	Block     string     `json:"block,omitempty" bson:"block,omitempty"`
	FlatNo    string     `json:"flatNo,omitempty" bson:"flatNo,omitempty"`
	DueDate   string     `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Document  string     `json:"document,omitempty" bson:"document,omitempty"`
	Status    string     `json:"status" bson:"status"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	PaidAt    *time.Time `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}

// CreateBill accepts multipart input; an attached document (scan, invoice)
// is optional.
func CreateBill(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	b := Bill{
		BillID:    uuid.NewString(),
		SocietyID: r.FormValue("societyId"),
		Title:     r.FormValue("title"),
		Category:  r.FormValue("category"),
		Block:     r.FormValue("block"),
		FlatNo:    r.FormValue("flatNo"),
		DueDate:   r.FormValue("dueDate"),
		Status:    StatusUnpaid,
		CreatedAt: time.Now(),
	}
	if b.SocietyID == "" || b.Title == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if v := r.FormValue("amount"); v != "" {
		b.Amount, _ = strconv.ParseFloat(v, 64)
	}

	if file, header, err := r.FormFile("document"); err == nil {
		defer file.Close()
		filename, err := utils.SaveFile(file, header, uploadDir)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save document")
			return
		}
		b.Document = filemgr.PublicPath("billdoc", filename)
	}

	if _, err := db.BillsCollection.InsertOne(r.Context(), b); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create bill")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "bill": b})
}

func GetBillsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listBills(w, r, bson.M{"societyId": ps.ByName("societyId")})
}

// GetBillsByFlat returns the maintenance trail of one flat.
func GetBillsByFlat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listBills(w, r, bson.M{
		"societyId": ps.ByName("societyId"),
		"block":     ps.ByName("block"),
		"flatNo":    ps.ByName("flatNo"),
	})
}

func listBills(w http.ResponseWriter, r *http.Request, filter bson.M) {
	cur, err := db.BillsCollection.Find(r.Context(), filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(r.Context())

	var out []Bill
	if err := cur.All(r.Context(), &out); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if out == nil {
		out = []Bill{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bills": out})
}

// MarkBillPaid flips an unpaid bill to paid exactly once.
func MarkBillPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	now := time.Now()
	res, err := db.BillsCollection.UpdateOne(r.Context(),
		bson.M{"billId": ps.ByName("billId"), "status": StatusUnpaid},
		bson.M{"$set": bson.M{"status": StatusPaid, "paidAt": now}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update bill")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusConflict, "Bill not found or already paid")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Bill marked as paid"})
}

func DeleteBill(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var b Bill
	err := db.BillsCollection.FindOne(r.Context(), bson.M{"billId": ps.ByName("billId")}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Bill not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := db.BillsCollection.DeleteOne(r.Context(), bson.M{"billId": b.BillID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete bill")
		return
	}
	if b.Document != "" {
		utils.RemoveFileIfExists(filepath.Join(uploadDir, filepath.Base(b.Document)))
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Bill deleted successfully"})
}
