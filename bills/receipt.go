package bills

import (
	"bytes"
	"fmt"
	"net/http"

	"vasati/db"
	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DownloadReceipt renders a payment receipt for a paid bill.
func DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var b Bill
	err := db.BillsCollection.FindOne(r.Context(), bson.M{"billId": ps.ByName("billId")}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Bill not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if b.Status != StatusPaid {
		utils.RespondWithError(w, http.StatusBadRequest, "Receipt is only available for paid bills")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payment Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Receipt No: %s", b.BillID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Title: %s", b.Title))
	pdf.Ln(8)
	if b.Block != "" || b.FlatNo != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Block/Flat: %s / %s", b.Block, b.FlatNo))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Amount: %.2f", b.Amount))
	pdf.Ln(8)
	if b.PaidAt != nil {
		pdf.Cell(0, 10, fmt.Sprintf("Paid on: %s", b.PaidAt.Format("02 Jan 2006 15:04")))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, "Status: "+b.Status)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+b.BillID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
