package visitors

import (
	"bytes"
	"fmt"
	"net/http"

	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// PrintGatePass renders a printable pass for a visitor entry with the
// scannable code embedded.
func PrintGatePass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	visitorID := ps.ByName("visitorId")

	reg, err := findRegistry(r.Context(), societyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	entry := latestByVisitorID(reg.Visitors, visitorID)
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}

	qrPNG, err := qrcode.Encode(entry.VisitorID, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Visitor Gate Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Visitor Code: %s", entry.VisitorID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", entry.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Block/Flat: %s / %s", entry.Block, entry.FlatNo))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Role: %s", entry.Role))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=gatepass-"+entry.VisitorID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
