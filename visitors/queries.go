package visitors

import (
	"net/http"
	"time"

	"vasati/db"
	"vasati/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func GetAllVisitorsBySocietyID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in getting visitors")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "visitors": reg.Visitors})
}

func GetVisitorByIDAndSocietyID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	entry := latestByVisitorID(reg.Visitors, ps.ByName("visitorId"))
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "visitor": entry})
}

func GetVisitorsLast24Hours(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in getting visitors")
		return
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	recent := []Visitor{}
	for _, v := range reg.Visitors {
		if v.CheckInDateTime != nil && v.CheckInDateTime.After(cutoff) {
			recent = append(recent, v)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "visitors": recent})
}

// GetFrequentVisitors filters the registry; frequent visitors are plain
// entries flagged for quick repeat entry, not a separate collection.
func GetFrequentVisitors(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "No frequent visitors found for the given criteria")
		return
	}

	block, flatNo := ps.ByName("block"), ps.ByName("flatNo")
	frequent := []Visitor{}
	for _, v := range reg.Visitors {
		if v.Block == block && v.FlatNo == flatNo && v.Role == "Guest" && v.IsFrequent {
			frequent = append(frequent, v)
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "frequentVisitors": frequent})
}

// latestFrequentEntry picks the most recent frequent entry for the flat; the
// visitor code repeats across cycles, so deletion must target one entry only.
func latestFrequentEntry(entries []Visitor, visitorID, block, flatNo string) *Visitor {
	for i := len(entries) - 1; i >= 0; i-- {
		v := &entries[i]
		if v.VisitorID == visitorID && v.Block == block && v.FlatNo == flatNo && v.Role == "Guest" && v.IsFrequent {
			return v
		}
	}
	return nil
}

// DeleteFrequentVisitor removes the single matching entry, not all history
// for the visitor code.
func DeleteFrequentVisitor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	reg, err := findRegistry(r.Context(), societyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}

	entry := latestFrequentEntry(reg.Visitors, ps.ByName("visitorId"), ps.ByName("block"), ps.ByName("flatNo"))
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}

	// entryId is unique per cycle, so the pull cannot touch other history.
	res, err := db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID},
		bson.M{"$pull": bson.M{"visitors": bson.M{"entryId": entry.EntryID}}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Visitor deleted successfully"})
}

// GetPreApprovedVisitors lists entries still in Waiting for a flat.
func GetPreApprovedVisitors(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found")
		return
	}

	block, flatNo := ps.ByName("block"), ps.ByName("flatNo")
	preApproved := []Visitor{}
	for _, v := range reg.Visitors {
		if v.Block == block && v.FlatNo == flatNo && v.Status == StatusWaiting {
			preApproved = append(preApproved, v)
		}
	}
	if len(preApproved) == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No pre-approved visitors found for the given criteria")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "preApprovedVisitors": preApproved})
}

// GetVisitorsByFlat lists completed visits for a flat.
func GetVisitorsByFlat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reg, err := findRegistry(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found")
		return
	}

	block, flatNo := ps.ByName("block"), ps.ByName("flatNo")
	visits := []Visitor{}
	for _, v := range reg.Visitors {
		if v.Block == block && v.FlatNo == flatNo && v.Status == StatusCheckOut {
			visits = append(visits, v)
		}
	}
	if len(visits) == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "No visitors found for the given criteria")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "visitors": visits})
}

// DeleteVisitorEntry is the explicit admin purge of a single entry.
func DeleteVisitorEntry(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	entryID := ps.ByName("entryId")

	// Revoke the QR asset before the record disappears.
	reg, err := findRegistry(r.Context(), societyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	for _, v := range reg.Visitors {
		if v.EntryID == entryID {
			revokeQR(v.QRImage)
			break
		}
	}

	res, err := db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID},
		bson.M{"$pull": bson.M{"visitors": bson.M{"entryId": entryID}}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Visitor deleted successfully"})
}
