package visitors

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/idgen"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const uploadDir = "static/visitorpic"

// Visitor statuses
const (
	StatusWaiting  = "Waiting"
	StatusCheckIn  = "Check In"
	StatusCheckOut = "Check Out"
	StatusReject   = "Reject"
)

// Approval flags (orthogonal to status)
const (
	AccessWait  = "Wait"
	AccessAllow = "Allow"
	AccessDeny  = "Deny"
)

// Visitor is one entry in a society's registry. A visitor who re-enters
// after a completed cycle gets a fresh entry; history is never rewritten.
type Visitor struct {
	EntryID          string     `json:"entryId" bson:"entryId"`
	VisitorID        string     `json:"visitorId" bson:"visitorId"`
	Name             string     `json:"name" bson:"name"`
	PhoneNumber      string     `json:"phoneNumber" bson:"phoneNumber"`
	Block            string     `json:"block" bson:"block"`
	FlatNo           string     `json:"flatNo" bson:"flatNo"`
	Role             string     `json:"role" bson:"role"` // Guest, Delivery, Service, Cab, Others
	Reason           string     `json:"reason,omitempty" bson:"reason,omitempty"`
	Details          string     `json:"details,omitempty" bson:"details,omitempty"`
	Company          string     `json:"company,omitempty" bson:"company,omitempty"`
	Date             string     `json:"date,omitempty" bson:"date,omitempty"`
	Status           string     `json:"status" bson:"status"`
	UserAccess       string     `json:"userAccess" bson:"userAccess"`
	CheckInDateTime  *time.Time `json:"checkInDateTime,omitempty" bson:"checkInDateTime,omitempty"`
	CheckOutDateTime *time.Time `json:"checkOutDateTime,omitempty" bson:"checkOutDateTime,omitempty"`
	InGateNumber     string     `json:"inGateNumber,omitempty" bson:"inGateNumber,omitempty"`
	OutGateNumber    string     `json:"outGateNumber,omitempty" bson:"outGateNumber,omitempty"`
	InVehicleNumber  string     `json:"inVehicleNumber,omitempty" bson:"inVehicleNumber,omitempty"`
	OutVehicleNumber string     `json:"outVehicleNumber,omitempty" bson:"outVehicleNumber,omitempty"`
	IsFrequent       bool       `json:"isFrequent" bson:"isFrequent"`
	Pictures         string     `json:"pictures,omitempty" bson:"pictures,omitempty"`
	QRImage          string     `json:"qrImage,omitempty" bson:"qrImage,omitempty"`
}

// Registry is the single per-society document holding all visitor entries.
type Registry struct {
	SocietyID string    `json:"societyId" bson:"societyId"`
	Visitors  []Visitor `json:"visitors" bson:"visitors"`
}

// checkInAction is what a check-in request should do to the most recent
// entry for a visitor code.
type checkInAction int

const (
	actionConflict checkInAction = iota // open entry: reject
	actionAppend                        // completed cycle: new entry
	actionUpdate                        // untouched entry: mutate in place
)

// decideCheckIn reproduces the registry's core rule: an open entry blocks
// re-entry, a completed cycle starts a new entry, and an entry with neither
// timestamp is checked in where it stands.
func decideCheckIn(v Visitor) checkInAction {
	switch {
	case v.CheckInDateTime != nil && v.CheckOutDateTime == nil:
		return actionConflict
	case v.CheckInDateTime != nil && v.CheckOutDateTime != nil:
		return actionAppend
	default:
		return actionUpdate
	}
}

// latestByVisitorID returns the most recent entry carrying the code, or nil.
// Entries are appended in order, so the last match wins.
func latestByVisitorID(entries []Visitor, visitorID string) *Visitor {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].VisitorID == visitorID {
			return &entries[i]
		}
	}
	return nil
}

func findRegistry(ctx context.Context, societyID string) (*Registry, error) {
	var reg Registry
	err := db.VisitorsCollection.FindOne(ctx, bson.M{"societyId": societyID}).Decode(&reg)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CreateVisitor registers a new entry and provisions its QR code in a second
// phase. A QR failure leaves the entry without a code; it is not rolled back.
func CreateVisitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "An error occurred in uploading files")
		return
	}

	societyID := r.FormValue("societyId")
	v := Visitor{
		EntryID:     uuid.NewString(),
		Name:        r.FormValue("name"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Block:       r.FormValue("block"),
		FlatNo:      r.FormValue("flatNo"),
		Role:        r.FormValue("role"),
		Reason:      r.FormValue("reason"),
		Details:     r.FormValue("details"),
		Company:     r.FormValue("company"),
		Date:        r.FormValue("date"),
		Status:      r.FormValue("status"),
		UserAccess:  r.FormValue("userAccess"),

		InGateNumber:    r.FormValue("inGateNumber"),
		InVehicleNumber: r.FormValue("inVehicleNumber"),
	}
	if societyID == "" || v.Name == "" || v.PhoneNumber == "" || v.Block == "" || v.FlatNo == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if v.Role == "" {
		v.Role = "Guest"
	}
	if v.Status == "" {
		v.Status = StatusWaiting
	}
	if v.UserAccess == "" {
		v.UserAccess = AccessWait
	}
	v.IsFrequent = r.FormValue("isFrequent") == "true"

	// "1" means the gate is checking the visitor in as it registers them.
	if r.FormValue("checkInDateTime") == "1" {
		now := time.Now()
		v.CheckInDateTime = &now
	}

	if file, header, err := r.FormFile("pictures"); err == nil {
		defer file.Close()
		if !utils.ValidateImageFileType(w, header) {
			return
		}
		filename, err := filemgr.SaveImage(file, header, uploadDir)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save picture")
			return
		}
		v.Pictures = filemgr.PublicPath("visitorpic", filename)
	}

	code, err := idgen.Code(r.Context(), "visitor", 6, db.VisitorsCollection, "visitors.visitorId")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate visitor id")
		return
	}
	v.VisitorID = code

	// Phase one: persist the entry.
	opts := options.Update().SetUpsert(true)
	_, err = db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID},
		bson.M{"$push": bson.M{"visitors": v}},
		opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in creating visitor")
		return
	}

	// Phase two: attach the scannable code.
	qrURL, err := provisionQR(v.VisitorID)
	if err != nil {
		log.Printf("visitors: QR provisioning failed for %s: %v", v.VisitorID, err)
	} else {
		_, err = db.VisitorsCollection.UpdateOne(r.Context(),
			bson.M{"societyId": societyID, "visitors.visitorId": v.VisitorID},
			bson.M{"$set": bson.M{"visitors.$.qrImage": qrURL}})
		if err != nil {
			log.Printf("visitors: QR attach failed for %s: %v", v.VisitorID, err)
		} else {
			v.QRImage = qrURL
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"message": "Visitor created successfully",
		"data":    utils.M{"visitor": v, "qrCodeUrl": v.QRImage},
	})
}

// CheckInVisitor applies the re-entry rule to the most recent entry for the
// given visitor code.
func CheckInVisitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID       string `json:"societyId"`
		VisitorID       string `json:"visitorId"`
		InGateNumber    string `json:"inGateNumber"`
		InVehicleNumber string `json:"inVehicleNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	reg, err := findRegistry(r.Context(), body.SocietyID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	entry := latestByVisitorID(reg.Visitors, body.VisitorID)
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}

	now := time.Now()
	switch decideCheckIn(*entry) {
	case actionConflict:
		utils.RespondWithError(w, http.StatusConflict, "Visitor is already checked in")
		return

	case actionAppend:
		// Completed cycle: preserve history, append a fresh entry.
		fresh := *entry
		fresh.EntryID = uuid.NewString()
		fresh.Status = StatusCheckIn
		fresh.CheckInDateTime = &now
		fresh.CheckOutDateTime = nil
		fresh.OutGateNumber = ""
		fresh.OutVehicleNumber = ""
		if body.InGateNumber != "" {
			fresh.InGateNumber = body.InGateNumber
		}
		if body.InVehicleNumber != "" {
			fresh.InVehicleNumber = body.InVehicleNumber
		}

		_, err = db.VisitorsCollection.UpdateOne(r.Context(),
			bson.M{"societyId": body.SocietyID},
			bson.M{"$push": bson.M{"visitors": fresh}})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in checking in visitor")
			return
		}

	case actionUpdate:
		_, err = db.VisitorsCollection.UpdateOne(r.Context(),
			bson.M{"societyId": body.SocietyID, "visitors.entryId": entry.EntryID},
			bson.M{"$set": bson.M{
				"visitors.$.status":          StatusCheckIn,
				"visitors.$.checkInDateTime": now,
				"visitors.$.inGateNumber":    body.InGateNumber,
				"visitors.$.inVehicleNumber": body.InVehicleNumber,
			}})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in checking in visitor")
			return
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Visitor checked in successfully"})
}

// CheckOutVisitor closes an entry by its internal id, revoking the QR asset.
func CheckOutVisitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID        string `json:"societyId"`
		ID               string `json:"id"`
		OutGateNumber    string `json:"outGateNumber"`
		OutVehicleNumber string `json:"outVehicleNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	reg, err := findRegistry(r.Context(), body.SocietyID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	var entry *Visitor
	for i := range reg.Visitors {
		if reg.Visitors[i].EntryID == body.ID {
			entry = &reg.Visitors[i]
			break
		}
	}
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	if entry.CheckOutDateTime != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Visitor is already checked out")
		return
	}

	// Revoke the scannable code; a missing file is not an error.
	revokeQR(entry.QRImage)

	_, err = db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, "visitors.entryId": body.ID},
		bson.M{"$set": bson.M{
			"visitors.$.status":           StatusCheckOut,
			"visitors.$.checkOutDateTime": time.Now(),
			"visitors.$.outGateNumber":    body.OutGateNumber,
			"visitors.$.outVehicleNumber": body.OutVehicleNumber,
			"visitors.$.qrImage":          nil,
		}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in checking out visitor")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Visitor checked out successfully"})
}

// SetUserAccess is one-shot: once the flag leaves Wait it cannot be changed
// through this operation.
func SetUserAccess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID  string `json:"societyId"`
		VisitorID  string `json:"visitorId"`
		UserAccess string `json:"userAccess"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.SocietyID == "" || body.VisitorID == "" || body.UserAccess == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if body.UserAccess != AccessAllow && body.UserAccess != AccessDeny {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid userAccess value")
		return
	}

	reg, err := findRegistry(r.Context(), body.SocietyID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	entry := latestByVisitorID(reg.Visitors, body.VisitorID)
	if entry == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}
	if entry.UserAccess != "" && entry.UserAccess != AccessWait {
		utils.RespondWithError(w, http.StatusBadRequest, "User access already set")
		return
	}

	_, err = db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, "visitors.entryId": entry.EntryID},
		bson.M{"$set": bson.M{"visitors.$.userAccess": body.UserAccess}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "User access not updated")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "User access updated successfully"})
}

// DenyVisitor is terminal; no transition leads out of Reject.
func DenyVisitor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID string `json:"societyId"`
		VisitorID string `json:"visitorId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	res, err := db.VisitorsCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, "visitors.visitorId": body.VisitorID},
		bson.M{"$set": bson.M{"visitors.$.status": StatusReject}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "An error occurred in denying visitor")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Visitor not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Visitor Entry Denied"})
}
