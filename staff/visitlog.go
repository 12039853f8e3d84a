package staff

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"vasati/db"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is one check-in/out cycle in the society's staff visit log.
// ServiceType and Name are denormalized from the directory at check-in time.
type Record struct {
	RecordID         string     `json:"recordId" bson:"recordId"`
	ServiceType      string     `json:"serviceType" bson:"serviceType"`
	UserID           string     `json:"userId" bson:"userId"`
	Name             string     `json:"name" bson:"name"`
	InGateNumber     string     `json:"inGateNumber,omitempty" bson:"inGateNumber,omitempty"`
	OutGateNumber    string     `json:"outGateNumber,omitempty" bson:"outGateNumber,omitempty"`
	InVehicleNumber  string     `json:"inVehicleNumber,omitempty" bson:"inVehicleNumber,omitempty"`
	OutVehicleNumber string     `json:"outVehicleNumber,omitempty" bson:"outVehicleNumber,omitempty"`
	CheckInDateTime  *time.Time `json:"checkInDateTime,omitempty" bson:"checkInDateTime,omitempty"`
	CheckOutDateTime *time.Time `json:"checkOutDateTime,omitempty" bson:"checkOutDateTime,omitempty"`
}

// VisitLog is the single per-society document of staff movements.
type VisitLog struct {
	SocietyID string   `json:"societyId" bson:"societyId"`
	Staff     []Record `json:"staff" bson:"staff"`
}

// hasOpenRecord reports whether the user has a check-in with no matching
// check-out anywhere in the log (society-wide, not per category).
func hasOpenRecord(records []Record, userID string) bool {
	for _, rec := range records {
		if rec.UserID == userID && rec.CheckInDateTime != nil && rec.CheckOutDateTime == nil {
			return true
		}
	}
	return false
}

// CheckInStaff resolves the worker through the category scan and appends a
// denormalized record. An open record anywhere in the society blocks it.
func CheckInStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID       string `json:"societyId"`
		UserID          string `json:"userid"`
		InGateNumber    string `json:"inGateNumber"`
		InVehicleNumber string `json:"inVehicleNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.SocietyID == "" || body.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	// Open-record check done as a single conditional query, not a
	// read-modify-write in application code.
	n, err := db.StaffLogCollection.CountDocuments(r.Context(), bson.M{
		"societyId": body.SocietyID,
		"staff": bson.M{"$elemMatch": bson.M{
			"userId":           body.UserID,
			"checkOutDateTime": bson.M{"$exists": false},
		}},
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error checking in staff")
		return
	}
	if n > 0 {
		utils.RespondWithError(w, http.StatusConflict, "User is already checked in and must check out before checking in again")
		return
	}

	dir, err := findDirectory(r.Context(), body.SocietyID)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "UserId not found or invalid for any service type")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error checking in staff")
		return
	}

	serviceType, provider := resolveWorker(dir, body.UserID)
	if provider == nil {
		utils.RespondWithError(w, http.StatusNotFound, "UserId not found or invalid for any service type")
		return
	}

	now := time.Now()
	rec := Record{
		RecordID:        uuid.NewString(),
		ServiceType:     serviceType,
		UserID:          body.UserID,
		Name:            provider.Name,
		InGateNumber:    body.InGateNumber,
		InVehicleNumber: body.InVehicleNumber,
		CheckInDateTime: &now,
	}

	opts := options.Update().SetUpsert(true)
	_, err = db.StaffLogCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID},
		bson.M{"$push": bson.M{"staff": rec}},
		opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error checking in staff")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Staff checked in successfully", "checkInRecord": rec})
}

// CheckOutStaff closes a record by its id; the lookup succeeding is the only
// conflict check.
func CheckOutStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
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

	res, err := db.StaffLogCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, "staff.recordId": body.ID},
		bson.M{"$set": bson.M{
			"staff.$.checkOutDateTime": time.Now(),
			"staff.$.outGateNumber":    body.OutGateNumber,
			"staff.$.outVehicleNumber": body.OutVehicleNumber,
		}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error checking out staff")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Staff member not found or already checked out")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Staff checked out successfully"})
}

func findVisitLog(ctx context.Context, societyID string) (*VisitLog, error) {
	var vl VisitLog
	err := db.StaffLogCollection.FindOne(ctx, bson.M{"societyId": societyID}).Decode(&vl)
	if err != nil {
		return nil, err
	}
	return &vl, nil
}

func GetAllStaffRecords(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vl, err := findVisitLog(r.Context(), ps.ByName("societyId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Society not found or no staff records")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error fetching staff records")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "staffRecords": vl.Staff})
}

// GetStaffRecordByUser returns the most recent record for a userId.
func GetStaffRecordByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	vl, err := findVisitLog(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Staff not found")
		return
	}
	userID := ps.ByName("userId")
	for i := len(vl.Staff) - 1; i >= 0; i-- {
		if vl.Staff[i].UserID == userID {
			utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "staff": vl.Staff[i]})
			return
		}
	}
	utils.RespondWithError(w, http.StatusNotFound, "Staff not found")
}
