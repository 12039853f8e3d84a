package amenities

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"vasati/db"
	"vasati/filemgr"
	"vasati/models"
	"vasati/mq"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const uploadDir = "static/amenitypic"

// Booking statuses
const (
	BookingInProgress = "InProgress"
	BookingCompleted  = "Completed"
	BookingCancelled  = "Cancelled"
)

type PaymentDetails struct {
	PaymentMethod string     `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentStatus string     `json:"paymentStatus,omitempty" bson:"paymentStatus,omitempty"`
	Amount        string     `json:"amount,omitempty" bson:"amount,omitempty"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty" bson:"paymentDate,omitempty"`
}

// Booking is one reservation inside an amenity's list. Inserts always push;
// the by-user update/cancel paths touch only the first matching entry.
type Booking struct {
	UserID         string         `json:"userId" bson:"userId"`
	BookedDate     *time.Time     `json:"bookedDate,omitempty" bson:"bookedDate,omitempty"`
	DateOfBooking  *time.Time     `json:"dateOfBooking,omitempty" bson:"dateOfBooking,omitempty"`
	Payed          string         `json:"payed,omitempty" bson:"payed,omitempty"`
	Pending        string         `json:"pending,omitempty" bson:"pending,omitempty"`
	Status         string         `json:"status" bson:"status"`
	EventName      string         `json:"eventName,omitempty" bson:"eventName,omitempty"`
	ArrivalTime    string         `json:"arrivalTime,omitempty" bson:"arrivalTime,omitempty"`
	DepartureTime  string         `json:"departureTime,omitempty" bson:"departureTime,omitempty"`
	Venue          string         `json:"venue,omitempty" bson:"venue,omitempty"`
	NumberOfGuests int            `json:"numberOfGuests,omitempty" bson:"numberOfGuests,omitempty"`
	EventType      string         `json:"eventType,omitempty" bson:"eventType,omitempty"`
	PaymentDetails PaymentDetails `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
}

// Amenity is one bookable facility document.
type Amenity struct {
	AmenityID   string    `json:"amenityId" bson:"amenityId"`
	SocietyID   string    `json:"societyId" bson:"societyId"`
	AmenityName string    `json:"amenityName" bson:"amenityName"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Capacity    int       `json:"capacity,omitempty" bson:"capacity,omitempty"`
	Timings     string    `json:"timings,omitempty" bson:"timings,omitempty"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	Cost        string    `json:"cost,omitempty" bson:"cost,omitempty"`
	ChargePer   string    `json:"chargePer,omitempty" bson:"chargePer,omitempty"`
	Status      string    `json:"status" bson:"status"` // Available, Booked
	List        []Booking `json:"list" bson:"list"`
}

func CreateAmenity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	a := Amenity{
		AmenityID:   uuid.NewString(),
		SocietyID:   r.FormValue("societyId"),
		AmenityName: r.FormValue("amenityName"),
		Timings:     r.FormValue("timings"),
		Location:    r.FormValue("location"),
		Cost:        r.FormValue("cost"),
		ChargePer:   r.FormValue("chargePer"),
		Status:      "Available",
		List:        []Booking{},
	}
	if a.SocietyID == "" || a.AmenityName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if c := r.FormValue("capacity"); c != "" {
		a.Capacity, _ = strconv.Atoi(c)
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		if !utils.ValidateImageFileType(w, header) {
			return
		}
		filename, err := filemgr.SaveImage(file, header, uploadDir)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save image")
			return
		}
		a.Image = filemgr.PublicPath("amenitypic", filename)
	}

	if _, err := db.AmenitiesCollection.InsertOne(r.Context(), a); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create amenity")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "amenity": a})
}

func GetAmenitiesBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.AmenitiesCollection.Find(ctx, bson.M{"societyId": ps.ByName("societyId")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cur.Close(ctx)

	var amenities []Amenity
	if err := cur.All(ctx, &amenities); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "amenities": amenities})
}

func GetAmenityByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var a Amenity
	err := db.AmenitiesCollection.FindOne(r.Context(), bson.M{"amenityId": ps.ByName("amenityId")}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "amenity": a})
}

func UpdateAmenity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	update := bson.M{}
	for _, k := range []string{"amenityName", "capacity", "timings", "location", "cost", "chargePer", "status"} {
		if v, ok := fields[k]; ok {
			update[k] = v
		}
	}
	if len(update) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "No updatable fields")
		return
	}

	res, err := db.AmenitiesCollection.UpdateOne(r.Context(),
		bson.M{"amenityId": ps.ByName("amenityId")},
		bson.M{"$set": update})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update amenity")
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Amenity updated"})
}

// DeleteAmenity removes the document and its image file; an already-missing
// file still reports success.
func DeleteAmenity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var a Amenity
	err := db.AmenitiesCollection.FindOne(r.Context(), bson.M{"amenityId": ps.ByName("amenityId")}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	if _, err := db.AmenitiesCollection.DeleteOne(r.Context(), bson.M{"amenityId": a.AmenityID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete amenity")
		return
	}

	filemgr.RemoveImage(uploadDir, filepath.Base(a.Image))

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Amenity deleted successfully"})
}

// BookAmenity is append-only: bookings always push onto the list.
func BookAmenity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var b Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if b.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if b.Status == "" {
		b.Status = BookingInProgress
	}
	now := time.Now()
	if b.DateOfBooking == nil {
		b.DateOfBooking = &now
	}

	var a Amenity
	err := db.AmenitiesCollection.FindOne(r.Context(), bson.M{"amenityId": ps.ByName("amenityId")}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = db.AmenitiesCollection.UpdateOne(r.Context(),
		bson.M{"amenityId": a.AmenityID},
		bson.M{"$push": bson.M{"list": b}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to book amenity")
		return
	}

	mq.Emit(r.Context(), models.NotificationEvent{
		SocietyID: a.SocietyID,
		Category:  "booking",
		Title:     "New amenity booking",
		Message:   a.AmenityName + " booked by " + b.UserID,
		EntityID:  a.AmenityID,
	})

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "message": "Amenity booked successfully"})
}

// firstBookingIndex returns the index of the first list entry for a user,
// or -1. The schema permits duplicates; these paths deliberately touch only
// the first.
func firstBookingIndex(list []Booking, userID string) int {
	for i, b := range list {
		if b.UserID == userID {
			return i
		}
	}
	return -1
}

// UpdateBookingByUser mutates the first matching booking entry.
func UpdateBookingByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var b Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	userID := ps.ByName("userId")
	b.UserID = userID

	var a Amenity
	err := db.AmenitiesCollection.FindOne(r.Context(), bson.M{"amenityId": ps.ByName("amenityId")}).Decode(&a)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	}

	idx := firstBookingIndex(a.List, userID)
	if idx < 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	a.List[idx] = b

	_, err = db.AmenitiesCollection.UpdateOne(r.Context(),
		bson.M{"amenityId": a.AmenityID},
		bson.M{"$set": bson.M{"list": a.List}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Booking updated"})
}

// CancelBookingByUser removes the first matching booking entry.
func CancelBookingByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("userId")

	var a Amenity
	err := db.AmenitiesCollection.FindOne(r.Context(), bson.M{"amenityId": ps.ByName("amenityId")}).Decode(&a)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Amenity not found")
		return
	}

	idx := firstBookingIndex(a.List, userID)
	if idx < 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
		return
	}
	a.List = append(a.List[:idx], a.List[idx+1:]...)

	_, err = db.AmenitiesCollection.UpdateOne(r.Context(),
		bson.M{"amenityId": a.AmenityID},
		bson.M{"$set": bson.M{"list": a.List}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to cancel booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Booking cancelled"})
}
