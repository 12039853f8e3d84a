package staff

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"strconv"

	"vasati/db"
	"vasati/filemgr"
	"vasati/idgen"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	uploadDir = "static/servicepic"
	qrDir     = "static/serviceqr"
)

// ServiceTypes is the fixed category list. Order matters: visit-log check-in
// resolves a worker by scanning these in order and stops at the first hit.
var ServiceTypes = []string{
	"maid", "milkMan", "cook", "paperBoy", "driver", "water",
	"plumber", "carpenter", "electrician", "painter", "moving",
	"mechanic", "appliance", "pestClean",
}

func validServiceType(t string) bool {
	for _, s := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ListEntry is one resident's subscription/booking with a provider,
// unique by UserID within the provider's list.
type ListEntry struct {
	UserID     string  `json:"userId" bson:"userId"`
	Block      string  `json:"Block" bson:"Block"`
	FlatNumber int     `json:"flatNumber" bson:"flatNumber"`
	Timings    string  `json:"timings,omitempty" bson:"timings,omitempty"`
	Reviews    string  `json:"reviews,omitempty" bson:"reviews,omitempty"`
	Rating     float64 `json:"rating,omitempty" bson:"rating,omitempty"`
	// Category-specific consumption fields
	Liters    string `json:"liters,omitempty" bson:"liters,omitempty"`       // milkMan, water
	NewsPaper string `json:"newsPaper,omitempty" bson:"newsPaper,omitempty"` // paperBoy
	WorkType  string `json:"workType,omitempty" bson:"workType,omitempty"`   // driver
	WaterType string `json:"waterType,omitempty" bson:"waterType,omitempty"` // water
}

// Provider is a service person inside one category array.
type Provider struct {
	UserID      string      `json:"userid" bson:"userid"`
	Name        string      `json:"name" bson:"name"`
	PhoneNumber string      `json:"phoneNumber" bson:"phoneNumber"`
	Address     string      `json:"address,omitempty" bson:"address,omitempty"`
	Timings     []string    `json:"timings,omitempty" bson:"timings,omitempty"`
	Pictures    string      `json:"pictures,omitempty" bson:"pictures,omitempty"`
	QRImages    string      `json:"qrImages,omitempty" bson:"qrImages,omitempty"`
	List        []ListEntry `json:"list" bson:"list"`
}

// Directory is the single per-society document, one sub-array per category.
type Directory struct {
	SocietyID   string     `json:"societyId" bson:"societyId"`
	Maid        []Provider `json:"maid,omitempty" bson:"maid,omitempty"`
	MilkMan     []Provider `json:"milkMan,omitempty" bson:"milkMan,omitempty"`
	Cook        []Provider `json:"cook,omitempty" bson:"cook,omitempty"`
	PaperBoy    []Provider `json:"paperBoy,omitempty" bson:"paperBoy,omitempty"`
	Driver      []Provider `json:"driver,omitempty" bson:"driver,omitempty"`
	Water       []Provider `json:"water,omitempty" bson:"water,omitempty"`
	Plumber     []Provider `json:"plumber,omitempty" bson:"plumber,omitempty"`
	Carpenter   []Provider `json:"carpenter,omitempty" bson:"carpenter,omitempty"`
	Electrician []Provider `json:"electrician,omitempty" bson:"electrician,omitempty"`
	Painter     []Provider `json:"painter,omitempty" bson:"painter,omitempty"`
	Moving      []Provider `json:"moving,omitempty" bson:"moving,omitempty"`
	Mechanic    []Provider `json:"mechanic,omitempty" bson:"mechanic,omitempty"`
	Appliance   []Provider `json:"appliance,omitempty" bson:"appliance,omitempty"`
	PestClean   []Provider `json:"pestClean,omitempty" bson:"pestClean,omitempty"`
}

// providersFor maps a category name to its array.
func providersFor(d *Directory, serviceType string) []Provider {
	switch serviceType {
	case "maid":
		return d.Maid
	case "milkMan":
		return d.MilkMan
	case "cook":
		return d.Cook
	case "paperBoy":
		return d.PaperBoy
	case "driver":
		return d.Driver
	case "water":
		return d.Water
	case "plumber":
		return d.Plumber
	case "carpenter":
		return d.Carpenter
	case "electrician":
		return d.Electrician
	case "painter":
		return d.Painter
	case "moving":
		return d.Moving
	case "mechanic":
		return d.Mechanic
	case "appliance":
		return d.Appliance
	case "pestClean":
		return d.PestClean
	}
	return nil
}

// resolveWorker scans the categories in their fixed order and returns the
// first provider carrying the userid.
func resolveWorker(d *Directory, userid string) (serviceType string, p *Provider) {
	for _, t := range ServiceTypes {
		for i, prov := range providersFor(d, t) {
			if prov.UserID == userid {
				return t, &providersFor(d, t)[i]
			}
		}
	}
	return "", nil
}

func findDirectory(ctx context.Context, societyID string) (*Directory, error) {
	var dir Directory
	err := db.ServicesCollection.FindOne(ctx, bson.M{"societyId": societyID}).Decode(&dir)
	if err != nil {
		return nil, err
	}
	return &dir, nil
}

func provisionProviderQR(userid string) (string, error) {
	if err := utils.EnsureDir(qrDir); err != nil {
		return "", err
	}
	filename := uuid.NewString() + ".png"
	if err := qrcode.WriteFile(userid, qrcode.Medium, 256, filepath.Join(qrDir, filename)); err != nil {
		return "", err
	}
	return "/static/serviceqr/" + filename, nil
}

// CreateProvider registers a service person under a category with a
// generated userid, then attaches a QR code in a second phase.
func CreateProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	societyID := r.FormValue("societyId")
	serviceType := r.FormValue("serviceType")
	p := Provider{
		Name:        r.FormValue("name"),
		PhoneNumber: r.FormValue("phoneNumber"),
		Address:     r.FormValue("address"),
		List:        []ListEntry{},
	}
	if timings := r.Form["timings"]; len(timings) > 0 {
		p.Timings = timings
	}

	if societyID == "" || serviceType == "" || p.Name == "" || p.PhoneNumber == "" || p.Address == "" || len(p.Timings) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validServiceType(serviceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown service type")
		return
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
		p.Pictures = filemgr.PublicPath("servicepic", filename)
	}

	code, err := idgen.Code(r.Context(), "service", 6, nil, "")
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate user id")
		return
	}
	// The redis reservation handles restarts; also make sure the code is not
	// live in this society's directory under any category.
	if dir, derr := findDirectory(r.Context(), societyID); derr == nil {
		if _, existing := resolveWorker(dir, code); existing != nil {
			code, _ = idgen.Code(r.Context(), "service", 6, nil, "")
		}
	}
	p.UserID = code

	opts := options.Update().SetUpsert(true)
	_, err = db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID},
		bson.M{"$push": bson.M{serviceType: p}},
		opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create service provider")
		return
	}

	qrURL, err := provisionProviderQR(p.UserID)
	if err != nil {
		log.Printf("staff: QR provisioning failed for %s: %v", p.UserID, err)
	} else {
		_, err = db.ServicesCollection.UpdateOne(r.Context(),
			bson.M{"societyId": societyID, serviceType + ".userid": p.UserID},
			bson.M{"$set": bson.M{serviceType + ".$.qrImages": qrURL}})
		if err != nil {
			log.Printf("staff: QR attach failed for %s: %v", p.UserID, err)
		}
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "message": "Service Person Created Successfully", "userid": p.UserID})
}

func GetAllServicePersons(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dir, err := findDirectory(r.Context(), ps.ByName("societyId"))
	if err == mongo.ErrNoDocuments {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found for the given societyId")
		return
	} else if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "service": dir})
}

func GetProvidersByType(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	serviceType := ps.ByName("serviceType")
	if !validServiceType(serviceType) {
		utils.RespondWithError(w, http.StatusNotFound, "Service type not found")
		return
	}
	dir, err := findDirectory(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found for the given societyId")
		return
	}
	providers := providersFor(dir, serviceType)
	if providers == nil {
		providers = []Provider{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "serviceType": serviceType, "providers": providers})
}

// GetProviderByID resolves a worker by userid alone, scanning the categories
// the way the visit log does.
func GetProviderByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	dir, err := findDirectory(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found for the given societyId")
		return
	}
	serviceType, p := resolveWorker(dir, ps.ByName("userId"))
	if p == nil {
		utils.RespondWithError(w, http.StatusNotFound, "Provider not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "serviceType": serviceType, "servicePerson": *p})
}

// UpdateProvider rewrites contact fields and optionally replaces the picture,
// removing the previous file.
func UpdateProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	societyID := r.FormValue("societyId")
	serviceType := r.FormValue("serviceType")
	userid := r.FormValue("userid")
	if societyID == "" || serviceType == "" || userid == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validServiceType(serviceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown service type")
		return
	}

	dir, err := findDirectory(r.Context(), societyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found")
		return
	}
	foundType, provider := resolveWorker(dir, userid)
	if provider == nil || foundType != serviceType {
		utils.RespondWithError(w, http.StatusNotFound, "Service provider not found")
		return
	}

	set := bson.M{
		serviceType + ".$.name":        r.FormValue("name"),
		serviceType + ".$.phoneNumber": r.FormValue("phoneNumber"),
		serviceType + ".$.address":     r.FormValue("address"),
	}
	if timings := r.Form["timings"]; len(timings) > 0 {
		set[serviceType+".$.timings"] = timings
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
		filemgr.RemoveImage(uploadDir, filepath.Base(provider.Pictures))
		set[serviceType+".$.pictures"] = filemgr.PublicPath("servicepic", filename)
	}

	_, err = db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": societyID, serviceType + ".userid": userid},
		bson.M{"$set": set})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update service provider")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Service Person Updated Successfully"})
}

// DeleteProvider removes the provider entry and its stored files.
func DeleteProvider(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID   string `json:"societyId"`
		ServiceType string `json:"serviceType"`
		UserID      string `json:"userid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.SocietyID == "" || body.ServiceType == "" || body.UserID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validServiceType(body.ServiceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown service type")
		return
	}

	dir, err := findDirectory(r.Context(), body.SocietyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found")
		return
	}
	foundType, provider := resolveWorker(dir, body.UserID)
	if provider == nil || foundType != body.ServiceType {
		utils.RespondWithError(w, http.StatusNotFound, "Service provider not found")
		return
	}

	filemgr.RemoveImage(uploadDir, filepath.Base(provider.Pictures))
	if provider.QRImages != "" {
		if err := utils.RemoveFileIfExists(filepath.Join(qrDir, filepath.Base(provider.QRImages))); err != nil {
			log.Printf("staff: failed to delete QR image: %v", err)
		}
	}

	_, err = db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID},
		bson.M{"$pull": bson.M{body.ServiceType: bson.M{"userid": body.UserID}}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete service provider")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Service Provider Deleted Successfully"})
}

// AddListEntries upserts resident entries in a provider's list, unique by
// userId within the provider.
func AddListEntries(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID   string      `json:"societyId"`
		ServiceType string      `json:"serviceType"`
		UserID      string      `json:"userid"`
		List        []ListEntry `json:"list"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.List == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if body.SocietyID == "" || body.ServiceType == "" || body.UserID == "" || !validServiceType(body.ServiceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	dir, err := findDirectory(r.Context(), body.SocietyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found")
		return
	}
	foundType, provider := resolveWorker(dir, body.UserID)
	if provider == nil || foundType != body.ServiceType {
		utils.RespondWithError(w, http.StatusNotFound, "Service provider not found")
		return
	}

	list := mergeListEntries(provider.List, body.List)

	_, err = db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, body.ServiceType + ".userid": body.UserID},
		bson.M{"$set": bson.M{body.ServiceType + ".$.list": list}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update list")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Successfully Added the Service"})
}

// mergeListEntries replaces an existing entry with the same userId or
// appends a new one.
func mergeListEntries(existing, incoming []ListEntry) []ListEntry {
	out := make([]ListEntry, len(existing))
	copy(out, existing)
	for _, item := range incoming {
		replaced := false
		for i := range out {
			if out[i].UserID == item.UserID {
				out[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, item)
		}
	}
	return out
}

// RemoveListEntry removes a single resident entry from a provider's list.
func RemoveListEntry(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID      string `json:"societyId"`
		ServiceType    string `json:"serviceType"`
		UserID         string `json:"userid"`
		UserIDToDelete string `json:"userIdToDelete"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if body.SocietyID == "" || body.ServiceType == "" || body.UserID == "" || body.UserIDToDelete == "" || !validServiceType(body.ServiceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	res, err := db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, body.ServiceType + ".userid": body.UserID},
		bson.M{"$pull": bson.M{body.ServiceType + ".$.list": bson.M{"userId": body.UserIDToDelete}}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete list item")
		return
	}
	if res.ModifiedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Item to delete not found in the list")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "List Item deleted successfully"})
}

// UpdateReviewAndRating sets review text and rating on the matching resident
// entry; a missing entry is logged and ignored.
func UpdateReviewAndRating(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		SocietyID   string    `json:"societyId"`
		ServiceType string    `json:"serviceType"`
		UserID      string    `json:"userid"`
		Updates     ListEntry `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if body.SocietyID == "" || body.ServiceType == "" || body.UserID == "" || !validServiceType(body.ServiceType) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	dir, err := findDirectory(r.Context(), body.SocietyID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Service not found")
		return
	}
	foundType, provider := resolveWorker(dir, body.UserID)
	if provider == nil || foundType != body.ServiceType {
		utils.RespondWithError(w, http.StatusNotFound, "Service provider not found")
		return
	}

	updated := false
	list := make([]ListEntry, len(provider.List))
	copy(list, provider.List)
	for i := range list {
		if list[i].UserID == body.Updates.UserID && list[i].Block == body.Updates.Block && list[i].FlatNumber == body.Updates.FlatNumber {
			list[i].Reviews = body.Updates.Reviews
			list[i].Rating = body.Updates.Rating
			updated = true
			break
		}
	}
	if !updated {
		log.Printf("staff: list item for user %s at %s-%d not found", body.Updates.UserID, body.Updates.Block, body.Updates.FlatNumber)
	}

	_, err = db.ServicesCollection.UpdateOne(r.Context(),
		bson.M{"societyId": body.SocietyID, body.ServiceType + ".userid": body.UserID},
		bson.M{"$set": bson.M{body.ServiceType + ".$.list": list}})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update reviews")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Reviews and ratings updated successfully"})
}

// GetServicesByFlat returns, per category, the providers serving a flat.
func GetServicesByFlat(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	societyID := ps.ByName("societyId")
	block := ps.ByName("block")
	flatNumber, err := strconv.Atoi(ps.ByName("flatNumber"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "flatNumber must be a number")
		return
	}

	dir, derr := findDirectory(r.Context(), societyID)
	if derr != nil {
		utils.RespondWithError(w, http.StatusNotFound, "No services found for the given criteria")
		return
	}

	filtered := map[string][]Provider{}
	for _, t := range ServiceTypes {
		matched := []Provider{}
		for _, p := range providersFor(dir, t) {
			for _, e := range p.List {
				if e.Block == block && e.FlatNumber == flatNumber {
					matched = append(matched, p)
					break
				}
			}
		}
		filtered[t] = matched
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "services": filtered})
}
