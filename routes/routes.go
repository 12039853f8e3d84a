package routes

import (
	"net/http"

	"vasati/amenities"
	"vasati/auth"
	"vasati/bills"
	"vasati/complaints"
	"vasati/documents"
	"vasati/emergency"
	"vasati/market"
	"vasati/middleware"
	"vasati/notices"
	"vasati/notifications"
	"vasati/polls"
	"vasati/profile"
	"vasati/ratelim"
	"vasati/realtime"
	"vasati/society"
	"vasati/staff"
	"vasati/visitors"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/profilepic/*filepath", http.Dir("static/profilepic"))
	router.ServeFiles("/static/visitorpic/*filepath", http.Dir("static/visitorpic"))
	router.ServeFiles("/static/visitorqr/*filepath", http.Dir("static/visitorqr"))
	router.ServeFiles("/static/servicepic/*filepath", http.Dir("static/servicepic"))
	router.ServeFiles("/static/serviceqr/*filepath", http.Dir("static/serviceqr"))
	router.ServeFiles("/static/amenitypic/*filepath", http.Dir("static/amenitypic"))
	router.ServeFiles("/static/marketpic/*filepath", http.Dir("static/marketpic"))
	router.ServeFiles("/static/billdoc/*filepath", http.Dir("static/billdoc"))
	router.ServeFiles("/static/societydocs/*filepath", http.Dir("static/societydocs"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rl.Limit(auth.Register))
	router.POST("/api/auth/login", rl.Limit(auth.Login))
	router.POST("/api/auth/token/refresh", rl.Limit(auth.RefreshToken))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddSocietyRoutes(router *httprouter.Router) {
	router.POST("/api/society", middleware.Authenticate(society.CreateSociety))
	router.GET("/api/society", society.ListSocieties)
	router.GET("/api/society/:societyId", society.GetSociety)
}

func AddProfileRoutes(router *httprouter.Router) {
	router.POST("/api/residents", middleware.Authenticate(profile.CreateProfile))
	router.GET("/api/residents/:societyId", middleware.Authenticate(profile.GetProfilesBySociety))
	router.GET("/api/residents/:societyId/:userId", middleware.Authenticate(profile.GetProfile))
	router.PUT("/api/residents/:societyId/:userId", middleware.Authenticate(profile.UpdateProfile))
	router.PUT("/api/residents/:societyId/:userId/avatar", middleware.Authenticate(profile.UpdateAvatar))
	router.DELETE("/api/residents/:societyId/:userId", middleware.Authenticate(profile.DeleteProfile))
}

func AddVisitorRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/visitors", rl.Limit(middleware.Authenticate(visitors.CreateVisitor)))
	router.PUT("/api/visitors/checkin", middleware.Authenticate(visitors.CheckInVisitor))
	router.PUT("/api/visitors/checkout", middleware.Authenticate(visitors.CheckOutVisitor))
	router.PUT("/api/visitors/access", middleware.Authenticate(visitors.SetUserAccess))
	router.PUT("/api/visitors/deny", middleware.Authenticate(visitors.DenyVisitor))

	// Reads live under /society to keep the static verbs above conflict-free.
	router.GET("/api/visitors/society/:societyId", middleware.Authenticate(visitors.GetAllVisitorsBySocietyID))
	router.GET("/api/visitors/society/:societyId/recent", middleware.Authenticate(visitors.GetVisitorsLast24Hours))
	router.GET("/api/visitors/society/:societyId/visitor/:visitorId", middleware.Authenticate(visitors.GetVisitorByIDAndSocietyID))
	router.GET("/api/visitors/society/:societyId/visitor/:visitorId/gatepass", middleware.Authenticate(visitors.PrintGatePass))
	router.GET("/api/visitors/society/:societyId/frequent/:block/:flatNo", middleware.Authenticate(visitors.GetFrequentVisitors))
	router.DELETE("/api/visitors/society/:societyId/frequent/:block/:flatNo/:visitorId", middleware.Authenticate(visitors.DeleteFrequentVisitor))
	router.GET("/api/visitors/society/:societyId/preapproved/:block/:flatNo", middleware.Authenticate(visitors.GetPreApprovedVisitors))
	router.GET("/api/visitors/society/:societyId/flat/:block/:flatNo", middleware.Authenticate(visitors.GetVisitorsByFlat))
	router.DELETE("/api/visitors/society/:societyId/entry/:entryId", middleware.Authenticate(visitors.DeleteVisitorEntry))
}

func AddStaffRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/services", rl.Limit(middleware.Authenticate(staff.CreateProvider)))
	router.GET("/api/services/society/:societyId", middleware.Authenticate(staff.GetAllServicePersons))
	router.GET("/api/services/society/:societyId/type/:serviceType", middleware.Authenticate(staff.GetProvidersByType))
	router.GET("/api/services/society/:societyId/worker/:userId", middleware.Authenticate(staff.GetProviderByID))
	router.GET("/api/services/society/:societyId/flat/:block/:flatNumber", middleware.Authenticate(staff.GetServicesByFlat))
	router.PUT("/api/services/worker", middleware.Authenticate(staff.UpdateProvider))
	router.DELETE("/api/services/worker", middleware.Authenticate(staff.DeleteProvider))
	router.PUT("/api/services/list", middleware.Authenticate(staff.AddListEntries))
	router.DELETE("/api/services/list", middleware.Authenticate(staff.RemoveListEntry))
	router.PUT("/api/services/review", middleware.Authenticate(staff.UpdateReviewAndRating))

	router.POST("/api/staff/checkin", middleware.Authenticate(staff.CheckInStaff))
	router.POST("/api/staff/checkout", middleware.Authenticate(staff.CheckOutStaff))
	router.GET("/api/staff/society/:societyId", middleware.Authenticate(staff.GetAllStaffRecords))
	router.GET("/api/staff/society/:societyId/:userId", middleware.Authenticate(staff.GetStaffRecordByUser))
}

func AddAmenityRoutes(router *httprouter.Router) {
	router.POST("/api/amenities", middleware.Authenticate(amenities.CreateAmenity))
	router.GET("/api/amenities/society/:societyId", middleware.Authenticate(amenities.GetAmenitiesBySociety))
	router.GET("/api/amenity/:amenityId", middleware.Authenticate(amenities.GetAmenityByID))
	router.PUT("/api/amenity/:amenityId", middleware.Authenticate(amenities.UpdateAmenity))
	router.DELETE("/api/amenity/:amenityId", middleware.Authenticate(amenities.DeleteAmenity))
	router.POST("/api/amenity/:amenityId/bookings", middleware.Authenticate(amenities.BookAmenity))
	router.PUT("/api/amenity/:amenityId/bookings/:userId", middleware.Authenticate(amenities.UpdateBookingByUser))
	router.DELETE("/api/amenity/:amenityId/bookings/:userId", middleware.Authenticate(amenities.CancelBookingByUser))
}

func AddNoticeRoutes(router *httprouter.Router) {
	router.POST("/api/notices", middleware.Authenticate(notices.CreateNotice))
	router.GET("/api/notices/society/:societyId", middleware.Authenticate(notices.GetNoticesBySociety))
	router.GET("/api/notice/:noticeId", middleware.Authenticate(notices.GetNoticeByID))
	router.PUT("/api/notice/:noticeId", middleware.Authenticate(notices.UpdateNotice))
	router.DELETE("/api/notice/:noticeId", middleware.Authenticate(notices.DeleteNotice))
}

func AddComplaintRoutes(router *httprouter.Router) {
	router.POST("/api/complaints", middleware.Authenticate(complaints.CreateComplaint))
	router.GET("/api/complaints/society/:societyId", middleware.Authenticate(complaints.GetComplaintsBySociety))
	router.PUT("/api/complaint/:complaintId/status", middleware.Authenticate(complaints.UpdateComplaintStatus))
	router.DELETE("/api/complaint/:complaintId", middleware.Authenticate(complaints.DeleteComplaint))
}

func AddMarketRoutes(router *httprouter.Router) {
	router.POST("/api/market", middleware.Authenticate(market.CreateListing))
	router.GET("/api/market/society/:societyId", middleware.Authenticate(market.GetListingsBySociety))
	router.DELETE("/api/listing/:listingId", middleware.Authenticate(market.DeleteListing))
}

func AddBillRoutes(router *httprouter.Router) {
	router.POST("/api/bills", middleware.Authenticate(bills.CreateBill))
	router.GET("/api/bills/society/:societyId", middleware.Authenticate(bills.GetBillsBySociety))
	router.GET("/api/bills/society/:societyId/flat/:block/:flatNo", middleware.Authenticate(bills.GetBillsByFlat))
	router.PUT("/api/bill/:billId/pay", middleware.Authenticate(bills.MarkBillPaid))
	router.GET("/api/bill/:billId/receipt", middleware.Authenticate(bills.DownloadReceipt))
	router.DELETE("/api/bill/:billId", middleware.Authenticate(bills.DeleteBill))
}

func AddDocumentRoutes(router *httprouter.Router) {
	router.POST("/api/documents", middleware.Authenticate(documents.UploadDocument))
	router.GET("/api/documents/society/:societyId", middleware.Authenticate(documents.GetDocumentsBySociety))
	router.DELETE("/api/document/:documentId", middleware.Authenticate(documents.DeleteDocument))
}

func AddEmergencyRoutes(router *httprouter.Router) {
	router.POST("/api/emergency", middleware.Authenticate(emergency.CreateContact))
	router.GET("/api/emergency/society/:societyId", middleware.Authenticate(emergency.GetContactsBySociety))
	router.PUT("/api/emergency/contact/:contactId", middleware.Authenticate(emergency.UpdateContact))
	router.DELETE("/api/emergency/contact/:contactId", middleware.Authenticate(emergency.DeleteContact))
}

func AddNotificationRoutes(router *httprouter.Router) {
	router.GET("/api/notifications/society/:societyId", middleware.Authenticate(notifications.GetNotificationsBySociety))
	router.PUT("/api/notifications/society/:societyId/read-all", middleware.Authenticate(notifications.MarkAllRead))
	router.PUT("/api/notification/:notificationId/read", middleware.Authenticate(notifications.MarkNotificationRead))
	router.DELETE("/api/notification/:notificationId", middleware.Authenticate(notifications.DeleteNotification))
}

func AddPollRoutes(router *httprouter.Router) {
	router.GET("/api/polls/society/:societyId", middleware.Authenticate(polls.GetPollsBySociety))
}

// AddRealtimeRoutes needs the hub, so main wires it separately.
func AddRealtimeRoutes(router *httprouter.Router, hub *realtime.Hub) {
	router.GET("/ws/:societyId", middleware.Authenticate(realtime.WebSocketHandler(hub)))
}
