package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	SocietiesCollection     *mongo.Collection
	UserCollection          *mongo.Collection
	ProfilesCollection      *mongo.Collection
	VisitorsCollection      *mongo.Collection
	ServicesCollection      *mongo.Collection
	StaffLogCollection      *mongo.Collection
	AmenitiesCollection     *mongo.Collection
	NoticesCollection       *mongo.Collection
	ComplaintsCollection    *mongo.Collection
	MarketCollection        *mongo.Collection
	BillsCollection         *mongo.Collection
	DocumentsCollection     *mongo.Collection
	EmergencyCollection     *mongo.Collection
	NotificationsCollection *mongo.Collection
	PollsCollection         *mongo.Collection
	GroupChatsCollection    *mongo.Collection
	ConversationsCollection *mongo.Collection
	Client                  *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment defaults")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("societydb")
	SocietiesCollection = database.Collection("societies")
	UserCollection = database.Collection("users")
	ProfilesCollection = database.Collection("profiles")
	VisitorsCollection = database.Collection("visitors")
	ServicesCollection = database.Collection("services")
	StaffLogCollection = database.Collection("stafflog")
	AmenitiesCollection = database.Collection("amenities")
	NoticesCollection = database.Collection("notices")
	ComplaintsCollection = database.Collection("complaints")
	MarketCollection = database.Collection("market")
	BillsCollection = database.Collection("bills")
	DocumentsCollection = database.Collection("documents")
	EmergencyCollection = database.Collection("emergency")
	NotificationsCollection = database.Collection("notifications")
	PollsCollection = database.Collection("polls")
	GroupChatsCollection = database.Collection("groupchats")
	ConversationsCollection = database.Collection("conversations")
}
