package realtime

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"vasati/db"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChatMessage is immutable once appended; timestamps come from the server
// clock.
type ChatMessage struct {
	MessageID string    `json:"messageId" bson:"messageId"`
	SenderID  string    `json:"senderId" bson:"senderId"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Conversation is a two-party thread keyed by the sorted participant pair.
type Conversation struct {
	ConversationID string        `json:"conversationId" bson:"conversationId"`
	SocietyID      string        `json:"societyId" bson:"societyId"`
	Participants   []string      `json:"participants" bson:"participants"`
	Messages       []ChatMessage `json:"messages" bson:"messages"`
	LastMessage    string        `json:"lastMessage,omitempty" bson:"lastMessage,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Group is a society group chat with a managed resident list.
type Group struct {
	GroupID   string        `json:"groupId" bson:"groupId"`
	SocietyID string        `json:"societyId" bson:"societyId"`
	Name      string        `json:"name" bson:"name"`
	CreatedBy string        `json:"createdBy" bson:"createdBy"`
	Residents []string      `json:"residents" bson:"residents"`
	Messages  []ChatMessage `json:"messages" bson:"messages"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
}

func conversationRoom(conversationID string) string { return "conv:" + conversationID }
func groupRoom(groupID string) string               { return "group:" + groupID }

func storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// openConversation finds the thread for a participant pair, creating it on
// first contact. Sorting the pair makes the lookup order-independent.
func openConversation(ctx context.Context, societyID, userA, userB string) (*Conversation, error) {
	pair := []string{userA, userB}
	sort.Strings(pair)

	var conv Conversation
	err := db.ConversationsCollection.FindOne(ctx, bson.M{
		"societyId":    societyID,
		"participants": pair,
	}).Decode(&conv)
	if err == nil {
		return &conv, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	conv = Conversation{
		ConversationID: uuid.NewString(),
		SocietyID:      societyID,
		Participants:   pair,
		Messages:       []ChatMessage{},
		UpdatedAt:      time.Now(),
	}
	if _, err := db.ConversationsCollection.InsertOne(ctx, conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func appendConversationMessage(ctx context.Context, conversationID, senderID, text string) (*ChatMessage, error) {
	msg := ChatMessage{
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Message:   text,
		Timestamp: time.Now(),
	}
	res, err := db.ConversationsCollection.UpdateOne(ctx,
		bson.M{"conversationId": conversationID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"lastMessage": truncate(text, 120), "updatedAt": msg.Timestamp},
		})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &msg, nil
}

func conversationHistory(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	var conv Conversation
	err := db.ConversationsCollection.FindOne(ctx, bson.M{"conversationId": conversationID}).Decode(&conv)
	if err != nil {
		return nil, err
	}
	if conv.Messages == nil {
		conv.Messages = []ChatMessage{}
	}
	return conv.Messages, nil
}

// conversationList returns thread summaries without their message bodies.
func conversationList(ctx context.Context, filter bson.M) ([]Conversation, error) {
	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.M{"updatedAt": -1})
	cur, err := db.ConversationsCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Conversation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Conversation{}
	}
	return out, nil
}

func createGroup(ctx context.Context, societyID, name, createdBy string, residents []string) (*Group, error) {
	if !contains(residents, createdBy) {
		residents = append(residents, createdBy)
	}
	g := Group{
		GroupID:   uuid.NewString(),
		SocietyID: societyID,
		Name:      strings.TrimSpace(name),
		CreatedBy: createdBy,
		Residents: residents,
		Messages:  []ChatMessage{},
		CreatedAt: time.Now(),
	}
	if _, err := db.GroupChatsCollection.InsertOne(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// groupsForUser lists groups the user belongs to, newest first, without
// message bodies.
func groupsForUser(ctx context.Context, societyID, userID string) ([]Group, error) {
	opts := options.Find().
		SetProjection(bson.M{"messages": 0}).
		SetSort(bson.M{"createdAt": -1})
	cur, err := db.GroupChatsCollection.Find(ctx, bson.M{
		"societyId": societyID,
		"residents": bson.M{"$in": []string{userID}},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Group{}
	}
	return out, nil
}

func appendGroupMessage(ctx context.Context, groupID, senderID, text string) (*ChatMessage, error) {
	msg := ChatMessage{
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Message:   text,
		Timestamp: time.Now(),
	}
	res, err := db.GroupChatsCollection.UpdateOne(ctx,
		bson.M{"groupId": groupID, "residents": bson.M{"$in": []string{senderID}}},
		bson.M{"$push": bson.M{"messages": msg}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &msg, nil
}

func groupHistory(ctx context.Context, groupID string) ([]ChatMessage, error) {
	var g Group
	err := db.GroupChatsCollection.FindOne(ctx, bson.M{"groupId": groupID}).Decode(&g)
	if err != nil {
		return nil, err
	}
	if g.Messages == nil {
		g.Messages = []ChatMessage{}
	}
	return g.Messages, nil
}

func addGroupResidents(ctx context.Context, groupID string, residents []string) error {
	res, err := db.GroupChatsCollection.UpdateOne(ctx,
		bson.M{"groupId": groupID},
		bson.M{"$addToSet": bson.M{"residents": bson.M{"$each": residents}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func removeGroupResident(ctx context.Context, groupID, residentID string) error {
	res, err := db.GroupChatsCollection.UpdateOne(ctx,
		bson.M{"groupId": groupID},
		bson.M{"$pull": bson.M{"residents": residentID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for i := n; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return s[:i]
		}
	}
	return ""
}
