package polls

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vasati/db"
	"vasati/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound     = errors.New("poll not found")
	ErrAlreadyVoted = errors.New("you have already voted in this poll")
	ErrExpired      = errors.New("time up for the polling")
)

type Vote struct {
	UserID  string    `json:"userId" bson:"userId"`
	Option  string    `json:"option" bson:"option"`
	VotedAt time.Time `json:"votedAt" bson:"votedAt"`
}

type Poll struct {
	PollID    string    `json:"pollId" bson:"pollId"`
	SocietyID string    `json:"societyId" bson:"societyId"`
	Question  string    `json:"question" bson:"question"`
	Options   []string  `json:"options" bson:"options"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
	Status    bool      `json:"status" bson:"status"` // active flag
	CreatedBy string    `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	Votes     []Vote    `json:"votes" bson:"votes"`
}

// Create persists a new active poll.
func Create(ctx context.Context, p *Poll) error {
	if p.Question == "" || len(p.Options) < 2 || p.SocietyID == "" {
		return errors.New("a poll needs a question and at least two options")
	}
	p.PollID = uuid.NewString()
	p.Status = true
	p.CreatedAt = time.Now()
	if p.Votes == nil {
		p.Votes = []Vote{}
	}
	_, err := db.PollsCollection.InsertOne(ctx, p)
	return err
}

// ListBySociety returns a society's polls, flipping expired ones inactive
// before the read so clients never see a stale active flag.
func ListBySociety(ctx context.Context, societyID string) ([]Poll, error) {
	_, err := db.PollsCollection.UpdateMany(ctx,
		bson.M{"societyId": societyID, "status": true, "expiresAt": bson.M{"$lt": time.Now()}},
		bson.M{"$set": bson.M{"status": false}})
	if err != nil {
		return nil, err
	}

	cur, err := db.PollsCollection.Find(ctx, bson.M{"societyId": societyID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Poll
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Poll{}
	}
	return out, nil
}

// voteFailure classifies why the conditional vote update matched nothing.
// A prior vote by the same user wins over expiry, matching the order the
// voter would want to hear about it.
func voteFailure(p *Poll, userID string, now time.Time) error {
	for _, v := range p.Votes {
		if v.UserID == userID {
			return ErrAlreadyVoted
		}
	}
	if !p.Status || !p.ExpiresAt.After(now) {
		return ErrExpired
	}
	// The filter matched nothing yet every predicate holds on the decoded
	// document: the poll changed between the two reads. Report not-found so
	// the caller retries rather than mislabeling the vote.
	return ErrNotFound
}

// CastVote appends a vote under a conditional filter so the one-vote-per-user
// rule holds at the data layer even under concurrent voters.
func CastVote(ctx context.Context, pollID, userID, option string) (*Poll, error) {
	now := time.Now()
	res, err := db.PollsCollection.UpdateOne(ctx,
		bson.M{
			"pollId":       pollID,
			"status":       true,
			"expiresAt":    bson.M{"$gt": now},
			"votes.userId": bson.M{"$ne": userID},
		},
		bson.M{"$push": bson.M{"votes": Vote{UserID: userID, Option: option, VotedAt: now}}})
	if err != nil {
		return nil, err
	}

	if res.ModifiedCount == 0 {
		var p Poll
		err := db.PollsCollection.FindOne(ctx, bson.M{"pollId": pollID}).Decode(&p)
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}
		verr := voteFailure(&p, userID, now)
		if verr == ErrExpired && p.Status {
			// Keep the stored flag honest.
			db.PollsCollection.UpdateOne(ctx, bson.M{"pollId": pollID}, bson.M{"$set": bson.M{"status": false}})
		}
		return nil, verr
	}

	var p Poll
	if err := db.PollsCollection.FindOne(ctx, bson.M{"pollId": pollID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Edit rewrites question/options/expiry of an existing poll.
func Edit(ctx context.Context, pollID string, question string, options []string, expiresAt time.Time) (*Poll, error) {
	set := bson.M{}
	if question != "" {
		set["question"] = question
	}
	if len(options) > 0 {
		set["options"] = options
	}
	if !expiresAt.IsZero() {
		set["expiresAt"] = expiresAt
		set["status"] = expiresAt.After(time.Now())
	}
	if len(set) == 0 {
		return nil, errors.New("nothing to update")
	}

	res, err := db.PollsCollection.UpdateOne(ctx, bson.M{"pollId": pollID}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	var p Poll
	if err := db.PollsCollection.FindOne(ctx, bson.M{"pollId": pollID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a poll and returns its society for re-broadcast.
func Delete(ctx context.Context, pollID string) (string, error) {
	var p Poll
	err := db.PollsCollection.FindOne(ctx, bson.M{"pollId": pollID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	_, err = db.PollsCollection.DeleteOne(ctx, bson.M{"pollId": pollID})
	return p.SocietyID, err
}

// GetPollsBySociety is the REST view over the same store the gateway uses.
func GetPollsBySociety(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	out, err := ListBySociety(r.Context(), ps.ByName("societyId"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "polls": out})
}
