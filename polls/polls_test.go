package polls

import (
	"context"
	"testing"
	"time"
)

func TestCreateRejectsInvalidPolls(t *testing.T) {
	cases := []Poll{
		{SocietyID: "s100001", Options: []string{"yes", "no"}},                        // no question
		{SocietyID: "s100001", Question: "Paint the gate?", Options: []string{"yes"}}, // one option
		{Question: "Paint the gate?", Options: []string{"yes", "no"}},                 // no society
	}
	for i := range cases {
		if err := Create(context.Background(), &cases[i]); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestVoteFailure(t *testing.T) {
	at := func(s string) time.Time {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Fatal(err)
		}
		return parsed
	}
	clock := at("2026-08-01T12:00:00Z")

	cases := []struct {
		name string
		poll Poll
		user string
		want error
	}{
		{
			"second vote by the same user is rejected",
			Poll{Status: true, ExpiresAt: at("2026-08-02T00:00:00Z"), Votes: []Vote{{UserID: "u1", Option: "yes"}}},
			"u1", ErrAlreadyVoted,
		},
		{
			"prior vote wins over expiry",
			Poll{Status: false, ExpiresAt: at("2026-07-01T00:00:00Z"), Votes: []Vote{{UserID: "u1", Option: "yes"}}},
			"u1", ErrAlreadyVoted,
		},
		{
			"expired by time",
			Poll{Status: true, ExpiresAt: at("2026-08-01T11:59:59Z")},
			"u1", ErrExpired,
		},
		{
			"expiring this instant counts as expired",
			Poll{Status: true, ExpiresAt: at("2026-08-01T12:00:00Z")},
			"u1", ErrExpired,
		},
		{
			"already flipped inactive",
			Poll{Status: false, ExpiresAt: at("2026-08-02T00:00:00Z")},
			"u1", ErrExpired,
		},
		{
			"still votable means the document moved underneath",
			Poll{Status: true, ExpiresAt: at("2026-08-02T00:00:00Z"), Votes: []Vote{{UserID: "u2", Option: "no"}}},
			"u1", ErrNotFound,
		},
	}
	for _, c := range cases {
		if got := voteFailure(&c.poll, c.user, clock); got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestEditRejectsEmptyUpdate(t *testing.T) {
	if _, err := Edit(context.Background(), "p1", "", nil, time.Time{}); err == nil {
		t.Error("expected error when nothing is being updated")
	}
}
