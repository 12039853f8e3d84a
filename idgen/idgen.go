package idgen

import (
	"context"
	"log"
	"time"

	"vasati/rdx"
	"vasati/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// reservationTTL keeps a claimed code off the table long enough for the
// insert that follows generation to land.
const reservationTTL = 24 * time.Hour

const maxAttempts = 25

// Code draws a short numeric code for the given entity kind. Uniqueness is
// enforced against both a Redis reservation (survives across processes) and
// the persisted documents matching filterField, so restarts cannot reissue a
// live code.
func Code(ctx context.Context, kind string, digits int, coll *mongo.Collection, filterField string) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code := utils.GenerateRandomDigitString(digits)

		ok, err := rdx.Conn.SetNX(ctx, "codes:"+kind+":"+code, "1", reservationTTL).Result()
		if err != nil {
			// Redis down: fall back to the persisted check alone.
			log.Printf("idgen: redis unavailable, falling back to db check: %v", err)
			ok = true
		}
		if !ok {
			continue
		}

		if coll != nil {
			n, err := coll.CountDocuments(ctx, bson.M{filterField: code})
			if err != nil {
				return "", err
			}
			if n > 0 {
				continue
			}
		}
		return code, nil
	}
	// Exhausted the keyspace sample; hand back a random code anyway.
	log.Printf("idgen: could not reserve a unique %s code after %d attempts", kind, maxAttempts)
	return utils.GenerateRandomDigitString(digits), nil
}
