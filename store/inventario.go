package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conditional stock updates for the inventory ledger. Both are single
// document commands, so concurrent requests against the same book cannot
// interleave a read-modify-write and drive existencias negative.

// ReserveCopy decrements existencias by one, only if at least one copy is
// left. Returns false when no document matched: the book is missing or out
// of stock (the caller disambiguates).
func (db *DB) ReserveCopy(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Libros().UpdateOne(ctx,
		bson.M{"_id": id, "existencias": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"existencias": -1}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// ReleaseCopy increments existencias by one. Returns false when the book no
// longer exists.
func (db *DB) ReleaseCopy(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := db.Libros().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"existencias": 1}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
