package store

import "go.mongodb.org/mongo-driver/bson"

// lookupRef resolves a single-document reference in place: $lookup into the
// same field name, then $unwind keeping rows whose reference is dangling.
// Typed decode projects the joined document down to the Ref structs, so no
// $project stage is needed (and usuario.contrasena never leaves the store).
func lookupRef(from, field string) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         from,
			"localField":   field,
			"foreignField": "_id",
			"as":           field,
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$" + field,
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}
