package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageOpts carries the offset/limit paging knobs shared by every listing.
type PageOpts struct {
	Page  int
	Limit int
	Sort  bson.D
}

func (p PageOpts) normalized() PageOpts {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	return p
}

func (p PageOpts) skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// Pages returns the number of pages for total documents at p.Limit per page.
func (p PageOpts) Pages(total int64) int64 {
	limit := int64(p.normalized().Limit)
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func sortBy(field string, dir int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: field, Value: dir}})
}

// findPage runs a paginated Find and decodes into []T, returning the page
// plus the total match count.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, p PageOpts) ([]T, int64, error) {
	p = p.normalized()
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(p.skip()).SetLimit(int64(p.Limit))
	if p.Sort != nil {
		opts.SetSort(p.Sort)
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// aggregatePage runs a paginated aggregation: filter, then the caller's
// lookup stages, then sort/skip/limit. Used by listings that resolve
// references.
func aggregatePage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, lookups []bson.D, p PageOpts) ([]T, int64, error) {
	p = p.normalized()
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: filter}}}
	if p.Sort != nil {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: p.Sort}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$skip", Value: p.skip()}},
		bson.D{{Key: "$limit", Value: int64(p.Limit)}},
	)
	pipeline = append(pipeline, lookups...)
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
