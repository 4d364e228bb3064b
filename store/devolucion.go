package store

import (
	"context"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DevolucionFilter holds the list-endpoint query filters.
type DevolucionFilter struct {
	Estado     string
	Usuario    primitive.ObjectID
	Libro      primitive.ObjectID
	FechaDesde time.Time
	FechaHasta time.Time
}

func (f DevolucionFilter) query() bson.M {
	q := bson.M{}
	if f.Estado != "" {
		q["estado"] = f.Estado
	}
	if !f.Usuario.IsZero() {
		q["usuario"] = f.Usuario
	}
	if !f.Libro.IsZero() {
		q["libro"] = f.Libro
	}
	if !f.FechaDesde.IsZero() || !f.FechaHasta.IsZero() {
		rango := bson.M{}
		if !f.FechaDesde.IsZero() {
			rango["$gte"] = f.FechaDesde
		}
		if !f.FechaHasta.IsZero() {
			rango["$lte"] = f.FechaHasta
		}
		q["fechaDevolucionReal"] = rango
	}
	return q
}

func devolucionLookups() []bson.D {
	stages := lookupRef("usuarios", "usuario")
	return append(stages, lookupRef("libros", "libro")...)
}

func (db *DB) ListDevoluciones(ctx context.Context, f DevolucionFilter, p PageOpts) ([]models.DevolucionConRefs, int64, error) {
	return aggregatePage[models.DevolucionConRefs](ctx, db.Devoluciones(), f.query(), devolucionLookups(), p)
}

func (db *DB) DevolucionByID(ctx context.Context, id primitive.ObjectID) (*models.Devolucion, error) {
	var d models.Devolucion
	err := db.Devoluciones().FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DevolucionConRefsByID resolves user and book for detail responses.
func (db *DB) DevolucionConRefsByID(ctx context.Context, id primitive.ObjectID) (*models.DevolucionConRefs, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, devolucionLookups()...)
	cur, err := db.Devoluciones().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var devoluciones []models.DevolucionConRefs
	if err := cur.All(ctx, &devoluciones); err != nil {
		return nil, err
	}
	if len(devoluciones) == 0 {
		return nil, nil
	}
	return &devoluciones[0], nil
}

func (db *DB) InsertDevolucion(ctx context.Context, devolucion *models.Devolucion) (primitive.ObjectID, error) {
	now := time.Now()
	devolucion.CreatedAt = now
	devolucion.UpdatedAt = now
	res, err := db.Devoluciones().InsertOne(ctx, devolucion)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// UpdateDevolucion persists the mutable return fields; loan state and the
// inventory ledger are never touched here.
func (db *DB) UpdateDevolucion(ctx context.Context, id primitive.ObjectID, devolucion *models.Devolucion) error {
	devolucion.UpdatedAt = time.Now()
	update := bson.M{
		"condicionLibro": devolucion.CondicionLibro,
		"observaciones":  devolucion.Observaciones,
		"multa":          devolucion.Multa,
		"updatedAt":      devolucion.UpdatedAt,
	}
	_, err := db.Devoluciones().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteDevolucion(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Devoluciones().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DevolucionForPrestamoExists backs the one-return-per-loan rule.
func (db *DB) DevolucionForPrestamoExists(ctx context.Context, prestamo primitive.ObjectID) (bool, error) {
	n, err := db.Devoluciones().CountDocuments(ctx, bson.M{"prestamo": prestamo})
	return n > 0, err
}

// EstadisticasDevoluciones aggregates totals, on-time/late splits and fine
// sums over the whole collection.
func (db *DB) EstadisticasDevoluciones(ctx context.Context) (*models.EstadisticasDevoluciones, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":               nil,
			"totalDevoluciones": bson.M{"$sum": 1},
			"devolucionesATiempo": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$estado", models.DevolucionATiempo}}, 1, 0},
			}},
			"devolucionesRetrasadas": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$estado", models.DevolucionRetrasada}}, 1, 0},
			}},
			"totalMultas":    bson.M{"$sum": "$multa"},
			"promedioMultas": bson.M{"$avg": "$multa"},
		}}},
	}
	cur, err := db.Devoluciones().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var stats []models.EstadisticasDevoluciones
	if err := cur.All(ctx, &stats); err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return &models.EstadisticasDevoluciones{}, nil
	}
	return &stats[0], nil
}

// AllDevolucionesConRefs returns every return with references resolved, for
// the report exports.
func (db *DB) AllDevolucionesConRefs(ctx context.Context) ([]models.DevolucionConRefs, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "fechaDevolucionReal", Value: -1}}}},
	}
	pipeline = append(pipeline, devolucionLookups()...)
	cur, err := db.Devoluciones().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var devoluciones []models.DevolucionConRefs
	if err := cur.All(ctx, &devoluciones); err != nil {
		return nil, err
	}
	return devoluciones, nil
}
