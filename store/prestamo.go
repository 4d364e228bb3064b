package store

import (
	"context"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PrestamoFilter holds the list-endpoint query filters.
type PrestamoFilter struct {
	Usuario    primitive.ObjectID
	Libro      primitive.ObjectID
	Estado     string
	FechaDesde time.Time
	FechaHasta time.Time
}

func (f PrestamoFilter) query() bson.M {
	q := bson.M{}
	if !f.Usuario.IsZero() {
		q["usuario"] = f.Usuario
	}
	if !f.Libro.IsZero() {
		q["libro"] = f.Libro
	}
	if f.Estado != "" {
		q["estado"] = f.Estado
	}
	if !f.FechaDesde.IsZero() || !f.FechaHasta.IsZero() {
		rango := bson.M{}
		if !f.FechaDesde.IsZero() {
			rango["$gte"] = f.FechaDesde
		}
		if !f.FechaHasta.IsZero() {
			rango["$lte"] = f.FechaHasta
		}
		q["fechaPrestamo"] = rango
	}
	return q
}

func prestamoLookups() []bson.D {
	stages := lookupRef("usuarios", "usuario")
	return append(stages, lookupRef("libros", "libro")...)
}

func (db *DB) ListPrestamos(ctx context.Context, f PrestamoFilter, p PageOpts) ([]models.PrestamoConRefs, int64, error) {
	return aggregatePage[models.PrestamoConRefs](ctx, db.Prestamos(), f.query(), prestamoLookups(), p)
}

func (db *DB) PrestamoByID(ctx context.Context, id primitive.ObjectID) (*models.Prestamo, error) {
	var p models.Prestamo
	err := db.Prestamos().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PrestamoConRefsByID resolves user and book for detail responses.
func (db *DB) PrestamoConRefsByID(ctx context.Context, id primitive.ObjectID) (*models.PrestamoConRefs, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, prestamoLookups()...)
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var prestamos []models.PrestamoConRefs
	if err := cur.All(ctx, &prestamos); err != nil {
		return nil, err
	}
	if len(prestamos) == 0 {
		return nil, nil
	}
	return &prestamos[0], nil
}

func (db *DB) InsertPrestamo(ctx context.Context, prestamo *models.Prestamo) (primitive.ObjectID, error) {
	now := time.Now()
	prestamo.CreatedAt = now
	prestamo.UpdatedAt = now
	res, err := db.Prestamos().InsertOne(ctx, prestamo)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// SetPrestamoEstado persists a state transition; fechaDevolucion is updated
// only when non-nil.
func (db *DB) SetPrestamoEstado(ctx context.Context, id primitive.ObjectID, estado string, fechaDevolucion *time.Time) error {
	update := bson.M{"estado": estado, "updatedAt": time.Now()}
	if fechaDevolucion != nil {
		update["fechaDevolucion"] = *fechaDevolucion
	}
	_, err := db.Prestamos().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeletePrestamo(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Prestamos().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// ActiveLoanExists reports whether a loan other than exclude holds the book
// in estado activo. This backs the duplicate-active-loan guard.
func (db *DB) ActiveLoanExists(ctx context.Context, libro, exclude primitive.ObjectID) (bool, error) {
	q := bson.M{"libro": libro, "estado": models.EstadoActivo}
	if !exclude.IsZero() {
		q["_id"] = bson.M{"$ne": exclude}
	}
	n, err := db.Prestamos().CountDocuments(ctx, q)
	return n > 0, err
}

// LoansBlockingDelete reports whether the book has activo or vencido loans,
// which forbid deleting it.
func (db *DB) LoansBlockingDelete(ctx context.Context, libro primitive.ObjectID) (bool, error) {
	n, err := db.Prestamos().CountDocuments(ctx, bson.M{
		"libro":  libro,
		"estado": bson.M{"$in": bson.A{models.EstadoActivo, models.EstadoVencido}},
	})
	return n > 0, err
}

func (db *DB) PrestamosCount(ctx context.Context, estado string) (int64, error) {
	q := bson.M{}
	if estado != "" {
		q["estado"] = estado
	}
	return db.Prestamos().CountDocuments(ctx, q)
}

func (db *DB) PrestamosCountSince(ctx context.Context, desde time.Time) (int64, error) {
	return db.Prestamos().CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": desde}})
}

// PrestamosVencidos returns the activo loans past their due date, oldest due
// first, with user and book resolved.
func (db *DB) PrestamosVencidos(ctx context.Context, hoy time.Time) ([]models.PrestamoConRefs, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"estado":          models.EstadoActivo,
			"fechaDevolucion": bson.M{"$lt": hoy},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "fechaDevolucion", Value: 1}}}},
	}
	pipeline = append(pipeline, prestamoLookups()...)
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	prestamos := []models.PrestamoConRefs{}
	if err := cur.All(ctx, &prestamos); err != nil {
		return nil, err
	}
	return prestamos, nil
}

// RecentPrestamos returns the latest n loans with user and book resolved,
// for the dashboard activity feed.
func (db *DB) RecentPrestamos(ctx context.Context, n int) ([]models.PrestamoConRefs, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$limit", Value: n}},
	}
	pipeline = append(pipeline, prestamoLookups()...)
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	prestamos := []models.PrestamoConRefs{}
	if err := cur.All(ctx, &prestamos); err != nil {
		return nil, err
	}
	return prestamos, nil
}

// AllPrestamosConRefs returns every loan with references resolved, for the
// report exports.
func (db *DB) AllPrestamosConRefs(ctx context.Context) ([]models.PrestamoConRefs, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "fechaPrestamo", Value: -1}}}},
	}
	pipeline = append(pipeline, prestamoLookups()...)
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var prestamos []models.PrestamoConRefs
	if err := cur.All(ctx, &prestamos); err != nil {
		return nil, err
	}
	return prestamos, nil
}
