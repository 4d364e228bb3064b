package store

import (
	"context"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LibroFilter holds the list-endpoint query filters.
type LibroFilter struct {
	Titulo          string
	Autor           primitive.ObjectID
	Genero          string
	AnioPublicacion int
	Disponible      *bool
}

func (f LibroFilter) query() bson.M {
	q := bson.M{}
	if f.Titulo != "" {
		q["titulo"] = primitive.Regex{Pattern: f.Titulo, Options: "i"}
	}
	if !f.Autor.IsZero() {
		q["autor"] = f.Autor
	}
	if f.Genero != "" {
		q["genero"] = primitive.Regex{Pattern: f.Genero, Options: "i"}
	}
	if f.AnioPublicacion != 0 {
		q["anioPublicacion"] = f.AnioPublicacion
	}
	if f.Disponible != nil {
		if *f.Disponible {
			q["existencias"] = bson.M{"$gt": 0}
		} else {
			q["existencias"] = bson.M{"$lte": 0}
		}
	}
	return q
}

func (db *DB) ListLibros(ctx context.Context, f LibroFilter, p PageOpts) ([]models.LibroConAutor, int64, error) {
	return aggregatePage[models.LibroConAutor](ctx, db.Libros(), f.query(), lookupRef("autores", "autor"), p)
}

func (db *DB) LibroByID(ctx context.Context, id primitive.ObjectID) (*models.Libro, error) {
	var l models.Libro
	err := db.Libros().FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// LibroConAutorByID resolves the author reference for detail responses.
func (db *DB) LibroConAutorByID(ctx context.Context, id primitive.ObjectID) (*models.LibroConAutor, error) {
	pipeline := mongo.Pipeline{bson.D{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, lookupRef("autores", "autor")...)
	cur, err := db.Libros().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var libros []models.LibroConAutor
	if err := cur.All(ctx, &libros); err != nil {
		return nil, err
	}
	if len(libros) == 0 {
		return nil, nil
	}
	return &libros[0], nil
}

func (db *DB) InsertLibro(ctx context.Context, libro *models.Libro) (primitive.ObjectID, error) {
	now := time.Now()
	libro.CreatedAt = now
	libro.UpdatedAt = now
	res, err := db.Libros().InsertOne(ctx, libro)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateLibro(ctx context.Context, id primitive.ObjectID, libro *models.Libro) error {
	libro.UpdatedAt = time.Now()
	update := bson.M{
		"titulo":          libro.Titulo,
		"isbn":            libro.ISBN,
		"genero":          libro.Genero,
		"anioPublicacion": libro.AnioPublicacion,
		"autor":           libro.Autor,
		"imagenUrl":       libro.ImagenURL,
		"existencias":     libro.Existencias,
		"idiomaOriginal":  libro.IdiomaOriginal,
		"updatedAt":       libro.UpdatedAt,
	}
	_, err := db.Libros().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteLibro(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Libros().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// LibrosDisponibles returns every book with copies on the shelf.
func (db *DB) LibrosDisponibles(ctx context.Context) ([]models.LibroConAutor, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"existencias": bson.M{"$gt": 0}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "titulo", Value: 1}}}},
	}
	pipeline = append(pipeline, lookupRef("autores", "autor")...)
	cur, err := db.Libros().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	libros := []models.LibroConAutor{}
	if err := cur.All(ctx, &libros); err != nil {
		return nil, err
	}
	return libros, nil
}

func (db *DB) LibrosCount(ctx context.Context) (int64, error) {
	return db.Libros().CountDocuments(ctx, bson.M{})
}

func (db *DB) LibrosDisponiblesCount(ctx context.Context) (int64, error) {
	return db.Libros().CountDocuments(ctx, bson.M{"existencias": bson.M{"$gt": 0}})
}

// AllLibrosConAutor returns every book with its author resolved, for the
// report exports.
func (db *DB) AllLibrosConAutor(ctx context.Context) ([]models.LibroConAutor, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "titulo", Value: 1}}}},
	}
	pipeline = append(pipeline, lookupRef("autores", "autor")...)
	cur, err := db.Libros().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var libros []models.LibroConAutor
	if err := cur.All(ctx, &libros); err != nil {
		return nil, err
	}
	return libros, nil
}
