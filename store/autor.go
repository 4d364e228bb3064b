package store

import (
	"context"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AutorFilter holds the list-endpoint query filters.
type AutorFilter struct {
	Nombre         string
	Nacionalidad   string
	AnioNacimiento int
}

func (f AutorFilter) query() bson.M {
	q := bson.M{}
	if f.Nombre != "" {
		q["nombre"] = primitive.Regex{Pattern: f.Nombre, Options: "i"}
	}
	if f.Nacionalidad != "" {
		q["nacionalidad"] = primitive.Regex{Pattern: f.Nacionalidad, Options: "i"}
	}
	if f.AnioNacimiento != 0 {
		q["fechaNacimiento"] = bson.M{
			"$gte": time.Date(f.AnioNacimiento, time.January, 1, 0, 0, 0, 0, time.UTC),
			"$lt":  time.Date(f.AnioNacimiento+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return q
}

func (db *DB) ListAutores(ctx context.Context, f AutorFilter, p PageOpts) ([]models.Autor, int64, error) {
	return findPage[models.Autor](ctx, db.Autores(), f.query(), p)
}

func (db *DB) AutorByID(ctx context.Context, id primitive.ObjectID) (*models.Autor, error) {
	var a models.Autor
	err := db.Autores().FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) InsertAutor(ctx context.Context, autor *models.Autor) (primitive.ObjectID, error) {
	now := time.Now()
	autor.CreatedAt = now
	autor.UpdatedAt = now
	res, err := db.Autores().InsertOne(ctx, autor)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateAutor(ctx context.Context, id primitive.ObjectID, autor *models.Autor) error {
	autor.UpdatedAt = time.Now()
	update := bson.M{
		"nombre":          autor.Nombre,
		"nacionalidad":    autor.Nacionalidad,
		"fechaNacimiento": autor.FechaNacimiento,
		"sitioWeb":        autor.SitioWeb,
		"biografia":       autor.Biografia,
		"imagenUrl":       autor.ImagenURL,
		"updatedAt":       autor.UpdatedAt,
	}
	_, err := db.Autores().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteAutor(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Autores().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) AutoresCount(ctx context.Context) (int64, error) {
	return db.Autores().CountDocuments(ctx, bson.M{})
}

// AllAutores returns every author, for the report exports.
func (db *DB) AllAutores(ctx context.Context) ([]models.Autor, error) {
	cur, err := db.Autores().Find(ctx, bson.M{}, sortBy("nombre", 1))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var autores []models.Autor
	if err := cur.All(ctx, &autores); err != nil {
		return nil, err
	}
	return autores, nil
}
