package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Autores() *mongo.Collection {
	return db.Database.Collection("autores")
}

func (db *DB) Libros() *mongo.Collection {
	return db.Database.Collection("libros")
}

func (db *DB) Usuarios() *mongo.Collection {
	return db.Database.Collection("usuarios")
}

func (db *DB) Prestamos() *mongo.Collection {
	return db.Database.Collection("prestamos")
}

func (db *DB) Devoluciones() *mongo.Collection {
	return db.Database.Collection("devoluciones")
}

// EnsureIndexes creates the unique indexes the domain depends on (ISBN,
// correo) plus the lookup indexes the reference queries filter on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := db.Libros().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "autor", Value: 1}}},
		{Keys: bson.D{{Key: "existencias", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Usuarios().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "correo", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "rol", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Prestamos().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "usuario", Value: 1}}},
		{Keys: bson.D{{Key: "libro", Value: 1}}},
		{Keys: bson.D{{Key: "estado", Value: 1}}},
		{Keys: bson.D{{Key: "fechaPrestamo", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = db.Devoluciones().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "prestamo", Value: 1}}},
		{Keys: bson.D{{Key: "estado", Value: 1}}},
		{Keys: bson.D{{Key: "fechaDevolucionReal", Value: 1}}},
	})
	return err
}

// IsDuplicateKey reports whether err is a Mongo unique-index violation
// (duplicate ISBN or correo).
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
