package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Read-only aggregations backing the report endpoints. These run fully
// concurrently with loan mutations and may serve slightly stale snapshots.

type LibroMasPrestado struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Titulo      string             `bson:"titulo" json:"titulo"`
	Count       int64              `bson:"count" json:"count"`
	AutorNombre string             `bson:"autorNombre,omitempty" json:"autorNombre,omitempty"`
}

// LibrosMasPrestados groups loans by book and resolves title and author
// name for the top n.
func (db *DB) LibrosMasPrestados(ctx context.Context, n int) ([]LibroMasPrestado, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$libro", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: n}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "libros", "localField": "_id", "foreignField": "_id", "as": "libro",
		}}},
		bson.D{{Key: "$unwind", Value: "$libro"}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "autores", "localField": "libro.autor", "foreignField": "_id", "as": "autor",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$autor", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$project", Value: bson.M{
			"titulo":      "$libro.titulo",
			"count":       1,
			"autorNombre": "$autor.nombre",
		}}},
	}
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	res := []LibroMasPrestado{}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

type PrestamosMes struct {
	Mes       int   `bson:"_id"`
	Total     int64 `bson:"count"`
	Activos   int64 `bson:"activos"`
	Devueltos int64 `bson:"devueltos"`
	Vencidos  int64 `bson:"vencidos"`
}

// PrestamosPorMes groups the year's loans by calendar month with per-state
// splits. Months with no loans are absent; the handler fills the gaps.
func (db *DB) PrestamosPorMes(ctx context.Context, year int) ([]PrestamosMes, error) {
	desde := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	cond := func(estado string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$estado", estado}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"fechaPrestamo": bson.M{"$gte": desde, "$lt": hasta},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       bson.M{"$month": "$fechaPrestamo"},
			"count":     bson.M{"$sum": 1},
			"activos":   cond("activo"),
			"devueltos": cond("devuelto"),
			"vencidos":  cond("vencido"),
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	res := []PrestamosMes{}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

type ConteoPorClave struct {
	Clave string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

func (db *DB) UsuariosPorRol(ctx context.Context) ([]ConteoPorClave, error) {
	return db.groupCount(ctx, db.Usuarios(), mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$rol", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	})
}

func (db *DB) LibrosPorGenero(ctx context.Context) ([]ConteoPorClave, error) {
	return db.groupCount(ctx, db.Libros(), mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"genero": bson.M{"$ne": "", "$exists": true}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$genero", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: 10}},
	})
}

func (db *DB) groupCount(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]ConteoPorClave, error) {
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	res := []ConteoPorClave{}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

type UsuarioMasActivo struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Nombre string             `bson:"nombre" json:"nombre"`
	Correo string             `bson:"correo" json:"correo"`
	Count  int64              `bson:"count" json:"count"`
}

// UsuariosMasActivos groups loans by user and resolves name and email for
// the top n.
func (db *DB) UsuariosMasActivos(ctx context.Context, n int) ([]UsuarioMasActivo, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$usuario", "count": bson.M{"$sum": 1}}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		bson.D{{Key: "$limit", Value: n}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "usuarios", "localField": "_id", "foreignField": "_id", "as": "usuario",
		}}},
		bson.D{{Key: "$unwind", Value: "$usuario"}},
		bson.D{{Key: "$project", Value: bson.M{
			"nombre": "$usuario.nombre",
			"correo": "$usuario.correo",
			"count":  1,
		}}},
	}
	cur, err := db.Prestamos().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	res := []UsuarioMasActivo{}
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ExistenciasDisponiblesTotal sums the available copies of every in-stock
// book.
func (db *DB) ExistenciasDisponiblesTotal(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"existencias": bson.M{"$gt": 0}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$existencias"}}}},
	}
	cur, err := db.Libros().Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)
	var res []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &res); err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}
