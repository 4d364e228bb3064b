package store

import (
	"context"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsuarioFilter holds the list-endpoint query filters.
type UsuarioFilter struct {
	Nombre string
	Correo string
	Rol    string
	Genero string
}

func (f UsuarioFilter) query() bson.M {
	q := bson.M{}
	if f.Nombre != "" {
		q["nombre"] = primitive.Regex{Pattern: f.Nombre, Options: "i"}
	}
	if f.Correo != "" {
		q["correo"] = primitive.Regex{Pattern: f.Correo, Options: "i"}
	}
	if f.Rol != "" {
		q["rol"] = f.Rol
	}
	if f.Genero != "" {
		q["genero"] = f.Genero
	}
	return q
}

func (db *DB) ListUsuarios(ctx context.Context, f UsuarioFilter, p PageOpts) ([]models.Usuario, int64, error) {
	return findPage[models.Usuario](ctx, db.Usuarios(), f.query(), p)
}

func (db *DB) UsuarioByID(ctx context.Context, id primitive.ObjectID) (*models.Usuario, error) {
	var u models.Usuario
	err := db.Usuarios().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UsuarioByCorreo(ctx context.Context, correo string) (*models.Usuario, error) {
	var u models.Usuario
	err := db.Usuarios().FindOne(ctx, bson.M{"correo": correo}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) InsertUsuario(ctx context.Context, usuario *models.Usuario) (primitive.ObjectID, error) {
	now := time.Now()
	usuario.CreatedAt = now
	usuario.UpdatedAt = now
	res, err := db.Usuarios().InsertOne(ctx, usuario)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateUsuario(ctx context.Context, id primitive.ObjectID, usuario *models.Usuario) error {
	usuario.UpdatedAt = time.Now()
	update := bson.M{
		"nombre":               usuario.Nombre,
		"correo":               usuario.Correo,
		"telefono":             usuario.Telefono,
		"rol":                  usuario.Rol,
		"apellido":             usuario.Apellido,
		"direccion":            usuario.Direccion,
		"genero":               usuario.Genero,
		"tipoIdentificacion":   usuario.TipoIdentificacion,
		"numeroIdentificacion": usuario.NumeroIdentificacion,
		"updatedAt":            usuario.UpdatedAt,
	}
	if usuario.Contrasena != "" {
		update["contrasena"] = usuario.Contrasena
	}
	_, err := db.Usuarios().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (db *DB) DeleteUsuario(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Usuarios().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) UsuariosCount(ctx context.Context) (int64, error) {
	return db.Usuarios().CountDocuments(ctx, bson.M{})
}

func (db *DB) AdminExists(ctx context.Context) (bool, error) {
	n, err := db.Usuarios().CountDocuments(ctx, bson.M{"rol": models.RolAdmin})
	return n > 0, err
}

// AllUsuarios returns every user, for the report exports. Passwords stay in
// the struct but are never serialized.
func (db *DB) AllUsuarios(ctx context.Context) ([]models.Usuario, error) {
	cur, err := db.Usuarios().Find(ctx, bson.M{}, sortBy("createdAt", -1))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var usuarios []models.Usuario
	if err := cur.All(ctx, &usuarios); err != nil {
		return nil, err
	}
	return usuarios, nil
}
