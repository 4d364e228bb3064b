package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles de usuario.
const (
	RolAdmin = "admin"
	RolUser  = "user"
)

var RolesValidos = []string{RolAdmin, RolUser}

var GenerosValidos = []string{"masculino", "femenino", "otro", "prefiero_no_decir"}

var TiposIdentificacionValidos = []string{"cc", "ce", "ti", "pasaporte"}

type Usuario struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Nombre     string             `bson:"nombre" json:"nombre"`
	Correo     string             `bson:"correo" json:"correo"`
	Telefono   string             `bson:"telefono,omitempty" json:"telefono,omitempty"`
	Contrasena string             `bson:"contrasena" json:"-"` // bcrypt hash, never serialized
	Rol        string             `bson:"rol" json:"rol"`
	// Campos adicionales para lectores
	Apellido             string    `bson:"apellido,omitempty" json:"apellido,omitempty"`
	Direccion            string    `bson:"direccion,omitempty" json:"direccion,omitempty"`
	Genero               string    `bson:"genero,omitempty" json:"genero,omitempty"`
	TipoIdentificacion   string    `bson:"tipoIdentificacion,omitempty" json:"tipoIdentificacion,omitempty"`
	NumeroIdentificacion string    `bson:"numeroIdentificacion,omitempty" json:"numeroIdentificacion,omitempty"`
	CreatedAt            time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UsuarioRef is the projection embedded in loan and return responses.
type UsuarioRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Nombre string             `bson:"nombre" json:"nombre"`
	Correo string             `bson:"correo,omitempty" json:"correo,omitempty"`
}
