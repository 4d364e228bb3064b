package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Autor struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Nombre          string             `bson:"nombre" json:"nombre"`
	Nacionalidad    string             `bson:"nacionalidad,omitempty" json:"nacionalidad,omitempty"`
	FechaNacimiento *time.Time         `bson:"fechaNacimiento,omitempty" json:"fechaNacimiento,omitempty"`
	SitioWeb        string             `bson:"sitioWeb,omitempty" json:"sitioWeb,omitempty"`
	Biografia       string             `bson:"biografia,omitempty" json:"biografia,omitempty"`
	ImagenURL       string             `bson:"imagenUrl,omitempty" json:"imagenUrl,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// AutorRef is the projection embedded in book responses.
type AutorRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Nombre string             `bson:"nombre" json:"nombre"`
}
