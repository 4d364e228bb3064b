package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Idiomas accepted for idiomaOriginal.
var IdiomasValidos = []string{"Español", "Inglés", "Francés", "Alemán", "Italiano", "Portugués", "Otro"}

const IdiomaPorDefecto = "Español"

type Libro struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Titulo          string             `bson:"titulo" json:"titulo"`
	ISBN            string             `bson:"isbn" json:"isbn"`
	Genero          string             `bson:"genero,omitempty" json:"genero,omitempty"`
	AnioPublicacion int                `bson:"anioPublicacion" json:"anioPublicacion"`
	Autor           primitive.ObjectID `bson:"autor" json:"autor"`
	ImagenURL       string             `bson:"imagenUrl,omitempty" json:"imagenUrl,omitempty"`
	Existencias     int                `bson:"existencias" json:"existencias"`
	IdiomaOriginal  string             `bson:"idiomaOriginal" json:"idiomaOriginal"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LibroConAutor is a Libro with the author reference resolved ($lookup).
type LibroConAutor struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	Titulo          string             `bson:"titulo" json:"titulo"`
	ISBN            string             `bson:"isbn" json:"isbn"`
	Genero          string             `bson:"genero,omitempty" json:"genero,omitempty"`
	AnioPublicacion int                `bson:"anioPublicacion" json:"anioPublicacion"`
	Autor           *AutorRef          `bson:"autor,omitempty" json:"autor,omitempty"`
	ImagenURL       string             `bson:"imagenUrl,omitempty" json:"imagenUrl,omitempty"`
	Existencias     int                `bson:"existencias" json:"existencias"`
	IdiomaOriginal  string             `bson:"idiomaOriginal" json:"idiomaOriginal"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LibroRef is the projection embedded in loan and return responses.
type LibroRef struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Titulo string             `bson:"titulo" json:"titulo"`
	ISBN   string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
}
