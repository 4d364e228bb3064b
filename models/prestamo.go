package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados del préstamo.
const (
	EstadoActivo   = "activo"
	EstadoDevuelto = "devuelto"
	EstadoVencido  = "vencido"
)

var EstadosPrestamoValidos = []string{EstadoActivo, EstadoDevuelto, EstadoVencido}

type Prestamo struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Usuario         primitive.ObjectID `bson:"usuario" json:"usuario"`
	Libro           primitive.ObjectID `bson:"libro" json:"libro"`
	FechaPrestamo   time.Time          `bson:"fechaPrestamo" json:"fechaPrestamo"`
	FechaDevolucion time.Time          `bson:"fechaDevolucion" json:"fechaDevolucion"`
	Estado          string             `bson:"estado" json:"estado"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PrestamoConRefs is a Prestamo with user and book references resolved ($lookup).
type PrestamoConRefs struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	Usuario         *UsuarioRef        `bson:"usuario,omitempty" json:"usuario,omitempty"`
	Libro           *LibroRef          `bson:"libro,omitempty" json:"libro,omitempty"`
	FechaPrestamo   time.Time          `bson:"fechaPrestamo" json:"fechaPrestamo"`
	FechaDevolucion time.Time          `bson:"fechaDevolucion" json:"fechaDevolucion"`
	Estado          string             `bson:"estado" json:"estado"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PrestamoVencido is an overdue-report row: an active loan past its due date.
type PrestamoVencido struct {
	PrestamoConRefs `bson:",inline"`
	DiasRetraso     int `bson:"diasRetraso" json:"diasRetraso"`
}
