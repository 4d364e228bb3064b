package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados de la devolución.
const (
	DevolucionATiempo   = "a_tiempo"
	DevolucionRetrasada = "retrasado"
	DevolucionDanada    = "dañado"
)

var EstadosDevolucionValidos = []string{DevolucionATiempo, DevolucionRetrasada, DevolucionDanada}

var CondicionesLibroValidas = []string{"excelente", "bueno", "regular", "dañado"}

const CondicionPorDefecto = "bueno"

type Devolucion struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Prestamo                primitive.ObjectID `bson:"prestamo" json:"prestamo"`
	Usuario                 primitive.ObjectID `bson:"usuario" json:"usuario"`
	Libro                   primitive.ObjectID `bson:"libro" json:"libro"`
	FechaDevolucionReal     time.Time          `bson:"fechaDevolucionReal" json:"fechaDevolucionReal"`
	FechaDevolucionEsperada time.Time          `bson:"fechaDevolucionEsperada" json:"fechaDevolucionEsperada"`
	Estado                  string             `bson:"estado" json:"estado"`
	CondicionLibro          string             `bson:"condicionLibro" json:"condicionLibro"`
	Observaciones           string             `bson:"observaciones,omitempty" json:"observaciones,omitempty"`
	Multa                   float64            `bson:"multa" json:"multa"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DevolucionConRefs is a Devolucion with user and book references resolved ($lookup).
type DevolucionConRefs struct {
	ID                      primitive.ObjectID `bson:"_id" json:"_id"`
	Prestamo                primitive.ObjectID `bson:"prestamo" json:"prestamo"`
	Usuario                 *UsuarioRef        `bson:"usuario,omitempty" json:"usuario,omitempty"`
	Libro                   *LibroRef          `bson:"libro,omitempty" json:"libro,omitempty"`
	FechaDevolucionReal     time.Time          `bson:"fechaDevolucionReal" json:"fechaDevolucionReal"`
	FechaDevolucionEsperada time.Time          `bson:"fechaDevolucionEsperada" json:"fechaDevolucionEsperada"`
	Estado                  string             `bson:"estado" json:"estado"`
	CondicionLibro          string             `bson:"condicionLibro" json:"condicionLibro"`
	Observaciones           string             `bson:"observaciones,omitempty" json:"observaciones,omitempty"`
	Multa                   float64            `bson:"multa" json:"multa"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EstadisticasDevoluciones is the result of the general returns aggregation.
type EstadisticasDevoluciones struct {
	TotalDevoluciones      int64   `bson:"totalDevoluciones" json:"totalDevoluciones"`
	DevolucionesATiempo    int64   `bson:"devolucionesATiempo" json:"devolucionesATiempo"`
	DevolucionesRetrasadas int64   `bson:"devolucionesRetrasadas" json:"devolucionesRetrasadas"`
	TotalMultas            float64 `bson:"totalMultas" json:"totalMultas"`
	PromedioMultas         float64 `bson:"promedioMultas" json:"promedioMultas"`
}
