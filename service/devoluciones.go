package service

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DevolucionStore is the slice of the store the returns service needs.
type DevolucionStore interface {
	PrestamoByID(ctx context.Context, id primitive.ObjectID) (*models.Prestamo, error)
	DevolucionByID(ctx context.Context, id primitive.ObjectID) (*models.Devolucion, error)
	InsertDevolucion(ctx context.Context, devolucion *models.Devolucion) (primitive.ObjectID, error)
	UpdateDevolucion(ctx context.Context, id primitive.ObjectID, devolucion *models.Devolucion) error
	DeleteDevolucion(ctx context.Context, id primitive.ObjectID) error
	DevolucionForPrestamoExists(ctx context.Context, prestamo primitive.ObjectID) (bool, error)
}

// Devoluciones registers returns against active loans. Creating a return
// moves its loan to devuelto through the loan state machine, and deleting
// one reactivates the loan the same way, so the book count only ever moves
// through the inventory ledger.
type Devoluciones struct {
	store       DevolucionStore
	prestamos   *Prestamos
	clock       Clock
	multaPorDia float64
}

func NewDevoluciones(store DevolucionStore, prestamos *Prestamos, multaPorDia float64) *Devoluciones {
	if multaPorDia <= 0 {
		multaPorDia = 1
	}
	return &Devoluciones{
		store:       store,
		prestamos:   prestamos,
		clock:       realClock{},
		multaPorDia: multaPorDia,
	}
}

// CalcularMulta decides on_time vs late and the fine for a return happening
// at ahora against the given due date: ceil(days late) × multaPorDia.
func CalcularMulta(ahora, vencimiento time.Time, multaPorDia float64) (estado string, multa float64) {
	if !ahora.After(vencimiento) {
		return models.DevolucionATiempo, 0
	}
	diasRetraso := math.Ceil(ahora.Sub(vencimiento).Hours() / 24)
	return models.DevolucionRetrasada, diasRetraso * multaPorDia
}

type CrearDevolucionInput struct {
	Prestamo       primitive.ObjectID
	CondicionLibro string
	Observaciones  string
}

// Crear registers the return of an active loan.
func (s *Devoluciones) Crear(ctx context.Context, in CrearDevolucionInput) (*models.Devolucion, error) {
	prestamo, err := s.store.PrestamoByID(ctx, in.Prestamo)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, NewNotFound("Préstamo no encontrado")
	}
	if prestamo.Estado != models.EstadoActivo {
		return nil, NewValidation("El préstamo ya ha sido devuelto o está vencido")
	}
	existe, err := s.store.DevolucionForPrestamoExists(ctx, in.Prestamo)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, NewValidation("Ya existe una devolución para este préstamo")
	}

	ahora := s.clock.Now()
	estado, multa := CalcularMulta(ahora, prestamo.FechaDevolucion, s.multaPorDia)

	condicion := in.CondicionLibro
	if condicion == "" {
		condicion = models.CondicionPorDefecto
	}
	devolucion := &models.Devolucion{
		Prestamo:                prestamo.ID,
		Usuario:                 prestamo.Usuario,
		Libro:                   prestamo.Libro,
		FechaDevolucionReal:     ahora,
		FechaDevolucionEsperada: prestamo.FechaDevolucion,
		Estado:                  estado,
		CondicionLibro:          condicion,
		Observaciones:           in.Observaciones,
		Multa:                   multa,
	}
	if err := devolucion.Validar(ahora); err != nil {
		return nil, NewValidation(err.Error())
	}

	id, err := s.store.InsertDevolucion(ctx, devolucion)
	if err != nil {
		return nil, err
	}
	devolucion.ID = id

	// Close the loan through the state machine; the ledger release happens
	// in there, never here.
	if _, err := s.prestamos.Actualizar(ctx, prestamo.ID, ActualizarPrestamoInput{Estado: models.EstadoDevuelto}); err != nil {
		if delErr := s.store.DeleteDevolucion(ctx, id); delErr != nil {
			log.Printf("devoluciones: rollback delete %s: %v", id.Hex(), delErr)
		}
		return nil, err
	}
	return devolucion, nil
}

type ActualizarDevolucionInput struct {
	CondicionLibro *string
	Observaciones  *string
	Multa          *float64
}

// Actualizar edits the descriptive fields of a return. Loan state and the
// inventory ledger are out of reach from here.
func (s *Devoluciones) Actualizar(ctx context.Context, id primitive.ObjectID, in ActualizarDevolucionInput) (*models.Devolucion, error) {
	devolucion, err := s.store.DevolucionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if devolucion == nil {
		return nil, NewNotFound("Devolución no encontrada")
	}
	if in.CondicionLibro != nil {
		devolucion.CondicionLibro = *in.CondicionLibro
	}
	if in.Observaciones != nil {
		devolucion.Observaciones = *in.Observaciones
	}
	if in.Multa != nil {
		devolucion.Multa = *in.Multa
	}
	if err := devolucion.Validar(s.clock.Now()); err != nil {
		return nil, NewValidation(err.Error())
	}
	if err := s.store.UpdateDevolucion(ctx, id, devolucion); err != nil {
		return nil, err
	}
	return devolucion, nil
}

// Eliminar removes a return and reactivates its loan, which reserves a copy
// through the ledger and can therefore fail OutOfStock or
// DuplicateActiveLoan. A loan that no longer exists is tolerated.
func (s *Devoluciones) Eliminar(ctx context.Context, id primitive.ObjectID) error {
	devolucion, err := s.store.DevolucionByID(ctx, id)
	if err != nil {
		return err
	}
	if devolucion == nil {
		return NewNotFound("Devolución no encontrada")
	}
	prestamo, err := s.store.PrestamoByID(ctx, devolucion.Prestamo)
	if err != nil {
		return err
	}
	// Only a loan that is really gone is skipped; a reactivation failure
	// (out of stock, duplicate, missing book) keeps the return in place.
	if prestamo != nil {
		if _, err := s.prestamos.Actualizar(ctx, devolucion.Prestamo, ActualizarPrestamoInput{Estado: models.EstadoActivo}); err != nil {
			return err
		}
	}
	return s.store.DeleteDevolucion(ctx, id)
}
