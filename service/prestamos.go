package service

import (
	"context"
	"log"
	"time"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrestamoStore is the slice of the store the loan state machine needs.
type PrestamoStore interface {
	InventoryStore
	UsuarioByID(ctx context.Context, id primitive.ObjectID) (*models.Usuario, error)
	PrestamoByID(ctx context.Context, id primitive.ObjectID) (*models.Prestamo, error)
	InsertPrestamo(ctx context.Context, prestamo *models.Prestamo) (primitive.ObjectID, error)
	SetPrestamoEstado(ctx context.Context, id primitive.ObjectID, estado string, fechaDevolucion *time.Time) error
	DeletePrestamo(ctx context.Context, id primitive.ObjectID) error
	ActiveLoanExists(ctx context.Context, libro, exclude primitive.ObjectID) (bool, error)
}

// Prestamos drives a loan through activo → devuelto | vencido, adjusting
// the inventory ledger on every transition.
type Prestamos struct {
	store  PrestamoStore
	ledger *Ledger
	clock  Clock
}

func NewPrestamos(store PrestamoStore) *Prestamos {
	return &Prestamos{
		store:  store,
		ledger: NewLedger(store),
		clock:  realClock{},
	}
}

type CrearPrestamoInput struct {
	Usuario         primitive.ObjectID
	Libro           primitive.ObjectID
	FechaPrestamo   *time.Time
	FechaDevolucion time.Time
}

// Crear registers a loan in estado activo, reserving one copy of the book.
func (s *Prestamos) Crear(ctx context.Context, in CrearPrestamoInput) (*models.Prestamo, error) {
	ahora := s.clock.Now()

	prestamo := &models.Prestamo{
		Usuario:         in.Usuario,
		Libro:           in.Libro,
		FechaPrestamo:   ahora,
		FechaDevolucion: in.FechaDevolucion,
		Estado:          models.EstadoActivo,
	}
	if in.FechaPrestamo != nil {
		prestamo.FechaPrestamo = *in.FechaPrestamo
	}
	if err := prestamo.Validar(ahora); err != nil {
		return nil, NewValidation(err.Error())
	}

	usuario, err := s.store.UsuarioByID(ctx, in.Usuario)
	if err != nil {
		return nil, err
	}
	if usuario == nil {
		return nil, NewNotFound("Usuario no encontrado")
	}
	libro, err := s.store.LibroByID(ctx, in.Libro)
	if err != nil {
		return nil, err
	}
	if libro == nil {
		return nil, NewNotFound("Libro no encontrado")
	}

	activo, err := s.store.ActiveLoanExists(ctx, in.Libro, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	if activo {
		return nil, NewDuplicateActiveLoan("Este libro ya está prestado actualmente")
	}

	if err := s.ledger.Reserve(ctx, in.Libro); err != nil {
		if IsCode(err, CodeOutOfStock) {
			return nil, NewOutOfStock("Libro no disponible para préstamo")
		}
		return nil, err
	}

	id, err := s.store.InsertPrestamo(ctx, prestamo)
	if err != nil {
		// Put the copy back so the reservation does not leak.
		if rbErr := s.ledger.Release(ctx, in.Libro); rbErr != nil {
			log.Printf("prestamos: rollback release for libro %s: %v", in.Libro.Hex(), rbErr)
		}
		return nil, err
	}
	prestamo.ID = id
	return prestamo, nil
}

type ActualizarPrestamoInput struct {
	Estado          string
	FechaDevolucion *time.Time
}

// Actualizar applies a state transition. The ledger effect is derived from
// the (old, new) pair:
//
//	-> activo            reserve, can fail OutOfStock
//	activo   -> devuelto release
//	vencido  -> devuelto release
//	devuelto -> vencido  reserve, can fail OutOfStock
//	activo   -> vencido  none (the book is still out)
//	same     -> same     none
func (s *Prestamos) Actualizar(ctx context.Context, id primitive.ObjectID, in ActualizarPrestamoInput) (*models.Prestamo, error) {
	prestamo, err := s.store.PrestamoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, NewNotFound("Préstamo no encontrado")
	}

	anterior := prestamo.Estado
	nuevo := in.Estado
	if nuevo == "" {
		nuevo = anterior
	}
	if nuevo != models.EstadoActivo && nuevo != models.EstadoDevuelto && nuevo != models.EstadoVencido {
		return nil, NewValidation("estado inválido")
	}
	if in.FechaDevolucion != nil && !in.FechaDevolucion.After(prestamo.FechaPrestamo) {
		return nil, NewValidation("la fecha de devolución debe ser posterior a la fecha de préstamo")
	}

	// Reservations run before the persist so a copy is never promised
	// without stock; releases run after it so a failed persist can never
	// put a loaned copy back on the shelf.
	reservado := false
	liberar := false
	if anterior != nuevo {
		switch {
		case nuevo == models.EstadoActivo:
			activo, err := s.store.ActiveLoanExists(ctx, prestamo.Libro, prestamo.ID)
			if err != nil {
				return nil, err
			}
			if activo {
				return nil, NewDuplicateActiveLoan("Este libro ya está prestado actualmente")
			}
			if err := s.ledger.Reserve(ctx, prestamo.Libro); err != nil {
				if IsCode(err, CodeOutOfStock) {
					return nil, NewOutOfStock("No hay existencias disponibles para activar este préstamo")
				}
				return nil, err
			}
			reservado = true
		case nuevo == models.EstadoDevuelto:
			liberar = anterior == models.EstadoActivo || anterior == models.EstadoVencido
		case nuevo == models.EstadoVencido:
			if anterior == models.EstadoDevuelto {
				if err := s.ledger.Reserve(ctx, prestamo.Libro); err != nil {
					if IsCode(err, CodeOutOfStock) {
						return nil, NewOutOfStock("No hay existencias disponibles para marcar como vencido este préstamo")
					}
					return nil, err
				}
				reservado = true
			}
			// From activo the copy is already off the shelf.
		}
	}

	if err := s.store.SetPrestamoEstado(ctx, id, nuevo, in.FechaDevolucion); err != nil {
		// The ledger moved but the loan did not. Undo the reservation; a
		// failed undo is only logged, the count will be off by one until
		// corrected administratively.
		if reservado {
			if rbErr := s.ledger.Release(ctx, prestamo.Libro); rbErr != nil {
				log.Printf("prestamos: rollback release for libro %s: %v", prestamo.Libro.Hex(), rbErr)
			}
		}
		return nil, err
	}

	if liberar {
		// The loan is already devuelto; a failed release understates
		// availability instead of inventing it, so it is only logged.
		if err := s.ledger.Release(ctx, prestamo.Libro); err != nil {
			log.Printf("prestamos: release for libro %s: %v", prestamo.Libro.Hex(), err)
		}
	}

	prestamo.Estado = nuevo
	if in.FechaDevolucion != nil {
		prestamo.FechaDevolucion = *in.FechaDevolucion
	}
	return prestamo, nil
}

// Eliminar removes a loan. An activo loan puts its copy back on the shelf;
// devuelto and vencido loans leave the ledger untouched.
func (s *Prestamos) Eliminar(ctx context.Context, id primitive.ObjectID) error {
	prestamo, err := s.store.PrestamoByID(ctx, id)
	if err != nil {
		return err
	}
	if prestamo == nil {
		return NewNotFound("Préstamo no encontrado")
	}
	if prestamo.Estado == models.EstadoActivo {
		if err := s.ledger.Release(ctx, prestamo.Libro); err != nil && !IsCode(err, CodeNotFound) {
			return err
		}
	}
	return s.store.DeletePrestamo(ctx, id)
}
