package service

import (
	"context"

	"github.com/biblioteca/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryStore is the slice of the store the ledger needs.
type InventoryStore interface {
	ReserveCopy(ctx context.Context, id primitive.ObjectID) (bool, error)
	ReleaseCopy(ctx context.Context, id primitive.ObjectID) (bool, error)
	LibroByID(ctx context.Context, id primitive.ObjectID) (*models.Libro, error)
}

// Ledger owns the available-copy count of every book. Every existencias
// mutation in the system goes through Reserve or Release; nothing else
// writes that field outside the administrative book update.
type Ledger struct {
	store InventoryStore
}

func NewLedger(store InventoryStore) *Ledger {
	return &Ledger{store: store}
}

// Reserve takes one copy off the shelf. The decrement is conditional on
// existencias > 0, so the count can never go negative regardless of
// concurrent requests.
func (l *Ledger) Reserve(ctx context.Context, libroID primitive.ObjectID) error {
	ok, err := l.store.ReserveCopy(ctx, libroID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// No match: either the book is gone or it has no copies left.
	libro, err := l.store.LibroByID(ctx, libroID)
	if err != nil {
		return err
	}
	if libro == nil {
		return NewNotFound("Libro no encontrado")
	}
	return NewOutOfStock("No hay existencias disponibles")
}

// Release puts one copy back on the shelf.
func (l *Ledger) Release(ctx context.Context, libroID primitive.ObjectID) error {
	ok, err := l.store.ReleaseCopy(ctx, libroID)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFound("Libro no encontrado")
	}
	return nil
}
