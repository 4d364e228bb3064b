package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biblioteca/backend/models"
)

func newDevolucionesForTest(store *fakeStore, en time.Time, multaPorDia float64) *Devoluciones {
	prestamos := NewPrestamos(store)
	prestamos.clock = fixedClock{t: en}
	s := NewDevoluciones(store, prestamos, multaPorDia)
	s.clock = fixedClock{t: en}
	return s
}

func TestCalcularMulta(t *testing.T) {
	vencimiento := time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		devuelto   time.Time
		wantEstado string
		wantMulta  float64
	}{
		{
			name:       "antes del vencimiento",
			devuelto:   time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC),
			wantEstado: models.DevolucionATiempo,
			wantMulta:  0,
		},
		{
			name:       "el mismo dia del vencimiento",
			devuelto:   vencimiento,
			wantEstado: models.DevolucionATiempo,
			wantMulta:  0,
		},
		{
			name:       "cinco dias tarde",
			devuelto:   time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC),
			wantEstado: models.DevolucionRetrasada,
			wantMulta:  5,
		},
		{
			name:       "una hora tarde cuenta como un dia",
			devuelto:   vencimiento.Add(time.Hour),
			wantEstado: models.DevolucionRetrasada,
			wantMulta:  1,
		},
		{
			name:       "un dia y una hora redondea a dos dias",
			devuelto:   vencimiento.Add(25 * time.Hour),
			wantEstado: models.DevolucionRetrasada,
			wantMulta:  2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			estado, multa := CalcularMulta(tc.devuelto, vencimiento, 1)
			assert.Equal(t, tc.wantEstado, estado)
			assert.Equal(t, tc.wantMulta, multa)
		})
	}

	t.Run("la multa escala con la tarifa diaria", func(t *testing.T) {
		_, multa := CalcularMulta(vencimiento.AddDate(0, 0, 3), vencimiento, 2.5)
		assert.Equal(t, 7.5, multa)
	})
}

func TestDevolucionesCrear(t *testing.T) {
	vencimiento := time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)

	t.Run("devolucion tardia cierra el prestamo con multa", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(0) // la copia esta fuera
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoActivo, vencimiento)
		s := newDevolucionesForTest(store, time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC), 1)

		devolucion, err := s.Crear(context.Background(), CrearDevolucionInput{Prestamo: prestamo})
		require.NoError(t, err)
		assert.Equal(t, models.DevolucionRetrasada, devolucion.Estado)
		assert.Equal(t, 5.0, devolucion.Multa)
		assert.Equal(t, models.CondicionPorDefecto, devolucion.CondicionLibro)
		assert.Equal(t, models.EstadoDevuelto, store.prestamos[prestamo].Estado)
		assert.Equal(t, 1, store.libros[libro].Existencias)
	})

	t.Run("devolucion a tiempo sin multa", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(0)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoActivo, vencimiento)
		s := newDevolucionesForTest(store, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC), 1)

		devolucion, err := s.Crear(context.Background(), CrearDevolucionInput{
			Prestamo:       prestamo,
			CondicionLibro: "excelente",
			Observaciones:  "sin novedades",
		})
		require.NoError(t, err)
		assert.Equal(t, models.DevolucionATiempo, devolucion.Estado)
		assert.Zero(t, devolucion.Multa)
		assert.Equal(t, "excelente", devolucion.CondicionLibro)
		assert.Equal(t, 1, store.libros[libro].Existencias)
	})

	t.Run("rechaza prestamo ya devuelto", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(1)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, vencimiento)
		s := newDevolucionesForTest(store, vencimiento, 1)

		_, err := s.Crear(context.Background(), CrearDevolucionInput{Prestamo: prestamo})
		assert.Equal(t, CodeValidation, ErrCode(err))
	})

	t.Run("rechaza segunda devolucion del mismo prestamo", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(0)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoActivo, vencimiento)
		store.devoluciones[primitive.NewObjectID()] = &models.Devolucion{
			Prestamo: prestamo,
			Usuario:  usuario,
			Libro:    libro,
			Estado:   models.DevolucionATiempo,
		}
		s := newDevolucionesForTest(store, vencimiento, 1)

		_, err := s.Crear(context.Background(), CrearDevolucionInput{Prestamo: prestamo})
		assert.Equal(t, CodeValidation, ErrCode(err))
		assert.Equal(t, models.EstadoActivo, store.prestamos[prestamo].Estado)
	})

	t.Run("rechaza prestamo inexistente", func(t *testing.T) {
		store := newFakeStore()
		s := newDevolucionesForTest(store, vencimiento, 1)

		_, err := s.Crear(context.Background(), CrearDevolucionInput{Prestamo: primitive.NewObjectID()})
		assert.Equal(t, CodeNotFound, ErrCode(err))
	})

	t.Run("rechaza condicion de libro desconocida", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(0)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoActivo, vencimiento)
		s := newDevolucionesForTest(store, vencimiento, 1)

		_, err := s.Crear(context.Background(), CrearDevolucionInput{
			Prestamo:       prestamo,
			CondicionLibro: "quemado",
		})
		assert.Equal(t, CodeValidation, ErrCode(err))
	})
}

func TestDevolucionesActualizar(t *testing.T) {
	t.Run("edita condicion y multa sin tocar el prestamo", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(1)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, ahora)
		id := primitive.NewObjectID()
		store.devoluciones[id] = &models.Devolucion{
			ID:             id,
			Prestamo:       prestamo,
			Usuario:        usuario,
			Libro:          libro,
			Estado:         models.DevolucionATiempo,
			CondicionLibro: "bueno",
		}
		s := newDevolucionesForTest(store, ahora, 1)

		condicion := "regular"
		multa := 10.0
		devolucion, err := s.Actualizar(context.Background(), id, ActualizarDevolucionInput{
			CondicionLibro: &condicion,
			Multa:          &multa,
		})
		require.NoError(t, err)
		assert.Equal(t, "regular", devolucion.CondicionLibro)
		assert.Equal(t, 10.0, devolucion.Multa)
		assert.Equal(t, models.EstadoDevuelto, store.prestamos[prestamo].Estado)
		assert.Equal(t, 1, store.libros[libro].Existencias)
	})

	t.Run("rechaza multa negativa", func(t *testing.T) {
		store := newFakeStore()
		id := primitive.NewObjectID()
		store.devoluciones[id] = &models.Devolucion{
			ID:       id,
			Prestamo: primitive.NewObjectID(),
			Estado:   models.DevolucionATiempo,
		}
		s := newDevolucionesForTest(store, ahora, 1)

		multa := -1.0
		_, err := s.Actualizar(context.Background(), id, ActualizarDevolucionInput{Multa: &multa})
		assert.Equal(t, CodeValidation, ErrCode(err))
	})

	t.Run("devolucion inexistente", func(t *testing.T) {
		store := newFakeStore()
		s := newDevolucionesForTest(store, ahora, 1)

		_, err := s.Actualizar(context.Background(), primitive.NewObjectID(), ActualizarDevolucionInput{})
		assert.Equal(t, CodeNotFound, ErrCode(err))
	})
}

func TestDevolucionesEliminar(t *testing.T) {
	vencimiento := time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)

	seedDevolucion := func(store *fakeStore, prestamo, usuario, libro primitive.ObjectID) primitive.ObjectID {
		id := primitive.NewObjectID()
		store.devoluciones[id] = &models.Devolucion{
			ID:       id,
			Prestamo: prestamo,
			Usuario:  usuario,
			Libro:    libro,
			Estado:   models.DevolucionATiempo,
		}
		return id
	}

	t.Run("reactiva el prestamo y reserva la copia", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(1)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, vencimiento)
		devolucion := seedDevolucion(store, prestamo, usuario, libro)
		s := newDevolucionesForTest(store, ahora, 1)

		require.NoError(t, s.Eliminar(context.Background(), devolucion))
		assert.Equal(t, models.EstadoActivo, store.prestamos[prestamo].Estado)
		assert.Equal(t, 0, store.libros[libro].Existencias)
		assert.NotContains(t, store.devoluciones, devolucion)
	})

	t.Run("falla sin existencias para reactivar", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(0)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, vencimiento)
		devolucion := seedDevolucion(store, prestamo, usuario, libro)
		s := newDevolucionesForTest(store, ahora, 1)

		err := s.Eliminar(context.Background(), devolucion)
		assert.Equal(t, CodeOutOfStock, ErrCode(err))
		assert.Contains(t, store.devoluciones, devolucion)
		assert.Equal(t, models.EstadoDevuelto, store.prestamos[prestamo].Estado)
	})

	t.Run("falla si el libro tiene otro prestamo activo", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(2)
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, vencimiento)
		store.seedPrestamo(usuario, libro, models.EstadoActivo, vencimiento)
		devolucion := seedDevolucion(store, prestamo, usuario, libro)
		s := newDevolucionesForTest(store, ahora, 1)

		err := s.Eliminar(context.Background(), devolucion)
		assert.Equal(t, CodeDuplicateActiveLoan, ErrCode(err))
		assert.Contains(t, store.devoluciones, devolucion)
	})

	t.Run("falla si el libro del prestamo ya no existe", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := primitive.NewObjectID()
		prestamo := store.seedPrestamo(usuario, libro, models.EstadoDevuelto, vencimiento)
		devolucion := seedDevolucion(store, prestamo, usuario, libro)
		s := newDevolucionesForTest(store, ahora, 1)

		err := s.Eliminar(context.Background(), devolucion)
		assert.Equal(t, CodeNotFound, ErrCode(err))
		assert.Contains(t, store.devoluciones, devolucion)
		assert.Equal(t, models.EstadoDevuelto, store.prestamos[prestamo].Estado)
	})

	t.Run("tolera prestamo ya eliminado", func(t *testing.T) {
		store := newFakeStore()
		usuario := store.seedUsuario()
		libro := store.seedLibro(1)
		devolucion := seedDevolucion(store, primitive.NewObjectID(), usuario, libro)
		s := newDevolucionesForTest(store, ahora, 1)

		require.NoError(t, s.Eliminar(context.Background(), devolucion))
		assert.NotContains(t, store.devoluciones, devolucion)
	})

	t.Run("devolucion inexistente", func(t *testing.T) {
		store := newFakeStore()
		s := newDevolucionesForTest(store, ahora, 1)

		err := s.Eliminar(context.Background(), primitive.NewObjectID())
		assert.Equal(t, CodeNotFound, ErrCode(err))
	})
}
