package handlers

import (
	"net/http"
	"time"

	"github.com/biblioteca/backend/service"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrestamosHandler struct {
	DB      *store.DB
	Service *service.Prestamos
}

type crearPrestamoRequest struct {
	Usuario         string     `json:"usuario"`
	Libro           string     `json:"libro"`
	FechaPrestamo   *time.Time `json:"fechaPrestamo"`
	FechaDevolucion time.Time  `json:"fechaDevolucion"`
}

type actualizarPrestamoRequest struct {
	Estado          string     `json:"estado"`
	FechaDevolucion *time.Time `json:"fechaDevolucion"`
}

// List maneja GET /api/prestamos.
func (h *PrestamosHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.PrestamoFilter{Estado: q.Get("estado")}
	if v := q.Get("usuario"); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.Usuario = id
		}
	}
	if v := q.Get("libro"); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.Libro = id
		}
	}
	if v := q.Get("fechaDesde"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.FechaDesde = t
		} else if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FechaDesde = t
		}
	}
	if v := q.Get("fechaHasta"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.FechaHasta = t
		} else if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FechaHasta = t
		}
	}
	sort := sortParam(r, bson.D{{Key: "fechaPrestamo", Value: -1}}, "fechaPrestamo", "fechaDevolucion", "estado", "createdAt")
	p := pageOpts(r, sort)

	prestamos, total, err := h.DB.ListPrestamos(r.Context(), filter, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("prestamos", prestamos, total, p))
}

// Get maneja GET /api/prestamos/{id}.
func (h *PrestamosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	prestamo, err := h.DB.PrestamoConRefsByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if prestamo == nil {
		writeMessage(w, http.StatusNotFound, "Préstamo no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, prestamo)
}

// Create maneja POST /api/prestamos. Reserva un ejemplar vía el ledger.
func (h *PrestamosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req crearPrestamoRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	usuarioID, err := primitive.ObjectIDFromHex(req.Usuario)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID de usuario inválido")
		return
	}
	libroID, err := primitive.ObjectIDFromHex(req.Libro)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID de libro inválido")
		return
	}

	prestamo, err := h.Service.Crear(r.Context(), service.CrearPrestamoInput{
		Usuario:         usuarioID,
		Libro:           libroID,
		FechaPrestamo:   req.FechaPrestamo,
		FechaDevolucion: req.FechaDevolucion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	// Respond with references resolved, like the listings.
	if populated, err := h.DB.PrestamoConRefsByID(r.Context(), prestamo.ID); err == nil && populated != nil {
		writeJSON(w, http.StatusCreated, populated)
		return
	}
	writeJSON(w, http.StatusCreated, prestamo)
}

// Update maneja PUT /api/prestamos/{id}: transiciones de estado.
func (h *PrestamosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req actualizarPrestamoRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	prestamo, err := h.Service.Actualizar(r.Context(), id, service.ActualizarPrestamoInput{
		Estado:          req.Estado,
		FechaDevolucion: req.FechaDevolucion,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if populated, err := h.DB.PrestamoConRefsByID(r.Context(), prestamo.ID); err == nil && populated != nil {
		writeJSON(w, http.StatusOK, populated)
		return
	}
	writeJSON(w, http.StatusOK, prestamo)
}

// Delete maneja DELETE /api/prestamos/{id}.
func (h *PrestamosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	if err := h.Service.Eliminar(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Préstamo eliminado")
}
