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

type DevolucionesHandler struct {
	DB      *store.DB
	Service *service.Devoluciones
}

type crearDevolucionRequest struct {
	Prestamo       string `json:"prestamo"`
	CondicionLibro string `json:"condicionLibro"`
	Observaciones  string `json:"observaciones"`
}

type actualizarDevolucionRequest struct {
	CondicionLibro *string  `json:"condicionLibro"`
	Observaciones  *string  `json:"observaciones"`
	Multa          *float64 `json:"multa"`
}

// List maneja GET /api/devoluciones.
func (h *DevolucionesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.DevolucionFilter{Estado: q.Get("estado")}
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
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FechaDesde = t
		}
	}
	if v := q.Get("fechaHasta"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.FechaHasta = t
		}
	}
	p := pageOpts(r, bson.D{{Key: "createdAt", Value: -1}})

	devoluciones, total, err := h.DB.ListDevoluciones(r.Context(), filter, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("devoluciones", devoluciones, total, p))
}

// Get maneja GET /api/devoluciones/{id}.
func (h *DevolucionesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	devolucion, err := h.DB.DevolucionConRefsByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if devolucion == nil {
		writeMessage(w, http.StatusNotFound, "Devolución no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, devolucion)
}

// Create maneja POST /api/devoluciones. Cierra el préstamo vía la máquina
// de estados.
func (h *DevolucionesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req crearDevolucionRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	prestamoID, err := primitive.ObjectIDFromHex(req.Prestamo)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID de préstamo inválido")
		return
	}
	devolucion, err := h.Service.Crear(r.Context(), service.CrearDevolucionInput{
		Prestamo:       prestamoID,
		CondicionLibro: req.CondicionLibro,
		Observaciones:  req.Observaciones,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Devolución creada exitosamente",
		"data":    devolucion,
	})
}

// Update maneja PUT /api/devoluciones/{id}.
func (h *DevolucionesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	var req actualizarDevolucionRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	devolucion, err := h.Service.Actualizar(r.Context(), id, service.ActualizarDevolucionInput{
		CondicionLibro: req.CondicionLibro,
		Observaciones:  req.Observaciones,
		Multa:          req.Multa,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Devolución actualizada exitosamente",
		"data":    devolucion,
	})
}

// Delete maneja DELETE /api/devoluciones/{id}. Reactiva el préstamo, lo
// que vuelve a reservar un ejemplar y puede fallar sin existencias.
func (h *DevolucionesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	if err := h.Service.Eliminar(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Devolución eliminada correctamente",
	})
}

// Estadisticas maneja GET /api/devoluciones/estadisticas/general.
func (h *DevolucionesHandler) Estadisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := h.DB.EstadisticasDevoluciones(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    stats,
	})
}
