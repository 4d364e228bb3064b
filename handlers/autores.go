package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/biblioteca/backend/models"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AutoresHandler struct {
	DB *store.DB
}

type autorRequest struct {
	Nombre          string     `json:"nombre"`
	Nacionalidad    string     `json:"nacionalidad"`
	FechaNacimiento *time.Time `json:"fechaNacimiento"`
	SitioWeb        *string    `json:"sitioWeb"`
	Biografia       *string    `json:"biografia"`
	ImagenURL       *string    `json:"imagenUrl"`
}

// List maneja GET /api/autores.
func (h *AutoresHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AutorFilter{
		Nombre:       q.Get("nombre"),
		Nacionalidad: q.Get("nacionalidad"),
	}
	if v := q.Get("anioNacimiento"); v != "" {
		filter.AnioNacimiento, _ = strconv.Atoi(v)
	}
	sort := sortParam(r, bson.D{{Key: "nombre", Value: 1}}, "nombre", "nacionalidad", "anioNacimiento", "createdAt")
	p := pageOpts(r, sort)

	autores, total, err := h.DB.ListAutores(r.Context(), filter, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("autores", autores, total, p))
}

// Get maneja GET /api/autores/{id}.
func (h *AutoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	autor, err := h.DB.AutorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if autor == nil {
		writeMessage(w, http.StatusNotFound, "Autor no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, autor)
}

// Create maneja POST /api/autores.
func (h *AutoresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req autorRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	autor := &models.Autor{
		Nombre:          req.Nombre,
		Nacionalidad:    req.Nacionalidad,
		FechaNacimiento: req.FechaNacimiento,
	}
	if req.SitioWeb != nil {
		autor.SitioWeb = *req.SitioWeb
	}
	if req.Biografia != nil {
		autor.Biografia = *req.Biografia
	}
	if req.ImagenURL != nil {
		autor.ImagenURL = *req.ImagenURL
	}
	if err := autor.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.DB.InsertAutor(r.Context(), autor)
	if err != nil {
		writeError(w, err)
		return
	}
	autor.ID = id
	writeJSON(w, http.StatusCreated, autor)
}

// Update maneja PUT /api/autores/{id}.
func (h *AutoresHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	autor, err := h.DB.AutorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if autor == nil {
		writeMessage(w, http.StatusNotFound, "Autor no encontrado")
		return
	}
	var req autorRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Nombre != "" {
		autor.Nombre = req.Nombre
	}
	if req.Nacionalidad != "" {
		autor.Nacionalidad = req.Nacionalidad
	}
	if req.FechaNacimiento != nil {
		autor.FechaNacimiento = req.FechaNacimiento
	}
	if req.SitioWeb != nil {
		autor.SitioWeb = *req.SitioWeb
	}
	if req.Biografia != nil {
		autor.Biografia = *req.Biografia
	}
	if req.ImagenURL != nil {
		autor.ImagenURL = *req.ImagenURL
	}
	if err := autor.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.DB.UpdateAutor(r.Context(), id, autor); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, autor)
}

// Delete maneja DELETE /api/autores/{id}.
func (h *AutoresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	autor, err := h.DB.AutorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if autor == nil {
		writeMessage(w, http.StatusNotFound, "Autor no encontrado")
		return
	}
	if err := h.DB.DeleteAutor(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Autor eliminado")
}
