package handlers

import (
	"net/http"
	"strconv"

	"github.com/biblioteca/backend/models"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LibrosHandler struct {
	DB *store.DB
}

type libroRequest struct {
	Titulo          string  `json:"titulo"`
	ISBN            string  `json:"isbn"`
	Genero          *string `json:"genero"`
	AnioPublicacion int     `json:"anioPublicacion"`
	Autor           string  `json:"autor"`
	ImagenURL       *string `json:"imagenUrl"`
	Existencias     *int    `json:"existencias"`
	IdiomaOriginal  string  `json:"idiomaOriginal"`
}

// List maneja GET /api/libros.
func (h *LibrosHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.LibroFilter{
		Titulo: q.Get("titulo"),
		Genero: q.Get("genero"),
	}
	if v := q.Get("autor"); v != "" {
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			filter.Autor = id
		}
	}
	if v := q.Get("anioPublicacion"); v != "" {
		filter.AnioPublicacion, _ = strconv.Atoi(v)
	}
	switch q.Get("disponible") {
	case "true":
		t := true
		filter.Disponible = &t
	case "false":
		f := false
		filter.Disponible = &f
	}
	sort := sortParam(r, bson.D{{Key: "titulo", Value: 1}}, "titulo", "genero", "anioPublicacion", "existencias", "createdAt")
	p := pageOpts(r, sort)

	libros, total, err := h.DB.ListLibros(r.Context(), filter, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("libros", libros, total, p))
}

// Get maneja GET /api/libros/{id}.
func (h *LibrosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	libro, err := h.DB.LibroConAutorByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if libro == nil {
		writeMessage(w, http.StatusNotFound, "Libro no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, libro)
}

// Disponibles maneja GET /api/libros/disponibles.
func (h *LibrosHandler) Disponibles(w http.ResponseWriter, r *http.Request) {
	libros, err := h.DB.LibrosDisponibles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, libros)
}

// Create maneja POST /api/libros.
func (h *LibrosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req libroRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	autorID, err := primitive.ObjectIDFromHex(req.Autor)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID de autor inválido")
		return
	}
	autor, err := h.DB.AutorByID(r.Context(), autorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if autor == nil {
		writeMessage(w, http.StatusNotFound, "Autor no encontrado")
		return
	}

	libro := &models.Libro{
		Titulo:          req.Titulo,
		ISBN:            req.ISBN,
		AnioPublicacion: req.AnioPublicacion,
		Autor:           autorID,
		Existencias:     1,
		IdiomaOriginal:  req.IdiomaOriginal,
	}
	if req.Genero != nil {
		libro.Genero = *req.Genero
	}
	if req.ImagenURL != nil {
		libro.ImagenURL = *req.ImagenURL
	}
	if req.Existencias != nil {
		libro.Existencias = *req.Existencias
	}
	if libro.IdiomaOriginal == "" {
		libro.IdiomaOriginal = models.IdiomaPorDefecto
	}
	if err := libro.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.DB.InsertLibro(r.Context(), libro)
	if err != nil {
		if store.IsDuplicateKey(err) {
			writeMessage(w, http.StatusBadRequest, "Ya existe un libro con este ISBN")
			return
		}
		writeError(w, err)
		return
	}
	libro.ID = id
	writeJSON(w, http.StatusCreated, libro)
}

// Update maneja PUT /api/libros/{id}. Editing existencias here is the
// administrative path around the inventory ledger.
func (h *LibrosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	libro, err := h.DB.LibroByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if libro == nil {
		writeMessage(w, http.StatusNotFound, "Libro no encontrado")
		return
	}
	var req libroRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Autor != "" {
		autorID, err := primitive.ObjectIDFromHex(req.Autor)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "ID de autor inválido")
			return
		}
		autor, err := h.DB.AutorByID(r.Context(), autorID)
		if err != nil {
			writeError(w, err)
			return
		}
		if autor == nil {
			writeMessage(w, http.StatusNotFound, "Autor no encontrado")
			return
		}
		libro.Autor = autorID
	}
	if req.Titulo != "" {
		libro.Titulo = req.Titulo
	}
	if req.ISBN != "" {
		libro.ISBN = req.ISBN
	}
	if req.Genero != nil {
		libro.Genero = *req.Genero
	}
	if req.AnioPublicacion != 0 {
		libro.AnioPublicacion = req.AnioPublicacion
	}
	if req.ImagenURL != nil {
		libro.ImagenURL = *req.ImagenURL
	}
	if req.Existencias != nil {
		libro.Existencias = *req.Existencias
	}
	if req.IdiomaOriginal != "" {
		libro.IdiomaOriginal = req.IdiomaOriginal
	}
	if err := libro.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.DB.UpdateLibro(r.Context(), id, libro); err != nil {
		if store.IsDuplicateKey(err) {
			writeMessage(w, http.StatusBadRequest, "Ya existe un libro con este ISBN")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, libro)
}

// Delete maneja DELETE /api/libros/{id}. A book with activo or vencido
// loans cannot be removed.
func (h *LibrosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	libro, err := h.DB.LibroByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if libro == nil {
		writeMessage(w, http.StatusNotFound, "Libro no encontrado")
		return
	}
	bloqueado, err := h.DB.LoansBlockingDelete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if bloqueado {
		writeMessage(w, http.StatusBadRequest, "No se puede eliminar el libro porque tiene préstamos activos")
		return
	}
	if err := h.DB.DeleteLibro(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Libro eliminado exitosamente")
}
