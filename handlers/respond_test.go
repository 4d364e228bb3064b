package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/biblioteca/backend/service"
	"github.com/biblioteca/backend/store"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "not found es 404",
			err:        service.NewNotFound("Libro no encontrado"),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "validacion es 400",
			err:        service.NewValidation("el título es obligatorio"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "sin existencias es 400",
			err:        service.NewOutOfStock("Libro no disponible para préstamo"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "prestamo duplicado es 400",
			err:        service.NewDuplicateActiveLoan("Este libro ya está prestado actualmente"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unicidad es 400",
			err:        service.NewUniqueConstraint("Ya existe un libro con este ISBN"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "error inesperado es 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.err.Error(), body["message"])
		})
	}
}

func TestPageOpts(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{name: "valores por defecto", query: "/", wantPage: 1, wantLimit: 10},
		{name: "explicitos", query: "/?page=3&limit=25", wantPage: 3, wantLimit: 25},
		{name: "negativos se normalizan", query: "/?page=-1&limit=0", wantPage: 1, wantLimit: 10},
		{name: "no numericos se normalizan", query: "/?page=abc&limit=xyz", wantPage: 1, wantLimit: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.query, nil)
			p := pageOpts(r, nil)
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
		})
	}
}

func TestSortParam(t *testing.T) {
	fallback := bson.D{{Key: "createdAt", Value: -1}}

	tests := []struct {
		name  string
		query string
		want  bson.D
	}{
		{name: "sin parametro usa el orden por defecto", query: "/", want: fallback},
		{name: "campo permitido ordena ascendente", query: "/?sort=titulo", want: bson.D{{Key: "titulo", Value: 1}}},
		{name: "otro campo permitido", query: "/?sort=genero", want: bson.D{{Key: "genero", Value: 1}}},
		{name: "campo desconocido usa el orden por defecto", query: "/?sort=existencias", want: fallback},
		{name: "campo vacio usa el orden por defecto", query: "/?sort=", want: fallback},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tc.query, nil)
			assert.Equal(t, tc.want, sortParam(r, fallback, "titulo", "genero"))
		})
	}
}

func TestListResponse(t *testing.T) {
	p := store.PageOpts{Page: 2, Limit: 10}
	docs := []string{"a", "b"}

	resp := listResponse("libros", docs, 23, p)

	assert.Equal(t, docs, resp["libros"])
	assert.Equal(t, int64(23), resp["total"])
	assert.Equal(t, 2, resp["pagina"])
	assert.Equal(t, int64(3), resp["paginas"])
	assert.Equal(t, 10, resp["limite"])
}
