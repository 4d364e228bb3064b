package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "secreto-de-pruebas"

func firmarToken(t *testing.T, secret, rol string, expira time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID: primitive.NewObjectID().Hex(),
		Correo: "ana@example.com",
		Rol:    rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expira),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserIDFromContext(r.Context())
		assert.True(t, ok)
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(siguiente)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			name:       "token valido",
			header:     "Bearer " + firmarToken(t, testSecret, "user", time.Now().Add(time.Hour)),
			wantStatus: http.StatusOK,
		},
		{
			name:       "sin encabezado",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "sin esquema Bearer",
			header:     firmarToken(t, testSecret, "user", time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "firmado con otro secreto",
			header:     "Bearer " + firmarToken(t, "otro-secreto", "user", time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token expirado",
			header:     "Bearer " + firmarToken(t, testSecret, "user", time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/libros", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Auth(testSecret)(RequireAdmin(siguiente))

	t.Run("admin pasa", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/api/usuarios/x", nil)
		r.Header.Set("Authorization", "Bearer "+firmarToken(t, testSecret, "admin", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("user es rechazado", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodDelete, "/api/usuarios/x", nil)
		r.Header.Set("Authorization", "Bearer "+firmarToken(t, testSecret, "user", time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
