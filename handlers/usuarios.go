package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/biblioteca/backend/middleware"
	"github.com/biblioteca/backend/models"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UsuariosHandler struct {
	DB        *store.DB
	JWTSecret string
	// Default admin credentials (from config); used to seed the first
	// admin when none exists in the database yet.
	AdminEmail    string
	AdminPassword string
}

type usuarioRequest struct {
	Nombre               string  `json:"nombre"`
	Correo               string  `json:"correo"`
	Telefono             *string `json:"telefono"`
	Contrasena           string  `json:"contrasena"`
	Rol                  string  `json:"rol"`
	Apellido             *string `json:"apellido"`
	Direccion            *string `json:"direccion"`
	Genero               string  `json:"genero"`
	TipoIdentificacion   string  `json:"tipoIdentificacion"`
	NumeroIdentificacion *string `json:"numeroIdentificacion"`
}

// List maneja GET /api/usuarios. Passwords never leave the handler: the
// model's hash field is tagged json:"-".
func (h *UsuariosHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.UsuarioFilter{
		Nombre: q.Get("nombre"),
		Correo: q.Get("correo"),
		Rol:    q.Get("rol"),
		Genero: q.Get("genero"),
	}
	sort := sortParam(r, bson.D{{Key: "createdAt", Value: -1}}, "nombre", "correo", "rol")
	p := pageOpts(r, sort)

	usuarios, total, err := h.DB.ListUsuarios(r.Context(), filter, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse("usuarios", usuarios, total, p))
}

// Get maneja GET /api/usuarios/{id}.
func (h *UsuariosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	usuario, err := h.DB.UsuarioByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if usuario == nil {
		writeMessage(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, usuario)
}

// Create maneja POST /api/usuarios.
func (h *UsuariosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req usuarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	usuario := &models.Usuario{
		Nombre: req.Nombre,
		Correo: strings.TrimSpace(strings.ToLower(req.Correo)),
		Rol:    req.Rol,
		Genero: req.Genero,

		TipoIdentificacion: req.TipoIdentificacion,
	}
	if usuario.Rol == "" {
		usuario.Rol = models.RolUser
	}
	if req.Telefono != nil {
		usuario.Telefono = *req.Telefono
	}
	if req.Apellido != nil {
		usuario.Apellido = *req.Apellido
	}
	if req.Direccion != nil {
		usuario.Direccion = *req.Direccion
	}
	if req.NumeroIdentificacion != nil {
		usuario.NumeroIdentificacion = *req.NumeroIdentificacion
	}
	if err := usuario.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Contrasena == "" {
		writeMessage(w, http.StatusBadRequest, "la contraseña es obligatoria")
		return
	}
	if err := models.ValidarContrasena(req.Contrasena); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Contrasena), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, err)
		return
	}
	usuario.Contrasena = string(hash)

	id, err := h.DB.InsertUsuario(r.Context(), usuario)
	if err != nil {
		if store.IsDuplicateKey(err) {
			writeMessage(w, http.StatusBadRequest, "Ya existe un usuario con este correo")
			return
		}
		writeError(w, err)
		return
	}
	usuario.ID = id
	writeJSON(w, http.StatusCreated, usuario)
}

// Update maneja PUT /api/usuarios/{id}. A supplied contrasena is re-hashed;
// an absent one leaves the stored hash untouched.
func (h *UsuariosHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	usuario, err := h.DB.UsuarioByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if usuario == nil {
		writeMessage(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	var req usuarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Nombre != "" {
		usuario.Nombre = req.Nombre
	}
	if req.Correo != "" {
		usuario.Correo = strings.TrimSpace(strings.ToLower(req.Correo))
	}
	if req.Telefono != nil {
		usuario.Telefono = *req.Telefono
	}
	if req.Rol != "" {
		usuario.Rol = req.Rol
	}
	if req.Apellido != nil {
		usuario.Apellido = *req.Apellido
	}
	if req.Direccion != nil {
		usuario.Direccion = *req.Direccion
	}
	if req.Genero != "" {
		usuario.Genero = req.Genero
	}
	if req.TipoIdentificacion != "" {
		usuario.TipoIdentificacion = req.TipoIdentificacion
	}
	if req.NumeroIdentificacion != nil {
		usuario.NumeroIdentificacion = *req.NumeroIdentificacion
	}
	if err := usuario.Validar(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	usuario.Contrasena = ""
	if req.Contrasena != "" {
		if err := models.ValidarContrasena(req.Contrasena); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Contrasena), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, err)
			return
		}
		usuario.Contrasena = string(hash)
	}
	if err := h.DB.UpdateUsuario(r.Context(), id, usuario); err != nil {
		if store.IsDuplicateKey(err) {
			writeMessage(w, http.StatusBadRequest, "Ya existe un usuario con este correo")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usuario)
}

// Delete maneja DELETE /api/usuarios/{id}.
func (h *UsuariosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}
	usuario, err := h.DB.UsuarioByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if usuario == nil {
		writeMessage(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	if err := h.DB.DeleteUsuario(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Usuario eliminado")
}

type loginRequest struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contrasena"`
}

type loginResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	Usuario *models.Usuario `json:"usuario"`
}

// Login maneja POST /api/usuarios/login.
func (h *UsuariosHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Correo == "" || req.Contrasena == "" {
		writeMessage(w, http.StatusBadRequest, "correo y contraseña son obligatorios")
		return
	}
	correo := strings.TrimSpace(strings.ToLower(req.Correo))

	usuario, err := h.DB.UsuarioByCorreo(r.Context(), correo)
	if err != nil {
		writeError(w, err)
		return
	}
	if usuario == nil {
		// With no admin in the database, the configured credentials seed one.
		if correo != h.AdminEmail || req.Contrasena != h.AdminPassword {
			writeMessage(w, http.StatusUnauthorized, "Credenciales inválidas")
			return
		}
		usuario, err = h.ensureDefaultAdmin(r)
		if err != nil {
			writeError(w, err)
			return
		}
	} else if bcrypt.CompareHashAndPassword([]byte(usuario.Contrasena), []byte(req.Contrasena)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	token, err := h.createToken(usuario)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login exitoso",
		Token:   token,
		Usuario: usuario,
	})
}

func (h *UsuariosHandler) ensureDefaultAdmin(r *http.Request) (*models.Usuario, error) {
	// Check again in case of race
	usuario, err := h.DB.UsuarioByCorreo(r.Context(), h.AdminEmail)
	if err != nil {
		return nil, err
	}
	if usuario != nil {
		return usuario, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(h.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.Usuario{
		Nombre:     "Administrador",
		Correo:     h.AdminEmail,
		Contrasena: string(hash),
		Rol:        models.RolAdmin,
	}
	id, err := h.DB.InsertUsuario(r.Context(), admin)
	if err != nil {
		return nil, err
	}
	admin.ID = id
	return admin, nil
}

func (h *UsuariosHandler) createToken(usuario *models.Usuario) (string, error) {
	claims := &middleware.Claims{
		UserID: usuario.ID.Hex(),
		Correo: usuario.Correo,
		Rol:    usuario.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JWTSecret))
}
