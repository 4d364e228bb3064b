package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/biblioteca/backend/models"
	"github.com/biblioteca/backend/service"
	"github.com/biblioteca/backend/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportesHandler struct {
	DB          *store.DB
	Archive     *service.ReportArchive // nil = archiving disabled
	Notificador *service.Notificador   // nil = reminders disabled
}

var nombresMeses = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// EstadisticasGenerales maneja GET /api/reportes/estadisticas-generales.
func (h *ReportesHandler) EstadisticasGenerales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsuarios, err := h.DB.UsuariosCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	totalLibros, err := h.DB.LibrosCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	totalAutores, err := h.DB.AutoresCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	totalPrestamos, err := h.DB.PrestamosCount(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	prestamosActivos, err := h.DB.PrestamosCount(ctx, models.EstadoActivo)
	if err != nil {
		writeError(w, err)
		return
	}
	prestamosVencidos, err := h.DB.PrestamosCount(ctx, models.EstadoVencido)
	if err != nil {
		writeError(w, err)
		return
	}
	librosDisponibles, err := h.DB.LibrosDisponiblesCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	librosPrestables, err := h.DB.ExistenciasDisponiblesTotal(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	prestamosRecientes, err := h.DB.PrestamosCountSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		writeError(w, err)
		return
	}
	librosMasPrestados, err := h.DB.LibrosMasPrestados(ctx, 5)
	if err != nil {
		writeError(w, err)
		return
	}

	porcentaje := 0
	if totalLibros > 0 {
		porcentaje = int(math.Round(float64(librosDisponibles) / float64(totalLibros) * 100))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"estadisticas": map[string]any{
			"totalUsuarios":         totalUsuarios,
			"totalLibros":           totalLibros,
			"totalAutores":          totalAutores,
			"totalPrestamos":        totalPrestamos,
			"prestamosActivos":      prestamosActivos,
			"prestamosVencidos":     prestamosVencidos,
			"librosDisponibles":     librosDisponibles,
			"librosPrestados":       librosPrestables,
			"porcentajeDisponibles": porcentaje,
			"prestamosRecientes":    prestamosRecientes,
		},
		"librosMasPrestados": librosMasPrestados,
	})
}

// PrestamosPorMes maneja GET /api/reportes/prestamos-por-mes.
func (h *ReportesHandler) PrestamosPorMes(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}
	porMes, err := h.DB.PrestamosPorMes(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}

	// Twelve buckets, months with no loans filled with zeros.
	resultado := make([]map[string]any, 0, 12)
	for i, mes := range nombresMeses {
		fila := map[string]any{"mes": mes, "total": 0, "activos": 0, "devueltos": 0, "vencidos": 0}
		for _, p := range porMes {
			if p.Mes == i+1 {
				fila["total"] = p.Total
				fila["activos"] = p.Activos
				fila["devueltos"] = p.Devueltos
				fila["vencidos"] = p.Vencidos
				break
			}
		}
		resultado = append(resultado, fila)
	}
	writeJSON(w, http.StatusOK, resultado)
}

// UsuariosPorRol maneja GET /api/reportes/usuarios-por-rol.
func (h *ReportesHandler) UsuariosPorRol(w http.ResponseWriter, r *http.Request) {
	porRol, err := h.DB.UsuariosPorRol(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resultado := make([]map[string]any, 0, len(porRol))
	for _, item := range porRol {
		resultado = append(resultado, map[string]any{
			"rol":        item.Clave,
			"count":      item.Count,
			"porcentaje": 0, // lo calcula el front-end
		})
	}
	writeJSON(w, http.StatusOK, resultado)
}

// LibrosPorGenero maneja GET /api/reportes/libros-por-genero.
func (h *ReportesHandler) LibrosPorGenero(w http.ResponseWriter, r *http.Request) {
	porGenero, err := h.DB.LibrosPorGenero(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, porGenero)
}

// PrestamosVencidos maneja GET /api/reportes/prestamos-vencidos.
func (h *ReportesHandler) PrestamosVencidos(w http.ResponseWriter, r *http.Request) {
	hoy := time.Now()
	vencidos, err := h.DB.PrestamosVencidos(r.Context(), hoy)
	if err != nil {
		writeError(w, err)
		return
	}
	resultado := make([]models.PrestamoVencido, 0, len(vencidos))
	for _, p := range vencidos {
		resultado = append(resultado, models.PrestamoVencido{
			PrestamoConRefs: p,
			DiasRetraso:     int(hoy.Sub(p.FechaDevolucion).Hours() / 24),
		})
	}
	writeJSON(w, http.StatusOK, resultado)
}

// DashboardAdmin maneja GET /api/reportes/dashboard-admin.
func (h *ReportesHandler) DashboardAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalUsuarios, err := h.DB.UsuariosCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	totalLibros, err := h.DB.LibrosCount(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	totalPrestamos, err := h.DB.PrestamosCount(ctx, "")
	if err != nil {
		writeError(w, err)
		return
	}
	prestamosActivos, err := h.DB.PrestamosCount(ctx, models.EstadoActivo)
	if err != nil {
		writeError(w, err)
		return
	}
	prestamosVencidos, err := h.DB.PrestamosCount(ctx, models.EstadoVencido)
	if err != nil {
		writeError(w, err)
		return
	}
	recientes, err := h.DB.RecentPrestamos(ctx, 10)
	if err != nil {
		writeError(w, err)
		return
	}
	masActivos, err := h.DB.UsuariosMasActivos(ctx, 5)
	if err != nil {
		writeError(w, err)
		return
	}

	actividad := make([]map[string]any, 0, len(recientes))
	for _, p := range recientes {
		nombre := ""
		if p.Usuario != nil {
			nombre = p.Usuario.Nombre
		}
		titulo := ""
		if p.Libro != nil {
			titulo = p.Libro.Titulo
		}
		verbo := "prestó"
		switch p.Estado {
		case models.EstadoDevuelto:
			verbo = "devolvió"
		case models.EstadoVencido:
			verbo = "tiene vencido"
		}
		actividad = append(actividad, map[string]any{
			"tipo":        "préstamo",
			"descripcion": nombre + " " + verbo + " \"" + titulo + "\"",
			"fecha":       p.CreatedAt,
			"estado":      p.Estado,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"estadisticasRapidas": map[string]any{
			"totalUsuarios":     totalUsuarios,
			"totalLibros":       totalLibros,
			"totalPrestamos":    totalPrestamos,
			"prestamosActivos":  prestamosActivos,
			"prestamosVencidos": prestamosVencidos,
		},
		"actividadReciente":  actividad,
		"usuariosMasActivos": masActivos,
	})
}

// NotificarVencido maneja POST /api/reportes/prestamos-vencidos/{id}/notificar:
// envía un recordatorio por correo al usuario del préstamo.
func (h *ReportesHandler) NotificarVencido(w http.ResponseWriter, r *http.Request) {
	if h.Notificador == nil {
		writeMessage(w, http.StatusServiceUnavailable, "notificaciones por correo no configuradas")
		return
	}
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
	hoy := time.Now()
	if prestamo.Estado != models.EstadoActivo && prestamo.Estado != models.EstadoVencido {
		writeMessage(w, http.StatusBadRequest, "el préstamo no está pendiente de devolución")
		return
	}
	if !hoy.After(prestamo.FechaDevolucion) {
		writeMessage(w, http.StatusBadRequest, "el préstamo no está vencido")
		return
	}
	if prestamo.Usuario == nil || prestamo.Usuario.Correo == "" {
		writeMessage(w, http.StatusBadRequest, "el usuario del préstamo no tiene correo")
		return
	}
	titulo := ""
	if prestamo.Libro != nil {
		titulo = prestamo.Libro.Titulo
	}
	dias := int(hoy.Sub(prestamo.FechaDevolucion).Hours() / 24)
	if err := h.Notificador.EnviarRecordatorio(prestamo.Usuario.Correo, prestamo.Usuario.Nombre, titulo, dias); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Recordatorio enviado")
}
