package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/biblioteca/backend/models"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// tabla describe un reporte tabular que puede renderizarse en PDF o Excel.
type tabla struct {
	Titulo    string
	Hoja      string
	Cabeceras []string
	Anchos    []float64 // milímetros para PDF, caracteres para Excel
	Filas     [][]string
}

func buildPDF(t tabla) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(t.Titulo), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Fecha de generación: %s", time.Now().Format("02/01/2006"))), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Total de registros: %d", len(t.Filas))), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	cabecera := func() {
		pdf.SetFont("Helvetica", "B", 10)
		for i, h := range t.Cabeceras {
			pdf.CellFormat(t.Anchos[i], 8, tr(h), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}
	cabecera()

	for _, fila := range t.Filas {
		if pdf.GetY() > 260 {
			pdf.AddPage()
			cabecera()
		}
		for i, celda := range fila {
			// Truncar celdas que no caben en el ancho de columna.
			max := int(t.Anchos[i] / 2)
			if len([]rune(celda)) > max && max > 3 {
				celda = string([]rune(celda)[:max-3]) + "..."
			}
			pdf.CellFormat(t.Anchos[i], 7, tr(celda), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildExcel(t tabla) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.Hoja); err != nil {
		return nil, err
	}
	estiloCabecera, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
	})
	if err != nil {
		return nil, err
	}

	for i, h := range t.Cabeceras {
		celda, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(t.Hoja, celda, h); err != nil {
			return nil, err
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(t.Hoja, col, col, t.Anchos[i]); err != nil {
			return nil, err
		}
	}
	ultima, err := excelize.CoordinatesToCellName(len(t.Cabeceras), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(t.Hoja, "A1", ultima, estiloCabecera); err != nil {
		return nil, err
	}

	for r, fila := range t.Filas {
		for c, valor := range fila {
			celda, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(t.Hoja, celda, valor); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sendReport entrega el archivo como descarga y, si hay bucket configurado,
// guarda una copia en S3. El archivado nunca hace fallar la descarga.
func (h *ReportesHandler) sendReport(w http.ResponseWriter, r *http.Request, entity, filename, contentType string, body []byte) {
	if h.Archive != nil {
		ext := "pdf"
		if contentType == mimeXLSX {
			ext = "xlsx"
		}
		if key, err := h.Archive.Store(r.Context(), entity, ext, contentType, body); err != nil {
			log.Printf("no se pudo archivar el reporte %s: %v", filename, err)
		} else {
			log.Printf("reporte archivado en %s", key)
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func fechaCorta(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func tablaUsuarios(usuarios []models.Usuario) tabla {
	filas := make([][]string, 0, len(usuarios))
	for _, u := range usuarios {
		filas = append(filas, []string{u.Nombre, u.Apellido, u.Correo, u.Telefono, u.Rol, fechaCorta(u.CreatedAt)})
	}
	return tabla{
		Titulo:    "Reporte de Usuarios",
		Hoja:      "Usuarios",
		Cabeceras: []string{"Nombre", "Apellido", "Correo", "Teléfono", "Rol", "Fecha Registro"},
		Anchos:    []float64{30, 30, 55, 30, 20, 25},
		Filas:     filas,
	}
}

func tablaLibros(libros []models.LibroConAutor) tabla {
	filas := make([][]string, 0, len(libros))
	for _, l := range libros {
		autor := ""
		if l.Autor != nil {
			autor = l.Autor.Nombre
		}
		filas = append(filas, []string{
			l.Titulo, l.ISBN, l.Genero, fmt.Sprintf("%d", l.AnioPublicacion),
			autor, fmt.Sprintf("%d", l.Existencias), l.IdiomaOriginal,
		})
	}
	return tabla{
		Titulo:    "Reporte de Libros",
		Hoja:      "Libros",
		Cabeceras: []string{"Título", "ISBN", "Género", "Año", "Autor", "Existencias", "Idioma"},
		Anchos:    []float64{45, 30, 25, 15, 35, 20, 20},
		Filas:     filas,
	}
}

func tablaAutores(autores []models.Autor) tabla {
	filas := make([][]string, 0, len(autores))
	for _, a := range autores {
		nacimiento := ""
		if a.FechaNacimiento != nil {
			nacimiento = fechaCorta(*a.FechaNacimiento)
		}
		filas = append(filas, []string{a.Nombre, a.Nacionalidad, nacimiento, a.SitioWeb})
	}
	return tabla{
		Titulo:    "Reporte de Autores",
		Hoja:      "Autores",
		Cabeceras: []string{"Nombre", "Nacionalidad", "Fecha Nacimiento", "Sitio Web"},
		Anchos:    []float64{50, 35, 35, 55},
		Filas:     filas,
	}
}

func tablaPrestamos(prestamos []models.PrestamoConRefs) tabla {
	filas := make([][]string, 0, len(prestamos))
	for _, p := range prestamos {
		usuario, libro := "", ""
		if p.Usuario != nil {
			usuario = p.Usuario.Nombre
		}
		if p.Libro != nil {
			libro = p.Libro.Titulo
		}
		filas = append(filas, []string{
			usuario, libro, fechaCorta(p.FechaPrestamo), fechaCorta(p.FechaDevolucion), p.Estado,
		})
	}
	return tabla{
		Titulo:    "Reporte de Préstamos",
		Hoja:      "Préstamos",
		Cabeceras: []string{"Usuario", "Libro", "Fecha Préstamo", "Fecha Devolución", "Estado"},
		Anchos:    []float64{40, 55, 30, 30, 20},
		Filas:     filas,
	}
}

func tablaDevoluciones(devoluciones []models.DevolucionConRefs) tabla {
	filas := make([][]string, 0, len(devoluciones))
	for _, d := range devoluciones {
		usuario, libro := "", ""
		if d.Usuario != nil {
			usuario = d.Usuario.Nombre
		}
		if d.Libro != nil {
			libro = d.Libro.Titulo
		}
		filas = append(filas, []string{
			usuario, libro, fechaCorta(d.FechaDevolucionReal), fechaCorta(d.FechaDevolucionEsperada),
			d.Estado, d.CondicionLibro, fmt.Sprintf("%.2f", d.Multa),
		})
	}
	return tabla{
		Titulo:    "Reporte de Devoluciones",
		Hoja:      "Devoluciones",
		Cabeceras: []string{"Usuario", "Libro", "Fecha Real", "Fecha Esperada", "Estado", "Condición", "Multa"},
		Anchos:    []float64{35, 45, 25, 25, 20, 20, 15},
		Filas:     filas,
	}
}

func (h *ReportesHandler) exportar(w http.ResponseWriter, r *http.Request, entity string, t tabla, excel bool) {
	if excel {
		body, err := buildExcel(t)
		if err != nil {
			writeError(w, err)
			return
		}
		h.sendReport(w, r, entity, entity+".xlsx", mimeXLSX, body)
		return
	}
	body, err := buildPDF(t)
	if err != nil {
		writeError(w, err)
		return
	}
	h.sendReport(w, r, entity, entity+".pdf", mimePDF, body)
}

// UsuariosPDF maneja GET /api/reportes/usuarios/pdf.
func (h *ReportesHandler) UsuariosPDF(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.DB.AllUsuarios(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "usuarios", tablaUsuarios(usuarios), false)
}

// UsuariosExcel maneja GET /api/reportes/usuarios/excel.
func (h *ReportesHandler) UsuariosExcel(w http.ResponseWriter, r *http.Request) {
	usuarios, err := h.DB.AllUsuarios(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "usuarios", tablaUsuarios(usuarios), true)
}

// LibrosPDF maneja GET /api/reportes/libros/pdf.
func (h *ReportesHandler) LibrosPDF(w http.ResponseWriter, r *http.Request) {
	libros, err := h.DB.AllLibrosConAutor(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "libros", tablaLibros(libros), false)
}

// LibrosExcel maneja GET /api/reportes/libros/excel.
func (h *ReportesHandler) LibrosExcel(w http.ResponseWriter, r *http.Request) {
	libros, err := h.DB.AllLibrosConAutor(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "libros", tablaLibros(libros), true)
}

// AutoresPDF maneja GET /api/reportes/autores/pdf.
func (h *ReportesHandler) AutoresPDF(w http.ResponseWriter, r *http.Request) {
	autores, err := h.DB.AllAutores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "autores", tablaAutores(autores), false)
}

// AutoresExcel maneja GET /api/reportes/autores/excel.
func (h *ReportesHandler) AutoresExcel(w http.ResponseWriter, r *http.Request) {
	autores, err := h.DB.AllAutores(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "autores", tablaAutores(autores), true)
}

// PrestamosPDF maneja GET /api/reportes/prestamos/pdf.
func (h *ReportesHandler) PrestamosPDF(w http.ResponseWriter, r *http.Request) {
	prestamos, err := h.DB.AllPrestamosConRefs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "prestamos", tablaPrestamos(prestamos), false)
}

// PrestamosExcel maneja GET /api/reportes/prestamos/excel.
func (h *ReportesHandler) PrestamosExcel(w http.ResponseWriter, r *http.Request) {
	prestamos, err := h.DB.AllPrestamosConRefs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "prestamos", tablaPrestamos(prestamos), true)
}

// DevolucionesPDF maneja GET /api/reportes/devoluciones/pdf.
func (h *ReportesHandler) DevolucionesPDF(w http.ResponseWriter, r *http.Request) {
	devoluciones, err := h.DB.AllDevolucionesConRefs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "devoluciones", tablaDevoluciones(devoluciones), false)
}

// DevolucionesExcel maneja GET /api/reportes/devoluciones/excel.
func (h *ReportesHandler) DevolucionesExcel(w http.ResponseWriter, r *http.Request) {
	devoluciones, err := h.DB.AllDevolucionesConRefs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	h.exportar(w, r, "devoluciones", tablaDevoluciones(devoluciones), true)
}
