package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Pure field validators. Each returns nil or an error with the client-facing
// message; nothing here touches the store or shared state.

var (
	reNombre         = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s]+$`)
	reNombreAutor    = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s\-\.]+$`)
	reCorreo         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	reTelefono       = regexp.MustCompile(`^[\d\s\-\+\(\)]{7,15}$`)
	reISBN           = regexp.MustCompile(`^\d{10}(\d{3})?$`)
	reURL            = regexp.MustCompile(`^https?://.+`)
	reIdentificacion = regexp.MustCompile(`^[\d\-a-zA-Z]{5,20}$`)
)

func contiene(valores []string, v string) bool {
	for _, val := range valores {
		if val == v {
			return true
		}
	}
	return false
}

func ValidarNombre(nombre string, min, max int) error {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return fmt.Errorf("el nombre es obligatorio")
	}
	if len([]rune(nombre)) < min || len([]rune(nombre)) > max {
		return fmt.Errorf("el nombre debe tener entre %d y %d caracteres", min, max)
	}
	if !reNombre.MatchString(nombre) {
		return fmt.Errorf("el nombre solo puede contener letras y espacios")
	}
	return nil
}

func ValidarCorreo(correo string) error {
	if strings.TrimSpace(correo) == "" {
		return fmt.Errorf("el correo es obligatorio")
	}
	if !reCorreo.MatchString(correo) {
		return fmt.Errorf("formato de correo electrónico inválido")
	}
	return nil
}

func ValidarTelefono(telefono string) error {
	if telefono == "" {
		return nil
	}
	if !reTelefono.MatchString(telefono) {
		return fmt.Errorf("formato de teléfono inválido")
	}
	return nil
}

func ValidarContrasena(contrasena string) error {
	if len(contrasena) < 6 {
		return fmt.Errorf("la contraseña debe tener al menos 6 caracteres")
	}
	return nil
}

func ValidarISBN(isbn string) error {
	if strings.TrimSpace(isbn) == "" {
		return fmt.Errorf("el ISBN es obligatorio")
	}
	if !reISBN.MatchString(strings.ReplaceAll(isbn, "-", "")) {
		return fmt.Errorf("ISBN inválido")
	}
	return nil
}

func ValidarURL(url string) error {
	if url == "" {
		return nil
	}
	if !reURL.MatchString(url) {
		return fmt.Errorf("URL inválida")
	}
	return nil
}

func ValidarNumeroIdentificacion(numero string) error {
	if numero == "" {
		return nil
	}
	if !reIdentificacion.MatchString(numero) {
		return fmt.Errorf("formato de número de identificación inválido")
	}
	return nil
}

// Validar checks all Autor fields.
func (a *Autor) Validar() error {
	nombre := strings.TrimSpace(a.Nombre)
	if nombre == "" {
		return fmt.Errorf("el nombre del autor es obligatorio")
	}
	if n := len([]rune(nombre)); n < 2 || n > 100 {
		return fmt.Errorf("el nombre debe tener entre 2 y 100 caracteres")
	}
	if !reNombreAutor.MatchString(nombre) {
		return fmt.Errorf("el nombre solo puede contener letras, espacios, guiones y puntos")
	}
	if a.Nacionalidad != "" && !reNombre.MatchString(a.Nacionalidad) {
		return fmt.Errorf("la nacionalidad solo puede contener letras y espacios")
	}
	if len([]rune(a.Nacionalidad)) > 50 {
		return fmt.Errorf("la nacionalidad no puede exceder 50 caracteres")
	}
	if a.FechaNacimiento != nil {
		edad := time.Now().Year() - a.FechaNacimiento.Year()
		if edad < 10 || edad > 150 {
			return fmt.Errorf("fecha de nacimiento inválida")
		}
	}
	if err := ValidarURL(a.SitioWeb); err != nil {
		return fmt.Errorf("URL del sitio web inválida")
	}
	if len([]rune(a.Biografia)) > 1000 {
		return fmt.Errorf("la biografía no puede exceder 1000 caracteres")
	}
	if err := ValidarURL(a.ImagenURL); err != nil {
		return fmt.Errorf("URL de imagen inválida")
	}
	return nil
}

// Validar checks all Libro fields. The author-exists check lives in the
// service, this only covers field shape.
func (l *Libro) Validar() error {
	titulo := strings.TrimSpace(l.Titulo)
	if titulo == "" {
		return fmt.Errorf("el título es obligatorio")
	}
	if n := len([]rune(titulo)); n < 2 || n > 200 {
		return fmt.Errorf("el título debe tener entre 2 y 200 caracteres")
	}
	if err := ValidarISBN(l.ISBN); err != nil {
		return err
	}
	if len([]rune(l.Genero)) > 50 {
		return fmt.Errorf("el género no puede exceder 50 caracteres")
	}
	if l.AnioPublicacion < 1000 || l.AnioPublicacion > time.Now().Year()+1 {
		return fmt.Errorf("año de publicación inválido")
	}
	if l.Autor.IsZero() {
		return fmt.Errorf("el autor es obligatorio")
	}
	if err := ValidarURL(l.ImagenURL); err != nil {
		return fmt.Errorf("URL de imagen inválida")
	}
	if l.Existencias < 0 {
		return fmt.Errorf("las existencias no pueden ser negativas")
	}
	if l.IdiomaOriginal != "" && !contiene(IdiomasValidos, l.IdiomaOriginal) {
		return fmt.Errorf("idioma no válido")
	}
	return nil
}

// Validar checks all Usuario fields except the password, which is validated
// before hashing.
func (u *Usuario) Validar() error {
	if err := ValidarNombre(u.Nombre, 2, 50); err != nil {
		return err
	}
	if err := ValidarCorreo(u.Correo); err != nil {
		return err
	}
	if err := ValidarTelefono(u.Telefono); err != nil {
		return err
	}
	if !contiene(RolesValidos, u.Rol) {
		return fmt.Errorf("rol inválido")
	}
	if u.Apellido != "" {
		if len([]rune(u.Apellido)) > 50 {
			return fmt.Errorf("el apellido no puede exceder 50 caracteres")
		}
		if !reNombre.MatchString(u.Apellido) {
			return fmt.Errorf("el apellido solo puede contener letras y espacios")
		}
	}
	if len([]rune(u.Direccion)) > 200 {
		return fmt.Errorf("la dirección no puede exceder 200 caracteres")
	}
	if u.Genero != "" && !contiene(GenerosValidos, u.Genero) {
		return fmt.Errorf("género inválido")
	}
	if u.TipoIdentificacion != "" && !contiene(TiposIdentificacionValidos, u.TipoIdentificacion) {
		return fmt.Errorf("tipo de identificación inválido")
	}
	if err := ValidarNumeroIdentificacion(u.NumeroIdentificacion); err != nil {
		return err
	}
	return nil
}

// Validar checks loan dates and state.
func (p *Prestamo) Validar(ahora time.Time) error {
	if p.Usuario.IsZero() {
		return fmt.Errorf("el usuario es obligatorio")
	}
	if p.Libro.IsZero() {
		return fmt.Errorf("el libro es obligatorio")
	}
	if p.FechaPrestamo.IsZero() {
		return fmt.Errorf("la fecha de préstamo es obligatoria")
	}
	if p.FechaPrestamo.After(ahora) {
		return fmt.Errorf("la fecha de préstamo no puede ser futura")
	}
	if p.FechaDevolucion.IsZero() {
		return fmt.Errorf("la fecha de devolución es obligatoria")
	}
	if !p.FechaDevolucion.After(p.FechaPrestamo) {
		return fmt.Errorf("la fecha de devolución debe ser posterior a la fecha de préstamo")
	}
	if p.Estado != "" && !contiene(EstadosPrestamoValidos, p.Estado) {
		return fmt.Errorf("estado inválido")
	}
	return nil
}

// Validar checks return fields.
func (d *Devolucion) Validar(ahora time.Time) error {
	if d.Prestamo.IsZero() {
		return fmt.Errorf("el préstamo es obligatorio")
	}
	if d.FechaDevolucionReal.After(ahora) {
		return fmt.Errorf("la fecha de devolución real no puede ser futura")
	}
	if !contiene(EstadosDevolucionValidos, d.Estado) {
		return fmt.Errorf("estado de devolución inválido")
	}
	if d.CondicionLibro != "" && !contiene(CondicionesLibroValidas, d.CondicionLibro) {
		return fmt.Errorf("condición del libro inválida")
	}
	if len([]rune(d.Observaciones)) > 500 {
		return fmt.Errorf("las observaciones no pueden exceder 500 caracteres")
	}
	if d.Multa < 0 {
		return fmt.Errorf("la multa no puede ser negativa")
	}
	return nil
}
