package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidarAutor(t *testing.T) {
	nacimiento := time.Date(1927, 3, 6, 0, 0, 0, 0, time.UTC)

	valido := func() Autor {
		return Autor{
			Nombre:          "Gabriel García Márquez",
			Nacionalidad:    "Colombiana",
			FechaNacimiento: &nacimiento,
			SitioWeb:        "https://gabrielgarciamarquez.org",
		}
	}

	tests := []struct {
		name    string
		mutar   func(a *Autor)
		wantErr string
	}{
		{name: "autor valido", mutar: func(a *Autor) {}},
		{
			name:    "nombre vacio",
			mutar:   func(a *Autor) { a.Nombre = "  " },
			wantErr: "el nombre del autor es obligatorio",
		},
		{
			name:    "nombre demasiado corto",
			mutar:   func(a *Autor) { a.Nombre = "G" },
			wantErr: "el nombre debe tener entre 2 y 100 caracteres",
		},
		{
			name:    "nombre con digitos",
			mutar:   func(a *Autor) { a.Nombre = "Autor 123" },
			wantErr: "el nombre solo puede contener letras, espacios, guiones y puntos",
		},
		{
			name:  "nombre con guion y punto",
			mutar: func(a *Autor) { a.Nombre = "J.R.R. Tolkien-Smith" },
		},
		{
			name:    "nacionalidad con digitos",
			mutar:   func(a *Autor) { a.Nacionalidad = "Col0mbiana" },
			wantErr: "la nacionalidad solo puede contener letras y espacios",
		},
		{
			name: "fecha de nacimiento demasiado reciente",
			mutar: func(a *Autor) {
				reciente := time.Now().AddDate(-5, 0, 0)
				a.FechaNacimiento = &reciente
			},
			wantErr: "fecha de nacimiento inválida",
		},
		{
			name:    "sitio web sin esquema",
			mutar:   func(a *Autor) { a.SitioWeb = "gabrielgarciamarquez.org" },
			wantErr: "URL del sitio web inválida",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			autor := valido()
			tc.mutar(&autor)
			err := autor.Validar()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidarLibro(t *testing.T) {
	valido := func() Libro {
		return Libro{
			Titulo:          "Cien años de soledad",
			ISBN:            "9780307474728",
			Genero:          "Realismo mágico",
			AnioPublicacion: 1967,
			Autor:           primitive.NewObjectID(),
			Existencias:     3,
			IdiomaOriginal:  "Español",
		}
	}

	tests := []struct {
		name    string
		mutar   func(l *Libro)
		wantErr string
	}{
		{name: "libro valido", mutar: func(l *Libro) {}},
		{name: "isbn de diez digitos", mutar: func(l *Libro) { l.ISBN = "0307474720" }},
		{name: "isbn con guiones", mutar: func(l *Libro) { l.ISBN = "978-0-307-47472-8" }},
		{
			name:    "titulo vacio",
			mutar:   func(l *Libro) { l.Titulo = "" },
			wantErr: "el título es obligatorio",
		},
		{
			name:    "isbn de longitud invalida",
			mutar:   func(l *Libro) { l.ISBN = "12345" },
			wantErr: "ISBN inválido",
		},
		{
			name:    "anio anterior a 1000",
			mutar:   func(l *Libro) { l.AnioPublicacion = 999 },
			wantErr: "año de publicación inválido",
		},
		{
			name:    "anio demasiado futuro",
			mutar:   func(l *Libro) { l.AnioPublicacion = time.Now().Year() + 2 },
			wantErr: "año de publicación inválido",
		},
		{
			name:    "sin autor",
			mutar:   func(l *Libro) { l.Autor = primitive.NilObjectID },
			wantErr: "el autor es obligatorio",
		},
		{
			name:    "existencias negativas",
			mutar:   func(l *Libro) { l.Existencias = -1 },
			wantErr: "las existencias no pueden ser negativas",
		},
		{
			name:    "idioma desconocido",
			mutar:   func(l *Libro) { l.IdiomaOriginal = "klingon" },
			wantErr: "idioma no válido",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			libro := valido()
			tc.mutar(&libro)
			err := libro.Validar()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidarUsuario(t *testing.T) {
	valido := func() Usuario {
		return Usuario{
			Nombre:               "Ana María",
			Correo:               "ana@example.com",
			Telefono:             "+57 300 1234",
			Rol:                  RolUser,
			Apellido:             "Pérez",
			Genero:               "femenino",
			TipoIdentificacion:   "cc",
			NumeroIdentificacion: "1020304050",
		}
	}

	tests := []struct {
		name    string
		mutar   func(u *Usuario)
		wantErr string
	}{
		{name: "usuario valido", mutar: func(u *Usuario) {}},
		{
			name:    "correo invalido",
			mutar:   func(u *Usuario) { u.Correo = "ana@" },
			wantErr: "formato de correo electrónico inválido",
		},
		{
			name:    "telefono demasiado corto",
			mutar:   func(u *Usuario) { u.Telefono = "123" },
			wantErr: "formato de teléfono inválido",
		},
		{
			name:    "rol desconocido",
			mutar:   func(u *Usuario) { u.Rol = "superadmin" },
			wantErr: "rol inválido",
		},
		{
			name:    "genero desconocido",
			mutar:   func(u *Usuario) { u.Genero = "otro valor" },
			wantErr: "género inválido",
		},
		{
			name:    "tipo de identificacion desconocido",
			mutar:   func(u *Usuario) { u.TipoIdentificacion = "licencia" },
			wantErr: "tipo de identificación inválido",
		},
		{
			name:    "numero de identificacion corto",
			mutar:   func(u *Usuario) { u.NumeroIdentificacion = "123" },
			wantErr: "formato de número de identificación inválido",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			usuario := valido()
			tc.mutar(&usuario)
			err := usuario.Validar()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidarPrestamo(t *testing.T) {
	ahora := time.Date(2025, 9, 14, 12, 0, 0, 0, time.UTC)

	valido := func() Prestamo {
		return Prestamo{
			Usuario:         primitive.NewObjectID(),
			Libro:           primitive.NewObjectID(),
			FechaPrestamo:   ahora,
			FechaDevolucion: ahora.AddDate(0, 0, 14),
			Estado:          EstadoActivo,
		}
	}

	tests := []struct {
		name    string
		mutar   func(p *Prestamo)
		wantErr string
	}{
		{name: "prestamo valido", mutar: func(p *Prestamo) {}},
		{
			name:    "fecha de prestamo futura",
			mutar:   func(p *Prestamo) { p.FechaPrestamo = ahora.Add(time.Hour) },
			wantErr: "la fecha de préstamo no puede ser futura",
		},
		{
			name:    "devolucion antes del prestamo",
			mutar:   func(p *Prestamo) { p.FechaDevolucion = p.FechaPrestamo.AddDate(0, 0, -1) },
			wantErr: "la fecha de devolución debe ser posterior a la fecha de préstamo",
		},
		{
			name:    "devolucion igual al prestamo",
			mutar:   func(p *Prestamo) { p.FechaDevolucion = p.FechaPrestamo },
			wantErr: "la fecha de devolución debe ser posterior a la fecha de préstamo",
		},
		{
			name:    "estado desconocido",
			mutar:   func(p *Prestamo) { p.Estado = "perdido" },
			wantErr: "estado inválido",
		},
		{
			name:    "sin usuario",
			mutar:   func(p *Prestamo) { p.Usuario = primitive.NilObjectID },
			wantErr: "el usuario es obligatorio",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prestamo := valido()
			tc.mutar(&prestamo)
			err := prestamo.Validar(ahora)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidarDevolucion(t *testing.T) {
	ahora := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)

	valido := func() Devolucion {
		return Devolucion{
			Prestamo:                primitive.NewObjectID(),
			Usuario:                 primitive.NewObjectID(),
			Libro:                   primitive.NewObjectID(),
			FechaDevolucionReal:     ahora,
			FechaDevolucionEsperada: ahora.AddDate(0, 0, -5),
			Estado:                  DevolucionRetrasada,
			CondicionLibro:          "bueno",
			Multa:                   5,
		}
	}

	tests := []struct {
		name    string
		mutar   func(d *Devolucion)
		wantErr string
	}{
		{name: "devolucion valida", mutar: func(d *Devolucion) {}},
		{
			name:    "fecha real futura",
			mutar:   func(d *Devolucion) { d.FechaDevolucionReal = ahora.Add(time.Hour) },
			wantErr: "la fecha de devolución real no puede ser futura",
		},
		{
			name:    "estado desconocido",
			mutar:   func(d *Devolucion) { d.Estado = "extraviada" },
			wantErr: "estado de devolución inválido",
		},
		{
			name:    "condicion desconocida",
			mutar:   func(d *Devolucion) { d.CondicionLibro = "nueva" },
			wantErr: "condición del libro inválida",
		},
		{
			name:    "multa negativa",
			mutar:   func(d *Devolucion) { d.Multa = -1 },
			wantErr: "la multa no puede ser negativa",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			devolucion := valido()
			tc.mutar(&devolucion)
			err := devolucion.Validar(ahora)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}
