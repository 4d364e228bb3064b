package handlers

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/biblioteca/backend/models"
)

func tablaDePrueba() tabla {
	return tablaUsuarios([]models.Usuario{
		{
			ID:        primitive.NewObjectID(),
			Nombre:    "Ana",
			Apellido:  "Pérez",
			Correo:    "ana@example.com",
			Telefono:  "3001234567",
			Rol:       models.RolUser,
			CreatedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:     primitive.NewObjectID(),
			Nombre: "Luis",
			Correo: "luis@example.com",
			Rol:    models.RolAdmin,
		},
	})
}

func TestBuildPDF(t *testing.T) {
	body, err := buildPDF(tablaDePrueba())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestBuildExcel(t *testing.T) {
	tab := tablaDePrueba()
	body, err := buildExcel(tab)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()

	filas, err := f.GetRows(tab.Hoja)
	require.NoError(t, err)
	require.Len(t, filas, 3) // cabecera + dos usuarios
	assert.Equal(t, tab.Cabeceras, filas[0])
	assert.Equal(t, "Ana", filas[1][0])
	assert.Equal(t, "ana@example.com", filas[1][2])
	assert.Equal(t, "admin", filas[2][4])
}

func TestTablaLibros(t *testing.T) {
	tab := tablaLibros([]models.LibroConAutor{
		{
			Titulo:          "Cien años de soledad",
			ISBN:            "9780307474728",
			Genero:          "Realismo mágico",
			AnioPublicacion: 1967,
			Autor:           &models.AutorRef{Nombre: "Gabriel García Márquez"},
			Existencias:     3,
			IdiomaOriginal:  "Español",
		},
		{Titulo: "Libro sin autor", ISBN: "0307474720", AnioPublicacion: 2000},
	})

	require.Len(t, tab.Filas, 2)
	assert.Equal(t, "Gabriel García Márquez", tab.Filas[0][4])
	assert.Equal(t, "3", tab.Filas[0][5])
	assert.Empty(t, tab.Filas[1][4]) // autor borrado queda en blanco
}
