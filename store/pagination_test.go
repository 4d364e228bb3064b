package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOptsNormalized(t *testing.T) {
	tests := []struct {
		name      string
		in        PageOpts
		wantPage  int
		wantLimit int
	}{
		{name: "valores validos se conservan", in: PageOpts{Page: 3, Limit: 25}, wantPage: 3, wantLimit: 25},
		{name: "cero cae a los defectos", in: PageOpts{}, wantPage: 1, wantLimit: 10},
		{name: "negativos caen a los defectos", in: PageOpts{Page: -2, Limit: -5}, wantPage: 1, wantLimit: 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in.normalized()
			assert.Equal(t, tc.wantPage, p.Page)
			assert.Equal(t, tc.wantLimit, p.Limit)
		})
	}
}

func TestPageOptsSkip(t *testing.T) {
	assert.Equal(t, int64(0), PageOpts{Page: 1, Limit: 10}.skip())
	assert.Equal(t, int64(10), PageOpts{Page: 2, Limit: 10}.skip())
	assert.Equal(t, int64(50), PageOpts{Page: 3, Limit: 25}.skip())
}

func TestPageOptsPages(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		total int64
		want  int64
	}{
		{name: "sin documentos", limit: 10, total: 0, want: 0},
		{name: "pagina exacta", limit: 10, total: 20, want: 2},
		{name: "pagina parcial redondea arriba", limit: 10, total: 21, want: 3},
		{name: "menos que una pagina", limit: 10, total: 3, want: 1},
		{name: "limite por defecto", limit: 0, total: 35, want: 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := PageOpts{Page: 1, Limit: tc.limit}
			assert.Equal(t, tc.want, p.Pages(tc.total))
		})
	}
}
