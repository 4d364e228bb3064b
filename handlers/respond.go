package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/biblioteca/backend/service"
	"github.com/biblioteca/backend/store"
	"go.mongodb.org/mongo-driver/bson"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps domain failures to client status codes: validation,
// out-of-stock, duplicate-loan and unique-constraint failures are 400,
// missing references 404, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch service.ErrCode(err) {
	case service.CodeNotFound:
		writeMessage(w, http.StatusNotFound, err.Error())
	case service.CodeValidation, service.CodeOutOfStock, service.CodeDuplicateActiveLoan, service.CodeUniqueConstraint:
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("handlers: internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}

// sortParam honours the sort query parameter when it names one of the
// entity's sortable fields, ascending. Anything else keeps the entity's
// default order.
func sortParam(r *http.Request, fallback bson.D, campos ...string) bson.D {
	pedido := r.URL.Query().Get("sort")
	for _, campo := range campos {
		if pedido == campo {
			return bson.D{{Key: campo, Value: 1}}
		}
	}
	return fallback
}

// pageOpts reads page/limit from the query string, with the sort the caller
// decided on.
func pageOpts(r *http.Request, sort bson.D) store.PageOpts {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return store.PageOpts{Page: page, Limit: limit, Sort: sort}
}

// listResponse is the pagination envelope shared by every listing; the
// resource key varies per entity but the shape is constant.
func listResponse(resource string, docs any, total int64, p store.PageOpts) map[string]any {
	return map[string]any{
		resource:  docs,
		"total":   total,
		"pagina":  p.Page,
		"paginas": p.Pages(total),
		"limite":  p.Limit,
	}
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
