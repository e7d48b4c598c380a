package library

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/libroteca/libroteca/internal/taxonomy"
)

// RegisterRoutes mounts the catalog and taxonomy API routes.
func RegisterRoutes(r chi.Router, reg *Registry, tax *taxonomy.Store) {
	r.Route("/api/documents", func(r chi.Router) {
		r.Get("/", handleSearch(reg))
		r.Get("/{id}", handleGet(reg))
	})
	r.Route("/api/taxonomy", func(r chi.Router) {
		r.Get("/", handleTaxonomy(tax))
		r.Get("/top", handleTopCategories(tax))
	})
}

func handleSearch(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filters := Filters{
			Category: q.Get("category"),
			Type:     q.Get("type"),
			Level:    q.Get("level"),
			Language: q.Get("language"),
		}
		if v := q.Get("year_from"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filters.YearFrom = n
			}
		}
		if v := q.Get("year_to"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filters.YearTo = n
			}
		}

		results := reg.Search(q.Get("q"), filters)
		if results == nil {
			results = []Record{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleGet(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		rec := reg.Get(id)
		if rec == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	}
}

func handleTaxonomy(tax *taxonomy.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"categories": tax.Categories(),
			"types":      taxonomy.DocumentTypes,
			"levels":     taxonomy.DifficultyLevels,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func handleTopCategories(tax *taxonomy.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 8
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		top := tax.TopCategories(limit)
		if top == nil {
			top = []taxonomy.CategoryCount{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(top)
	}
}
