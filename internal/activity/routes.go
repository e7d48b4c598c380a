package activity

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/taxonomy"
)

// RegisterRoutes mounts the statistics endpoint.
func RegisterRoutes(r chi.Router, store *Store, lib *library.Registry, tax *taxonomy.Store) {
	r.Get("/api/stats", handleStats(store, lib, tax))
}

func handleStats(store *Store, lib *library.Registry, tax *taxonomy.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := store.Counts()
		if err != nil {
			log.Printf("activity: loading event counts: %v", err)
			counts = map[string]int{}
		}

		top := tax.TopCategories(8)
		if top == nil {
			top = []taxonomy.CategoryCount{}
		}

		resp := map[string]interface{}{
			"total_documents": lib.TotalCount(),
			"new_today":       lib.NewCountOn(time.Now()),
			"top_categories":  top,
			"events":          counts,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
