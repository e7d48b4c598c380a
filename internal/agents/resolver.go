package agents

import (
	"log"
	"os"

	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/vectordb"
)

// IndexOpener attaches a live index handle for a persisted index file.
type IndexOpener func(path string) (vectordb.Index, error)

// Source is one surviving document reference with its opened index.
type Source struct {
	Record library.Record
	Index  vectordb.Index
}

// Resolved is an agent config with live index handles for the document
// references that could still be found. A resolved agent with zero
// sources is valid but unusable for chat.
type Resolved struct {
	Config
	Sources []Source
}

// Usable reports whether the agent has at least one live index.
func (r *Resolved) Usable() bool {
	return len(r.Sources) > 0
}

// Resolve loads the agent with the given id and reattaches an index
// handle per stored document reference. References whose registry
// record is gone, whose index file no longer exists, or whose index
// fails to open are skipped with a logged warning; losing all of them
// still resolves successfully with an empty source list. Returns nil
// for an unknown agent id.
func (r *Registry) Resolve(id string, lib *library.Registry, open IndexOpener) *Resolved {
	cfg := r.Get(id)
	if cfg == nil {
		return nil
	}

	resolved := &Resolved{Config: *cfg}
	for _, ref := range cfg.Docs {
		rec := lib.Get(ref.ID)
		if rec == nil {
			log.Printf("agents: %s references missing document %q, skipping", id, ref.Title)
			continue
		}
		if _, err := os.Stat(rec.IndexPath); err != nil {
			log.Printf("agents: index for %q not found at %s, skipping", rec.Title, rec.IndexPath)
			continue
		}
		index, err := open(rec.IndexPath)
		if err != nil {
			log.Printf("agents: opening index for %q: %v, skipping", rec.Title, err)
			continue
		}
		resolved.Sources = append(resolved.Sources, Source{Record: *rec, Index: index})
	}

	return resolved
}
