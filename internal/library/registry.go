// Package library is the document registry: a JSON-backed store mapping
// content-derived document ids to metadata records, with lookup and
// filtered search.
package library

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/libroteca/libroteca/internal/taxonomy"
)

// Registry holds all document records in memory and persists them as one
// JSON document (metadata.json). The load/mutate/save cycle is serialized
// by a mutex so concurrent inserts cannot lose updates.
type Registry struct {
	mu    sync.RWMutex
	path  string
	tax   *taxonomy.Store
	docs  map[string]Record
	order []string // ids in insertion order
}

// Open loads the registry from path. A missing or corrupt file yields an
// empty registry (logged, never fatal).
func Open(path string, tax *taxonomy.Store) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	r := &Registry{path: path, tax: tax, docs: map[string]Record{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("library: reading %s: %v, starting empty", path, err)
		}
		return r, nil
	}

	if err := json.Unmarshal(data, &r.docs); err != nil {
		log.Printf("library: %s is corrupt (%v), starting empty", path, err)
		r.docs = map[string]Record{}
		return r, nil
	}

	// Reconstruct insertion order from processing timestamps; ties and
	// unparseable timestamps fall back to id order.
	r.order = make([]string, 0, len(r.docs))
	for id := range r.docs {
		r.order = append(r.order, id)
	}
	sort.Slice(r.order, func(i, j int) bool {
		a, b := r.docs[r.order[i]], r.docs[r.order[j]]
		if a.ProcessedAt != b.ProcessedAt {
			return a.ProcessedAt < b.ProcessedAt
		}
		return a.ID < b.ID
	})

	return r, nil
}

// persist writes the whole registry file from the given snapshot.
func (r *Registry) persist(docs map[string]Record) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling registry: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return nil
}

// Insert registers a document after successful ingestion. The id is
// derived from the draft's identity triple; re-inserting the same triple
// overwrites the prior record. The registry file is written before the
// in-memory state is touched, so a failed write leaves memory and disk
// consistent. On success the category usage counter is bumped.
func (r *Registry) Insert(draft Draft, art Artifacts) (string, error) {
	if draft.Title == "" || draft.Author == "" || draft.Year == 0 {
		return "", fmt.Errorf("title, author and year are required")
	}

	id := ComputeID(draft.Title, draft.Author, draft.Year)
	rec := Record{
		ID:           id,
		Title:        draft.Title,
		Author:       draft.Author,
		Year:         draft.Year,
		Language:     draft.Language,
		Category:     draft.Category,
		Type:         draft.Type,
		Level:        draft.Level,
		Description:  draft.Description,
		Tags:         draft.Tags,
		Pages:        art.Pages,
		Chunks:       art.Chunks,
		FileSize:     art.FileSize,
		OriginalPath: art.OriginalPath,
		IndexPath:    art.IndexPath,
		PreviewPath:  art.PreviewPath,
		ProcessedAt:  time.Now().Format(time.RFC3339),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Persist a snapshot including the new record first.
	snapshot := make(map[string]Record, len(r.docs)+1)
	for k, v := range r.docs {
		snapshot[k] = v
	}
	snapshot[id] = rec

	if err := r.persist(snapshot); err != nil {
		return "", err
	}

	if _, exists := r.docs[id]; !exists {
		r.order = append(r.order, id)
	}
	r.docs[id] = rec

	if r.tax != nil && rec.Category != "" {
		if err := r.tax.IncrementCount(rec.Category); err != nil {
			log.Printf("library: incrementing count for %q: %v", rec.Category, err)
		}
	}

	return id, nil
}

// Get returns the record for id, or nil if absent.
func (r *Registry) Get(id string) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.docs[id]
	if !ok {
		return nil
	}
	return &rec
}

// TotalCount returns the number of registered documents.
func (r *Registry) TotalCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// NewCountOn counts documents processed on the given calendar date.
// Records with missing or unparseable timestamps are skipped.
func (r *Registry) NewCountOn(date time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	y, m, d := date.Date()
	count := 0
	for _, rec := range r.docs {
		ts, err := time.Parse(time.RFC3339, rec.ProcessedAt)
		if err != nil {
			continue
		}
		ry, rm, rd := ts.Date()
		if ry == y && rm == m && rd == d {
			count++
		}
	}
	return count
}

// Filters narrows a search. Empty fields and the "no restriction"
// sentinels ("All", "Any", "Todas", "Todos") are skipped. YearFrom and
// YearTo form an inclusive range; zero means unbounded on that side.
type Filters struct {
	Category string
	Type     string
	Level    string
	Language string
	YearFrom int
	YearTo   int
}

var sentinels = map[string]bool{
	"All":   true,
	"Any":   true,
	"Todas": true,
	"Todos": true,
}

func active(value string) bool {
	return value != "" && !sentinels[value]
}

// Search applies the filters and then the free-text query: a case-
// insensitive substring match against title, description, author and
// each tag. Matches are returned in insertion order.
func (r *Registry) Search(query string, f Filters) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var results []Record
	for _, id := range r.order {
		rec := r.docs[id]
		if !matchesFilters(rec, f) {
			continue
		}
		if q != "" && !matchesQuery(rec, q) {
			continue
		}
		results = append(results, rec)
	}
	return results
}

func matchesFilters(rec Record, f Filters) bool {
	if active(f.Category) && rec.Category != f.Category {
		return false
	}
	if active(f.Type) && rec.Type != f.Type {
		return false
	}
	if active(f.Level) && rec.Level != f.Level {
		return false
	}
	if active(f.Language) && rec.Language != f.Language {
		return false
	}
	if f.YearFrom != 0 && rec.Year < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && rec.Year > f.YearTo {
		return false
	}
	return true
}

func matchesQuery(rec Record, q string) bool {
	if strings.Contains(strings.ToLower(rec.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Description), q) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Author), q) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
