// Package taxonomy manages the fixed category tree and per-category usage
// counters backed by categories.json.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Taxonomy holds the category tree and the per-category document counts.
type Taxonomy struct {
	Categories     map[string][]string `json:"categories"`
	CategoryCounts map[string]int      `json:"category_counts"`
}

// CategoryCount pairs a category name with its usage count.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DefaultTaxonomy returns the seed category tree used when no persisted
// taxonomy exists.
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{
		Categories: map[string][]string{
			"Matemáticas":  {"Álgebra", "Cálculo", "Geometría", "Estadística"},
			"Ciencias":     {"Física", "Química", "Biología", "Astronomía"},
			"Programación": {"Python", "JavaScript", "Java", "Web Development"},
			"Idiomas":      {"Inglés", "Español", "Francés", "Alemán"},
			"Historia":     {"Historia Mundial", "Historia del Arte", "Arqueología"},
			"Literatura":   {"Narrativa", "Poesía", "Teatro", "Ensayo"},
		},
		CategoryCounts: map[string]int{},
	}
}

// DocumentTypes lists the document types offered during upload.
var DocumentTypes = []string{
	"Libro de Texto",
	"Guía de Estudio",
	"Manual Técnico",
	"Paper Académico",
	"Presentación",
	"Material de Curso",
	"Documento de Investigación",
	"Apuntes",
	"Tutorial",
}

// DifficultyLevels lists the difficulty levels offered during upload.
var DifficultyLevels = []string{
	"Principiante",
	"Intermedio",
	"Avanzado",
	"Experto",
}

// Store persists a Taxonomy as a single JSON file. Every mutation is
// flushed to disk immediately; the load/mutate/save cycle is serialized
// by a mutex.
type Store struct {
	mu   sync.RWMutex
	path string
	tax  *Taxonomy
}

// Open loads the taxonomy from path, seeding it with DefaultTaxonomy if the
// file is absent or corrupt. Corruption is never fatal: the defaults are
// written back and the store continues.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating taxonomy directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("taxonomy: reading %s: %v, using defaults", path, err)
		}
		s.tax = DefaultTaxonomy()
		if err := s.persist(); err != nil {
			log.Printf("taxonomy: writing defaults: %v", err)
		}
		return s, nil
	}

	var tax Taxonomy
	if err := json.Unmarshal(data, &tax); err != nil {
		log.Printf("taxonomy: %s is corrupt (%v), rewriting defaults", path, err)
		s.tax = DefaultTaxonomy()
		if err := s.persist(); err != nil {
			log.Printf("taxonomy: writing defaults: %v", err)
		}
		return s, nil
	}

	if tax.Categories == nil {
		tax.Categories = DefaultTaxonomy().Categories
	}
	if tax.CategoryCounts == nil {
		tax.CategoryCounts = map[string]int{}
	}
	s.tax = &tax
	return s, nil
}

// persist writes the whole taxonomy file. Callers must hold the mutex.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.tax, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling taxonomy: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Categories returns the category tree. The returned map must not be mutated.
func (s *Store) Categories() map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tax.Categories
}

// HasCategory reports whether the category exists in the taxonomy.
func (s *Store) HasCategory(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tax.Categories[category]
	return ok
}

// Count returns the usage count for a category, zero if never used.
func (s *Store) Count(category string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tax.CategoryCounts[category]
}

// IncrementCount bumps the usage counter for a category, creating the key
// at zero if absent, and flushes the whole taxonomy to disk. Counts are
// not validated against the category tree.
func (s *Store) IncrementCount(category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tax.CategoryCounts[category]++
	if err := s.persist(); err != nil {
		s.tax.CategoryCounts[category]--
		return err
	}
	return nil
}

// TopCategories returns up to limit categories ordered by count descending.
// Equal counts are ordered by category name so the result is reproducible.
func (s *Store) TopCategories(limit int) []CategoryCount {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make([]CategoryCount, 0, len(s.tax.CategoryCounts))
	for cat, n := range s.tax.CategoryCounts {
		counts = append(counts, CategoryCount{Category: cat, Count: n})
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Category < counts[j].Category
	})

	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
