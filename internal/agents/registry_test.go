package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libroteca/libroteca/internal/library"
	"github.com/libroteca/libroteca/internal/vectordb"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Open(filepath.Join(t.TempDir(), "saved_agents.json"))
	if err != nil {
		t.Fatalf("opening registry: %v", err)
	}
	return reg
}

func validAgentDraft() Draft {
	return Draft{
		Name:          "Tutor de Cálculo",
		Role:          "profesor paciente",
		Style:         "formal",
		DetailLevel:   "detallado",
		Temperature:   0.3,
		MaxTokens:     1024,
		ContextWindow: 4,
		Docs:          []DocRef{{Title: "Calc I", ID: "abc123"}},
	}
}

func TestSaveAssignsUniqueIDs(t *testing.T) {
	reg := newTestRegistry(t)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		cfg, err := reg.Save(validAgentDraft())
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !strings.HasPrefix(cfg.ID, "agent_") {
			t.Errorf("id %q missing agent_ prefix", cfg.ID)
		}
		if seen[cfg.ID] {
			t.Fatalf("duplicate agent id %q", cfg.ID)
		}
		seen[cfg.ID] = true
	}

	if len(reg.List()) != 5 {
		t.Errorf("List returned %d agents, want 5", len(reg.List()))
	}
}

func TestSaveValidation(t *testing.T) {
	reg := newTestRegistry(t)

	noName := validAgentDraft()
	noName.Name = ""
	if _, err := reg.Save(noName); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}

	noDocs := validAgentDraft()
	noDocs.Docs = nil
	if _, err := reg.Save(noDocs); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty docs, got %v", err)
	}
}

func TestDeleteAbsentAgent(t *testing.T) {
	reg := newTestRegistry(t)

	removed, err := reg.Delete("agent_nope")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Error("deleting an absent agent should return false")
	}
}

func TestDeleteRemovesAgent(t *testing.T) {
	reg := newTestRegistry(t)

	cfg, err := reg.Save(validAgentDraft())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	removed, err := reg.Delete(cfg.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("expected agent to be removed")
	}
	if reg.Get(cfg.ID) != nil {
		t.Error("deleted agent still present")
	}
}

func TestRegistryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_agents.json")

	reg, err := Open(path)
	if err != nil {
		t.Fatalf("opening registry: %v", err)
	}
	cfg, err := reg.Save(validAgentDraft())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening registry: %v", err)
	}
	got := reopened.Get(cfg.ID)
	if got == nil {
		t.Fatal("agent lost on reopen")
	}
	if got.Name != cfg.Name || len(got.Docs) != 1 {
		t.Errorf("agent altered on reopen: %+v", got)
	}
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_agents.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seeding corrupt file: %v", err)
	}

	reg, err := Open(path)
	if err != nil {
		t.Fatalf("Open should self-heal, got %v", err)
	}
	if len(reg.List()) != 0 {
		t.Errorf("expected empty registry, got %d agents", len(reg.List()))
	}
}

// fakeIndex satisfies vectordb.Index for resolution tests.
type fakeIndex struct{ path string }

func (f *fakeIndex) Add(context.Context, []vectordb.Chunk) error { return nil }
func (f *fakeIndex) Retrieve(context.Context, string, int) ([]vectordb.Retrieved, error) {
	return nil, nil
}
func (f *fakeIndex) Persist(context.Context, string) error { return nil }
func (f *fakeIndex) Count() int                            { return 1 }

func fakeOpener(path string) (vectordb.Index, error) {
	return &fakeIndex{path: path}, nil
}

// insertDocument registers a library record whose index file exists on disk.
func insertDocument(t *testing.T, lib *library.Registry, dir, title string) string {
	t.Helper()

	indexPath := filepath.Join(dir, title+".gob.gz")
	if err := os.WriteFile(indexPath, []byte("index"), 0o644); err != nil {
		t.Fatalf("writing index file: %v", err)
	}

	id, err := lib.Insert(
		library.Draft{Title: title, Author: "Rivas", Year: 2020, Category: "Matemáticas"},
		library.Artifacts{IndexPath: indexPath, Chunks: 3},
	)
	if err != nil {
		t.Fatalf("inserting document: %v", err)
	}
	return id
}

func TestResolveAttachesLiveIndexes(t *testing.T) {
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "metadata.json"), nil)
	if err != nil {
		t.Fatalf("opening library: %v", err)
	}
	reg := newTestRegistry(t)

	idA := insertDocument(t, lib, dir, "calc")
	idB := insertDocument(t, lib, dir, "algebra")

	draft := validAgentDraft()
	draft.Docs = []DocRef{{Title: "Calc I", ID: idA}, {Title: "Álgebra", ID: idB}}
	cfg, err := reg.Save(draft)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	resolved := reg.Resolve(cfg.ID, lib, fakeOpener)
	if resolved == nil {
		t.Fatal("Resolve returned nil for a saved agent")
	}
	if len(resolved.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(resolved.Sources))
	}
	if !resolved.Usable() {
		t.Error("agent with live indexes should be usable")
	}
}

func TestResolveSkipsMissingReferences(t *testing.T) {
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "metadata.json"), nil)
	if err != nil {
		t.Fatalf("opening library: %v", err)
	}
	reg := newTestRegistry(t)

	idA := insertDocument(t, lib, dir, "calc")

	draft := validAgentDraft()
	draft.Docs = []DocRef{
		{Title: "Calc I", ID: idA},
		{Title: "Fantasma", ID: "deadbeef"}, // never registered
	}
	cfg, err := reg.Save(draft)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	resolved := reg.Resolve(cfg.ID, lib, fakeOpener)
	if resolved == nil {
		t.Fatal("Resolve returned nil")
	}
	if len(resolved.Sources) != 1 {
		t.Errorf("expected 1 surviving source, got %d", len(resolved.Sources))
	}
}

func TestResolveAllReferencesGone(t *testing.T) {
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "metadata.json"), nil)
	if err != nil {
		t.Fatalf("opening library: %v", err)
	}
	reg := newTestRegistry(t)

	draft := validAgentDraft()
	draft.Docs = []DocRef{{Title: "Fantasma", ID: "deadbeef"}}
	cfg, err := reg.Save(draft)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	resolved := reg.Resolve(cfg.ID, lib, fakeOpener)
	if resolved == nil {
		t.Fatal("resolution with zero survivors must still succeed")
	}
	if resolved.Usable() {
		t.Error("agent with no sources must not be usable")
	}
}

func TestResolveUnknownAgent(t *testing.T) {
	dir := t.TempDir()
	lib, err := library.Open(filepath.Join(dir, "metadata.json"), nil)
	if err != nil {
		t.Fatalf("opening library: %v", err)
	}
	reg := newTestRegistry(t)

	if resolved := reg.Resolve("agent_missing", lib, fakeOpener); resolved != nil {
		t.Errorf("expected nil for unknown agent, got %+v", resolved)
	}
}
