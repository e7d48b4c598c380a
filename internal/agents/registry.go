package agents

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry is the JSON-backed store of saved agents
// (saved_agents.json). Mutations are serialized by a mutex and persist
// a snapshot before touching in-memory state.
type Registry struct {
	mu     sync.RWMutex
	path   string
	agents map[string]Config
}

// Open loads the registry from path. Missing or corrupt files yield an
// empty registry (logged, never fatal).
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating agents directory: %w", err)
	}

	r := &Registry{path: path, agents: map[string]Config{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("agents: reading %s: %v, starting empty", path, err)
		}
		return r, nil
	}

	if err := json.Unmarshal(data, &r.agents); err != nil {
		log.Printf("agents: %s is corrupt (%v), starting empty", path, err)
		r.agents = map[string]Config{}
	}
	return r, nil
}

func (r *Registry) persist(agents map[string]Config) error {
	data, err := json.MarshalIndent(agents, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling agents: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", r.path, err)
	}
	return nil
}

// Save validates the draft, assigns a fresh agent id and persists the
// whole registry. Only the documented subset is stored; callers keep
// any live handles themselves.
func (r *Registry) Save(draft Draft) (*Config, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	cfg := Config{
		ID:            "agent_" + uuid.NewString(),
		Name:          draft.Name,
		Role:          draft.Role,
		Style:         draft.Style,
		DetailLevel:   draft.DetailLevel,
		Temperature:   draft.Temperature,
		MaxTokens:     draft.MaxTokens,
		ContextWindow: draft.ContextWindow,
		Docs:          draft.Docs,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]Config, len(r.agents)+1)
	for k, v := range r.agents {
		snapshot[k] = v
	}
	snapshot[cfg.ID] = cfg

	if err := r.persist(snapshot); err != nil {
		return nil, err
	}
	r.agents[cfg.ID] = cfg

	return &cfg, nil
}

// Get returns the stored config for id, or nil if absent.
func (r *Registry) Get(id string) *Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.agents[id]
	if !ok {
		return nil
	}
	return &cfg
}

// List returns all saved agents ordered by creation time.
func (r *Registry) List() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Config, 0, len(r.agents))
	for _, cfg := range r.agents {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes the agent with the given id. Deleting an absent id
// returns false without touching the registry file.
func (r *Registry) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.agents[id]; !ok {
		return false, nil
	}

	snapshot := make(map[string]Config, len(r.agents)-1)
	for k, v := range r.agents {
		if k != id {
			snapshot[k] = v
		}
	}

	if err := r.persist(snapshot); err != nil {
		return false, err
	}
	delete(r.agents, id)

	return true, nil
}
