package activity

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event actions recorded by the library.
const (
	ActionDocumentIngested = "document_ingested"
	ActionAgentCreated     = "agent_created"
	ActionAgentDeleted     = "agent_deleted"
	ActionChatMessage      = "chat_message"
)

// Event is one recorded library action.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Scope     string    `json:"scope"`
	ScopeID   string    `json:"scope_id"`
	Summary   string    `json:"summary"`
}

// Store appends and queries events.
type Store struct {
	db *DB
}

// NewStore creates a store over the given database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Record appends one event. Failures are logged but never surfaced:
// the activity log must not break the operation it describes.
func (s *Store) Record(action, scope, scopeID, summary string) {
	_, err := s.db.Exec(
		`INSERT INTO events (id, action, scope, scope_id, summary) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), action, scope, scopeID, summary,
	)
	if err != nil {
		log.Printf("activity: recording %s: %v", action, err)
	}
}

// Recent returns the latest events, newest first.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, timestamp, action, scope, scope_id, summary
		 FROM events ORDER BY timestamp DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Scope, &e.ScopeID, &e.Summary); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Counts returns the number of recorded events per action.
func (s *Store) Counts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT action, COUNT(*) FROM events GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[action] = n
	}
	return counts, rows.Err()
}
