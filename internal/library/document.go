package library

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Record describes one ingested document and points to its derived
// artifacts. The JSON keys match the on-disk metadata.json layout.
type Record struct {
	ID           string   `json:"hash"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	Year         int      `json:"year"`
	Language     string   `json:"language"`
	Category     string   `json:"category"`
	Type         string   `json:"type"`
	Level        string   `json:"level"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	Pages        int      `json:"pages"`
	Chunks       int      `json:"chunks"`
	FileSize     int64    `json:"file_size"`
	OriginalPath string   `json:"original_path"`
	IndexPath    string   `json:"vectorstore_path"`
	PreviewPath  string   `json:"preview_path,omitempty"`
	ProcessedAt  string   `json:"processed_date"`
}

// Draft is the user-supplied metadata for a document before ingestion
// completes. Title, Author and Year are mandatory since they determine
// the document's identity.
type Draft struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Year        int      `json:"year"`
	Language    string   `json:"language"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Level       string   `json:"level"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Artifacts references the derived outputs produced by ingestion.
type Artifacts struct {
	IndexPath    string
	OriginalPath string
	PreviewPath  string
	Pages        int
	Chunks       int
	FileSize     int64
}

// ComputeID derives the stable document identifier from the identity
// triple. The same triple always yields the same id; the sha256 hex
// digest is filename-safe and collision-resistant.
func ComputeID(title, author string, year int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s_%d", title, author, year)))
	return hex.EncodeToString(sum[:])
}
