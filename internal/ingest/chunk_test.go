package ingest

import (
	"strings"
	"testing"
)

func TestChunkerEmptyText(t *testing.T) {
	c := NewChunker(1000, 150)
	if chunks := c.Split("   \n  "); chunks != nil {
		t.Errorf("expected nil for blank text, got %v", chunks)
	}
}

func TestChunkerShortTextSingleChunk(t *testing.T) {
	c := NewChunker(1000, 150)
	chunks := c.Split("Una sola oración corta.")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Una sola oración corta." {
		t.Errorf("chunk altered: %q", chunks[0])
	}
}

func TestChunkerRespectsSize(t *testing.T) {
	c := NewChunker(200, 50)

	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Esta es una oración de prueba con suficiente longitud. ")
	}

	chunks := c.Split(b.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Errorf("chunk %d exceeds size: %d chars", i, len(chunk))
		}
	}
}

func TestChunkerOverlapCarriesText(t *testing.T) {
	c := NewChunker(120, 60)

	text := "Primera oración del documento. Segunda oración del documento. Tercera oración del documento. Cuarta oración del documento. Quinta oración del documento."
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The last sentence of each chunk should reappear at the start of the next.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		lastSentence := prev[strings.LastIndex(strings.TrimSuffix(prev, "."), ".")+1:]
		lastSentence = strings.TrimSpace(lastSentence)
		if lastSentence != "" && !strings.HasPrefix(chunks[i], lastSentence) {
			t.Errorf("chunk %d does not start with overlap %q: %q", i, lastSentence, chunks[i])
		}
	}
}

func TestChunkerNoSentenceBoundaries(t *testing.T) {
	c := NewChunker(100, 20)

	text := strings.Repeat("abcdefghij", 50) // 500 chars, no punctuation
	chunks := c.Split(text)
	if len(chunks) < 5 {
		t.Fatalf("expected hard-split chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds size: %d chars", i, len(chunk))
		}
	}
}

func TestChunkerInvalidConfigFallsBack(t *testing.T) {
	c := NewChunker(0, -5)
	if c.size != 1000 || c.overlap != 150 {
		t.Errorf("expected defaults 1000/150, got %d/%d", c.size, c.overlap)
	}
}

func TestChunkerOverlapFallbackStaysBelowSmallSize(t *testing.T) {
	c := NewChunker(100, 200)
	if c.overlap >= c.size {
		t.Fatalf("overlap %d not clamped below size %d", c.overlap, c.size)
	}

	// Boundary-free text forces hard splits, which require a positive step.
	chunks := c.Split(strings.Repeat("a", 500))
	if len(chunks) < 5 {
		t.Fatalf("expected hard-split chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > 100 {
			t.Errorf("chunk %d exceeds size: %d chars", i, len(chunk))
		}
	}
}
