package ingest

import (
	"regexp"
	"strings"
)

// Chunker splits extracted text into overlapping chunks sized in
// characters. Splits happen at sentence boundaries where possible so
// chunks stay coherent for embedding.
type Chunker struct {
	size     int
	overlap  int
	splitter *regexp.Regexp
}

// NewChunker creates a chunker with the given target chunk size and
// overlap, both in characters. An invalid size falls back to 1000; an
// invalid overlap falls back to 150 clamped below the size, so the
// overlap always stays smaller than the chunk size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 || overlap >= size {
		overlap = min(150, size/4)
	}
	return &Chunker{
		size:     size,
		overlap:  overlap,
		splitter: regexp.MustCompile(`(?m)(?U)([^.!?\n]+[.!?\n])`),
	}
}

// Split breaks text into chunks of at most size characters, each
// overlapping the previous one by roughly overlap characters. Text with
// no sentence boundaries is split at hard character offsets.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= c.size {
		return []string{text}
	}

	sentences := c.splitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		return c.hardSplit(text)
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var chunks []string
	var current []string
	currentLen := 0

	for i := 0; i < len(sentences); i++ {
		s := sentences[i]
		if s == "" {
			continue
		}
		// Sentences longer than a whole chunk get hard-split on their own.
		if len(s) > c.size {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
				current, currentLen = nil, 0
			}
			chunks = append(chunks, c.hardSplit(s)...)
			continue
		}

		if currentLen+len(s)+1 > c.size && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current, currentLen = c.carryOverlap(current)
		}
		current = append(current, s)
		currentLen += len(s) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// carryOverlap returns the trailing sentences of the finished chunk that
// should seed the next one, up to the overlap budget.
func (c *Chunker) carryOverlap(finished []string) ([]string, int) {
	var carried []string
	carriedLen := 0
	for i := len(finished) - 1; i >= 0; i-- {
		s := finished[i]
		if carriedLen+len(s)+1 > c.overlap {
			break
		}
		carried = append([]string{s}, carried...)
		carriedLen += len(s) + 1
	}
	return carried, carriedLen
}

// hardSplit cuts text at fixed character offsets with overlap.
func (c *Chunker) hardSplit(text string) []string {
	var chunks []string
	step := c.size - c.overlap
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
