package index

import (
	"regexp"
	"strings"
)

var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)

// Chunker splits document text into overlapping groups of sentences so each
// chunk stays small enough to embed while keeping local context.
type Chunker struct {
	sentences int
	overlap   int
}

// NewChunker creates a chunker producing chunks of the given sentence count
// with the given sentence overlap between consecutive chunks. Overlap must be
// smaller than the chunk size.
func NewChunker(sentences, overlap int) *Chunker {
	if sentences < 1 {
		sentences = 1
	}
	if overlap < 0 || overlap >= sentences {
		overlap = 0
	}
	return &Chunker{sentences: sentences, overlap: overlap}
}

// Split breaks text into chunks. Whitespace-only text yields no chunks.
func (c *Chunker) Split(text string) []string {
	parts := sentenceRe.FindAllString(text, -1)

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	if len(sentences) == 0 {
		return nil
	}

	step := c.sentences - c.overlap
	chunks := make([]string, 0, (len(sentences)+step-1)/step)
	for start := 0; start < len(sentences); start += step {
		end := start + c.sentences
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}
	}
	return chunks
}
