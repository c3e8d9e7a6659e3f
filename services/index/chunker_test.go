package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunker_Split(t *testing.T) {
	tests := []struct {
		name      string
		sentences int
		overlap   int
		text      string
		want      []string
	}{
		{
			name:      "single sentence",
			sentences: 3,
			overlap:   1,
			text:      "O SENAI foi criado em 1942.",
			want:      []string{"O SENAI foi criado em 1942."},
		},
		{
			name:      "groups of two no overlap",
			sentences: 2,
			overlap:   0,
			text:      "Primeira. Segunda. Terceira. Quarta.",
			want:      []string{"Primeira. Segunda.", "Terceira. Quarta."},
		},
		{
			name:      "overlap repeats trailing sentence",
			sentences: 2,
			overlap:   1,
			text:      "Primeira. Segunda. Terceira.",
			want:      []string{"Primeira. Segunda.", "Segunda. Terceira."},
		},
		{
			name:      "trailing text without terminator",
			sentences: 2,
			overlap:   0,
			text:      "Primeira. Sem ponto final",
			want:      []string{"Primeira. Sem ponto final"},
		},
		{
			name:      "empty text",
			sentences: 3,
			overlap:   0,
			text:      "   ",
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker := NewChunker(tt.sentences, tt.overlap)
			assert.Equal(t, tt.want, chunker.Split(tt.text))
		})
	}
}

func TestNewChunker_ClampsInvalidValues(t *testing.T) {
	chunker := NewChunker(0, 5)
	assert.Equal(t, 1, chunker.sentences)
	assert.Equal(t, 0, chunker.overlap)
}
