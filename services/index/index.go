package index

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services"
	"github.com/provaia/knowledge-backend/services/providers"
)

// DocumentSource is the document store surface the index depends on.
type DocumentSource interface {
	List(ctx context.Context) (map[string]string, error)
	Fingerprint(ctx context.Context) (string, error)
}

// Scored is one chunk returned by a similarity query.
type Scored struct {
	Document string
	Chunk    int
	Text     string
	Score    float64
}

type entry struct {
	document string
	chunk    int
	text     string
	vector   []float64
}

// snapshot is an immutable view of the indexed corpus. Queries read whatever
// snapshot is current; Rebuild swaps in a complete replacement.
type snapshot struct {
	fingerprint string
	entries     []entry
}

// Index embeds document chunks and answers cosine-similarity queries against
// an atomically swapped in-memory snapshot.
type Index struct {
	source   DocumentSource
	embedder providers.EmbeddingProvider
	chunker  *Chunker
	logger   *zap.Logger

	current   atomic.Pointer[snapshot]
	rebuildMu sync.Mutex
	stale     atomic.Bool
}

// NewIndex creates an index over the given document source. The index starts
// empty; call Rebuild to populate it.
func NewIndex(source DocumentSource, embedder providers.EmbeddingProvider, chunker *Chunker, logger *zap.Logger) *Index {
	return &Index{
		source:   source,
		embedder: embedder,
		chunker:  chunker,
		logger:   logger,
	}
}

// Rebuild lists the document source, chunks and embeds everything, and swaps
// the finished snapshot in. On any failure the previous snapshot stays in
// place and queries keep serving it.
func (idx *Index) Rebuild(ctx context.Context) error {
	idx.rebuildMu.Lock()
	defer idx.rebuildMu.Unlock()

	fingerprint, err := idx.source.Fingerprint(ctx)
	if err != nil {
		idx.stale.Store(true)
		return services.WrapError(services.ErrorTypeIndex, "failed to fingerprint documents", err)
	}

	docs, err := idx.source.List(ctx)
	if err != nil {
		idx.stale.Store(true)
		return services.WrapError(services.ErrorTypeIndex, "failed to list documents", err)
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []entry
	for _, name := range names {
		for i, text := range idx.chunker.Split(docs[name]) {
			vector, err := idx.embedder.Embed(ctx, text)
			if err != nil {
				idx.stale.Store(true)
				idx.logger.Error("embedding failed, keeping previous snapshot",
					zap.String("document", name),
					zap.Int("chunk", i),
					zap.Error(err))
				return services.WrapError(services.ErrorTypeIndex, "failed to embed document chunk", err)
			}
			entries = append(entries, entry{document: name, chunk: i, text: text, vector: vector})
		}
	}

	idx.current.Store(&snapshot{fingerprint: fingerprint, entries: entries})
	idx.stale.Store(false)

	idx.logger.Info("index rebuilt",
		zap.Int("documents", len(names)),
		zap.Int("chunks", len(entries)),
		zap.String("fingerprint", fingerprint))
	return nil
}

// Query embeds the text and returns the k most similar chunks, highest score
// first. Ties keep document order then chunk order. A never-built index
// returns an empty result without error.
func (idx *Index) Query(ctx context.Context, text string, k int) ([]Scored, error) {
	snap := idx.current.Load()
	if snap == nil || len(snap.entries) == 0 {
		return nil, nil
	}
	if idx.stale.Load() {
		idx.logger.Warn("serving results from a stale snapshot",
			zap.String("fingerprint", snap.fingerprint))
	}

	queryVec, err := idx.embedder.Embed(ctx, text)
	if err != nil {
		return nil, services.WrapError(services.ErrorTypeIndex, "failed to embed query", err)
	}

	scored := make([]Scored, len(snap.entries))
	for i, e := range snap.entries {
		scored[i] = Scored{
			Document: e.document,
			Chunk:    e.chunk,
			Text:     e.text,
			Score:    cosineSimilarity(queryVec, e.vector),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k > 0 && len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

// RefreshIfStale rebuilds only when the document source's fingerprint no
// longer matches the current snapshot.
func (idx *Index) RefreshIfStale(ctx context.Context) error {
	fingerprint, err := idx.source.Fingerprint(ctx)
	if err != nil {
		return services.WrapError(services.ErrorTypeIndex, "failed to fingerprint documents", err)
	}

	snap := idx.current.Load()
	if snap != nil && snap.fingerprint == fingerprint && !idx.stale.Load() {
		return nil
	}
	return idx.Rebuild(ctx)
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has zero magnitude or the dimensions differ.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
