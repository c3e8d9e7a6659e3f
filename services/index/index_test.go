package index

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services"
)

// stubEmbedder maps text onto a fixed keyword-count vector so similarity is
// deterministic in tests.
type stubEmbedder struct {
	mu      sync.Mutex
	calls   int
	failAt  int
	failErr error
}

var keywords = []string{"senai", "1942", "curso", "soldagem", "mecatronica"}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if s.failAt > 0 && call >= s.failAt {
		return nil, s.failErr
	}

	lower := strings.ToLower(text)
	vec := make([]float64, len(keywords))
	for i, kw := range keywords {
		vec[i] = float64(strings.Count(lower, kw))
	}
	return vec, nil
}

type stubSource struct {
	mu   sync.Mutex
	docs map[string]string
}

func (s *stubSource) List(context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.docs))
	for k, v := range s.docs {
		out[k] = v
	}
	return out, nil
}

func (s *stubSource) Fingerprint(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sb strings.Builder
	for k, v := range s.docs {
		sb.WriteString(k)
		sb.WriteString(v)
	}
	// Order-insensitive enough for these tests: combine lengths and count.
	return strings.Repeat("x", len(s.docs)) + "-" + strings.Repeat("y", sb.Len()%97), nil
}

func (s *stubSource) set(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = content
}

func newTestIndex(source *stubSource, embedder *stubEmbedder) *Index {
	return NewIndex(source, embedder, NewChunker(3, 0), zap.NewNop())
}

func TestIndex_Query_ColdStart(t *testing.T) {
	idx := newTestIndex(&stubSource{docs: map[string]string{}}, &stubEmbedder{})

	results, err := idx.Query(context.Background(), "qualquer pergunta", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestIndex_RebuildAndQuery(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"historia.txt": "O SENAI foi criado em 1942.",
		"cursos.txt":   "Oferecemos curso de soldagem. Tambem curso de mecatronica.",
	}}
	idx := newTestIndex(source, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx))

	results, err := idx.Query(ctx, "Quando o SENAI foi criado? 1942?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "historia.txt", results[0].Document)
	assert.Contains(t, results[0].Text, "1942")
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestIndex_Rebuild_Deterministic(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"b.txt": "Curso de soldagem.",
		"a.txt": "Curso de mecatronica.",
	}}
	idx := newTestIndex(source, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx))
	first, err := idx.Query(ctx, "curso", 10)
	require.NoError(t, err)

	require.NoError(t, idx.Rebuild(ctx))
	second, err := idx.Query(ctx, "curso", 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestIndex_Query_TiesKeepDocumentOrder(t *testing.T) {
	// Identical content scores identically; filename order must break the tie.
	source := &stubSource{docs: map[string]string{
		"b.txt": "Curso de soldagem.",
		"a.txt": "Curso de soldagem.",
	}}
	idx := newTestIndex(source, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx))

	results, err := idx.Query(ctx, "curso soldagem", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.txt", results[0].Document)
	assert.Equal(t, "b.txt", results[1].Document)
}

func TestIndex_Rebuild_EmbedFailureKeepsSnapshot(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"historia.txt": "O SENAI foi criado em 1942.",
	}}
	embedder := &stubEmbedder{}
	idx := newTestIndex(source, embedder)
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx))

	embedder.failAt = embedder.calls + 1
	embedder.failErr = errors.New("provider down")

	err := idx.Rebuild(ctx)
	require.Error(t, err)
	assert.True(t, services.IsIndexError(err))

	// Query embedding must work again for the stale-snapshot read.
	embedder.failAt = 0

	results, err := idx.Query(ctx, "SENAI 1942", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Text, "1942")
}

func TestIndex_RefreshIfStale(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"historia.txt": "O SENAI foi criado em 1942.",
	}}
	embedder := &stubEmbedder{}
	idx := newTestIndex(source, embedder)
	ctx := context.Background()

	require.NoError(t, idx.RefreshIfStale(ctx))
	afterFirst := embedder.calls
	assert.Positive(t, afterFirst)

	// Unchanged source: no embedding work.
	require.NoError(t, idx.RefreshIfStale(ctx))
	assert.Equal(t, afterFirst, embedder.calls)

	// New document triggers a rebuild.
	source.set("cursos.txt", "Curso de soldagem.")
	require.NoError(t, idx.RefreshIfStale(ctx))
	assert.Greater(t, embedder.calls, afterFirst)
}

func TestIndex_ConcurrentRebuildAndQuery(t *testing.T) {
	source := &stubSource{docs: map[string]string{
		"historia.txt": "O SENAI foi criado em 1942. Oferecemos curso de soldagem.",
	}}
	idx := newTestIndex(source, &stubEmbedder{})
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				results, err := idx.Query(ctx, "SENAI", 5)
				assert.NoError(t, err)
				// Every observed snapshot is internally consistent.
				for _, r := range results {
					assert.NotEmpty(t, r.Text)
				}
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				assert.NoError(t, idx.Rebuild(ctx))
			}
		}()
	}
	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(t, cosineSimilarity([]float64{1}, []float64{1, 2}))
}
