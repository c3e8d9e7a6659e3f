package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/services/index"
)

// Searcher is the index surface the retrieval engine depends on.
type Searcher interface {
	Query(ctx context.Context, text string, k int) ([]index.Scored, error)
}

// Engine selects the context fragments a question will be answered from.
type Engine struct {
	searcher Searcher
	minScore float64
	logger   *zap.Logger
}

// NewEngine creates a retrieval engine. Fragments scoring below minScore are
// never returned.
func NewEngine(searcher Searcher, minScore float64, logger *zap.Logger) *Engine {
	return &Engine{searcher: searcher, minScore: minScore, logger: logger}
}

// RelevantContext returns up to maxFragments chunk texts relevant to the
// question, most similar first. An empty index or a question with no
// sufficiently similar chunks yields an empty slice without error.
func (e *Engine) RelevantContext(ctx context.Context, question string, maxFragments int) ([]string, error) {
	scored, err := e.searcher.Query(ctx, question, maxFragments)
	if err != nil {
		return nil, err
	}

	fragments := make([]string, 0, len(scored))
	for _, s := range scored {
		if s.Score < e.minScore {
			continue
		}
		fragments = append(fragments, s.Text)
	}

	e.logger.Debug("context retrieved",
		zap.Int("candidates", len(scored)),
		zap.Int("fragments", len(fragments)))
	return fragments, nil
}
