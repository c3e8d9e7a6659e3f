package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/config"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/repositories/postgres"
	"github.com/provaia/knowledge-backend/services/docstore"
	"github.com/provaia/knowledge-backend/services/faq"
	"github.com/provaia/knowledge-backend/services/index"
	"github.com/provaia/knowledge-backend/services/providers/openai"
	"github.com/provaia/knowledge-backend/services/qa"
	"github.com/provaia/knowledge-backend/services/quiz"
	"github.com/provaia/knowledge-backend/services/retrieval"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	ChatRepo  repositories.ChatRepository
	UsageRepo repositories.UsageRepository
	FAQRepo   repositories.FAQRepository
	QuizRepo  repositories.QuizRepository

	// Knowledge pipeline
	Provider  *openai.Adapter
	Store     *docstore.Store
	Index     *index.Index
	Retriever *retrieval.Engine

	// Domain services
	QA   *qa.Service
	FAQ  *faq.Service
	Quiz *quiz.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	if err := db.InitSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps.ChatRepo = postgres.NewChatRepository(db, logger)
	deps.UsageRepo = postgres.NewUsageRepository(db, logger)
	deps.FAQRepo = postgres.NewFAQRepository(db, logger)
	deps.QuizRepo = postgres.NewQuizRepository(db, logger)

	deps.Provider = openai.NewAdapter(cfg.OpenAI)

	store, err := docstore.NewStore(cfg.Knowledge.DocumentsDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document store: %w", err)
	}
	deps.Store = store

	chunker := index.NewChunker(cfg.Knowledge.ChunkSentences, cfg.Knowledge.ChunkOverlap)
	deps.Index = index.NewIndex(store, deps.Provider, chunker, logger)
	deps.Retriever = retrieval.NewEngine(deps.Index, cfg.Knowledge.MinScore, logger)

	deps.QA = qa.NewService(deps.Retriever, deps.Provider, deps.ChatRepo, deps.UsageRepo, cfg.Knowledge.TopK, logger)
	deps.FAQ = faq.NewService(deps.Retriever, deps.Provider, deps.FAQRepo, cfg.Knowledge.TopK, logger)
	deps.Quiz = quiz.NewService(deps.Retriever, deps.Provider, deps.QuizRepo, cfg.Knowledge.TopK, logger)

	// An empty index is usable; queries just return nothing until documents
	// embed successfully.
	if err := deps.Index.Rebuild(ctx); err != nil {
		logger.Warn("initial index build failed, starting with an empty index", zap.Error(err))
	}

	logger.Info("all dependencies initialized")
	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
