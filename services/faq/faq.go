package faq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/repositories"
	"github.com/provaia/knowledge-backend/services"
	"github.com/provaia/knowledge-backend/services/extract"
	"github.com/provaia/knowledge-backend/services/providers"
	"github.com/provaia/knowledge-backend/services/qa"
	"github.com/provaia/knowledge-backend/services/retrieval"
)

// fallbackSource labels items generated without any retrievable grounding.
const fallbackSource = "base de conhecimento geral"

const (
	defaultItems = 5
	maxItems     = 20
)

// Service generates FAQ items about a topic from the knowledge base.
type Service struct {
	retriever qa.ContextRetriever
	provider  providers.CompletionProvider
	repo      repositories.FAQRepository
	topK      int
	logger    *zap.Logger
}

// NewService creates an FAQ generation service.
func NewService(
	retriever qa.ContextRetriever,
	provider providers.CompletionProvider,
	repo repositories.FAQRepository,
	topK int,
	logger *zap.Logger,
) *Service {
	return &Service{
		retriever: retriever,
		provider:  provider,
		repo:      repo,
		topK:      topK,
		logger:    logger,
	}
}

type generatedItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Generate asks the provider for numItems question/answer pairs about topic,
// grounds each item's source on the retrieval engine, persists and returns
// them. Items missing a question or answer are skipped.
func (s *Service) Generate(ctx context.Context, topic string, numItems int) ([]*models.FAQItem, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "topic cannot be empty", nil)
	}
	if numItems <= 0 {
		numItems = defaultItems
	}
	if numItems > maxItems {
		numItems = maxItems
	}

	fragments, err := s.retriever.RelevantContext(ctx, topic, s.topK)
	if err != nil {
		return nil, err
	}

	completion, err := s.provider.Complete(ctx, buildPrompt(topic, numItems, fragments))
	if err != nil {
		return nil, services.WrapGeneration("faq generation failed", err)
	}

	rawItems, err := extract.Parse(completion.Text)
	if err != nil {
		return nil, err
	}

	var items []*models.FAQItem
	for _, raw := range rawItems {
		var gen generatedItem
		if err := json.Unmarshal(raw, &gen); err != nil {
			s.logger.Warn("skipping undecodable faq item", zap.Error(err))
			continue
		}

		gen.Question = strings.TrimSpace(gen.Question)
		gen.Answer = strings.TrimSpace(gen.Answer)
		if gen.Question == "" || gen.Answer == "" {
			continue
		}

		items = append(items, models.NewFAQItem(gen.Question, gen.Answer, s.itemSource(ctx, gen.Question)))
	}

	if len(items) == 0 {
		return nil, services.NewDomainError(services.ErrorTypeMalformed, "model produced no usable faq items", nil).
			WithDetail("raw", completion.Text)
	}

	for _, item := range items {
		if err := s.repo.Create(ctx, item); err != nil {
			return nil, services.WrapError(services.ErrorTypePersistence, "failed to persist faq item", err)
		}
	}

	s.logger.Info("faq generated",
		zap.String("topic", topic),
		zap.Int("items", len(items)),
		zap.Int("tokens_used", completion.TokensUsed))
	return items, nil
}

// GetAll returns every FAQ item newest first.
func (s *Service) GetAll(ctx context.Context) ([]*models.FAQItem, error) {
	return s.repo.GetAll(ctx)
}

// Delete removes one FAQ item.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// DeleteAll removes every FAQ item.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.repo.DeleteAll(ctx)
}

// itemSource picks the most relevant fragment for an item's question, falling
// back to a generic label when retrieval has nothing.
func (s *Service) itemSource(ctx context.Context, question string) string {
	fragments, err := s.retriever.RelevantContext(ctx, question, 1)
	if err != nil || len(fragments) == 0 {
		return fallbackSource
	}

	source := fragments[0]
	if len(source) > 200 {
		source = source[:200] + "..."
	}
	return source
}

func buildPrompt(topic string, numItems int, fragments []string) string {
	var sb strings.Builder
	sb.WriteString("Gere perguntas frequentes sobre o tema a seguir usando o contexto fornecido.\n\n")

	if len(fragments) == 0 {
		sb.WriteString("Contexto: ")
		sb.WriteString(retrieval.NoContextMarker)
		sb.WriteString("\n")
	} else {
		sb.WriteString("Contexto:\n")
		for i, fragment := range fragments {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, fragment)
		}
	}

	fmt.Fprintf(&sb, "\nTema: %s\n\n", topic)
	fmt.Fprintf(&sb, "Responda APENAS com um array JSON de %d objetos no formato ", numItems)
	sb.WriteString(`[{"question": "...", "answer": "..."}] sem texto adicional.`)
	return sb.String()
}
