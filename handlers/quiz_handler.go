package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provaia/knowledge-backend/models"
	"github.com/provaia/knowledge-backend/services/quiz"
	"github.com/provaia/knowledge-backend/utils"
)

// QuizGenerateRequest is the body of POST /api/quiz
type QuizGenerateRequest struct {
	Topic        string `json:"topic" validate:"required,min=1,max=255"`
	NumQuestions int    `json:"num_questions" validate:"gte=0,lte=20"`
}

// QuizAnswerRequest is the body of POST /api/quiz/answer
type QuizAnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid"`
	UserAnswer string `json:"user_answer" validate:"required,min=1"`
}

// QuizListResponse is the body of quiz list/generate responses
type QuizListResponse struct {
	Questions []*models.QuizQuestion `json:"questions"`
	Count     int                    `json:"count"`
}

// QuizHandler handles quiz generation, listing and answer checking
type QuizHandler struct {
	quiz   *quiz.Service
	logger *zap.Logger
}

// NewQuizHandler creates a new QuizHandler
func NewQuizHandler(quizService *quiz.Service, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		quiz:   quizService,
		logger: logger,
	}
}

// HandleGenerate handles POST /api/quiz
func (h *QuizHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req QuizGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	questions, err := h.quiz.Generate(r.Context(), req.Topic, req.NumQuestions)
	if err != nil {
		h.logger.Error("quiz generation failed",
			zap.String("topic", req.Topic),
			zap.Error(err))
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteCreated(w, QuizListResponse{Questions: questions, Count: len(questions)})
}

// HandleList handles GET /api/quiz
func (h *QuizHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	questions, err := h.quiz.GetAll(r.Context())
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []*models.QuizQuestion{}
	}

	_ = utils.WriteOK(w, QuizListResponse{Questions: questions, Count: len(questions)})
}

// HandleListByTopic handles GET /api/quiz/topic/{topic}
func (h *QuizHandler) HandleListByTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	questions, err := h.quiz.GetByTopic(r.Context(), topic)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []*models.QuizQuestion{}
	}

	_ = utils.WriteOK(w, QuizListResponse{Questions: questions, Count: len(questions)})
}

// HandleAnswer handles POST /api/quiz/answer
func (h *QuizHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	var req QuizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		_ = utils.WriteBadRequest(w, "invalid question id", nil)
		return
	}

	result, err := h.quiz.CheckAnswer(r.Context(), questionID, req.UserAnswer)
	if err != nil {
		_ = utils.WriteDomainError(w, err)
		return
	}

	_ = utils.WriteOK(w, result)
}
