package app

import (
	"context"
	"strings"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/prompt"
)

type QuizService struct {
	sessionRepo  SessionStore
	docRepo      DocumentStore
	publisher    AsyncTurnPublisher
	historyCache HistoryCache
	llmClient    CompletionClient
	defaultLLM   ai.ChatConfig
}

func NewQuizService(
	sessionRepo SessionStore,
	docRepo DocumentStore,
	publisher AsyncTurnPublisher,
	historyCache HistoryCache,
	llmClient CompletionClient,
	defaultLLM ai.ChatConfig,
) *QuizService {
	return &QuizService{
		sessionRepo:  sessionRepo,
		docRepo:      docRepo,
		publisher:    publisher,
		historyCache: historyCache,
		llmClient:    llmClient,
		defaultLLM:   defaultLLM,
	}
}

// GenerateQuiz asks the model for exactly one question about the active
// document and appends it to the conversation as an assistant turn. A second
// call is rejected until the quiz flag is cleared by a conversation reset or
// a document replacement.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID, sessionID uint) (*model.Message, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}
	if s.defaultLLM.APIKey == "" || s.defaultLLM.BaseURL == "" || s.defaultLLM.Model == "" {
		return nil, ErrChatDisabled
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.QuizGenerated {
		return nil, ErrQuizAlreadyGenerated
	}

	doc, err := s.docRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNoDocument
	}

	question, err := s.llmClient.Complete(ctx, s.defaultLLM, prompt.QuizMessages(doc.Content))
	if err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		question = "The model returned an empty quiz question."
	}

	quizTurn := &model.Message{
		SessionID: sessionID,
		UserID:    userID,
		Role:      model.RoleAssistant,
		Content:   question,
		CreatedAt: time.Now(),
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	if err := s.publisher.Publish(ctx, *quizTurn); err != nil {
		return nil, ErrMessageEnqueue
	}
	if err := s.sessionRepo.SetQuizGenerated(sessionID, true); err != nil {
		return nil, err
	}
	return quizTurn, nil
}
