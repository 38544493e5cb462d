package app

import (
	"context"
	"strings"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/prompt"
)

type ChatService struct {
	sessionRepo  SessionStore
	messageRepo  MessageStore
	docRepo      DocumentStore
	publisher    AsyncTurnPublisher
	historyCache HistoryCache
	llmClient    CompletionClient
	defaultLLM   ai.ChatConfig
}

type CreateSessionInput struct {
	UserID uint
	Title  string
}

type AskInput struct {
	UserID    uint
	SessionID uint
	Content   string
	LLM       LLMOverride
}

type LLMOverride struct {
	BaseURL string
	APIKey  string
	Model   string
}

type LLMRequestLog struct {
	BaseURL      string           `json:"base_url"`
	Model        string           `json:"model"`
	APIKeyMasked string           `json:"api_key_masked"`
	Messages     []ai.ChatMessage `json:"messages"`
}

type AskResult struct {
	Messages   []model.Message `json:"messages"`
	LLMRequest LLMRequestLog   `json:"llm_request"`
}

func NewChatService(
	sessionRepo SessionStore,
	messageRepo MessageStore,
	docRepo DocumentStore,
	publisher AsyncTurnPublisher,
	historyCache HistoryCache,
	llmClient CompletionClient,
	defaultLLM ai.ChatConfig,
) *ChatService {
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		docRepo:      docRepo,
		publisher:    publisher,
		historyCache: historyCache,
		llmClient:    llmClient,
		defaultLLM:   defaultLLM,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.Session, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.Session{
		UserID: input.UserID,
		Title:  title,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions(userID uint) ([]model.Session, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.sessionRepo.ListByUserID(userID)
}

func (s *ChatService) DeleteSession(ctx context.Context, userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.docRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByIDAndUserID(sessionID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	return nil
}

// Ask runs one non-streamed question/answer exchange. The user turn is
// committed to the conversation only after the completion call succeeds, so
// a gateway failure leaves the log without an orphaned question.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	exchange, err := s.prepareExchange(input)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmClient.Complete(ctx, exchange.cfg, exchange.promptMessages)
	if err != nil {
		return nil, err
	}

	userMsg, assistantMsg, err := s.commitExchange(ctx, input, answer)
	if err != nil {
		return nil, err
	}

	return &AskResult{
		Messages: []model.Message{*userMsg, *assistantMsg},
		LLMRequest: LLMRequestLog{
			BaseURL:      exchange.cfg.BaseURL,
			Model:        exchange.cfg.Model,
			APIKeyMasked: maskSecret(exchange.cfg.APIKey),
			Messages:     exchange.promptMessages,
		},
	}, nil
}

// StreamAsk is Ask with incremental output: onChunk fires per fragment and
// the collected text becomes the stored assistant turn.
func (s *ChatService) StreamAsk(ctx context.Context, input AskInput, onChunk func(string) error) (string, error) {
	exchange, err := s.prepareExchange(input)
	if err != nil {
		return "", err
	}

	full, err := s.llmClient.StreamComplete(ctx, exchange.cfg, exchange.promptMessages, onChunk)
	if err != nil {
		return "", err
	}

	if _, _, err := s.commitExchange(ctx, input, full); err != nil {
		return "", err
	}
	return strings.TrimSpace(full), nil
}

func (s *ChatService) History(ctx context.Context, userID, sessionID uint, limit int) ([]model.Message, error) {
	if userID == 0 || sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	// The cache always holds the full log so a limited read cannot poison it.
	messages, err := s.messageRepo.ListBySessionID(sessionID, 0)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return trimMessages(messages, limit), nil
}

// ResetConversation empties the session's turn log and re-arms the quiz
// generator; the active document stays.
func (s *ChatService) ResetConversation(ctx context.Context, userID, sessionID uint) error {
	if userID == 0 || sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByIDAndUserID(sessionID, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.SetQuizGenerated(sessionID, false); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	return nil
}

type preparedExchange struct {
	cfg            ai.ChatConfig
	promptMessages []ai.ChatMessage
}

func (s *ChatService) prepareExchange(input AskInput) (*preparedExchange, error) {
	if input.UserID == 0 || input.SessionID == 0 {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	session, err := s.sessionRepo.GetByIDAndUserID(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	doc, err := s.docRepo.GetBySessionID(input.SessionID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNoDocument
	}

	cfg, err := s.resolveLLM(input.LLM)
	if err != nil {
		return nil, err
	}

	history, err := s.messageRepo.ListBySessionID(input.SessionID, 0)
	if err != nil {
		return nil, err
	}

	return &preparedExchange{
		cfg:            cfg,
		promptMessages: prompt.Assemble(doc.Content, toChatMessages(history), content),
	}, nil
}

func (s *ChatService) commitExchange(ctx context.Context, input AskInput, answer string) (*model.Message, *model.Message, error) {
	if s.publisher == nil {
		return nil, nil, ErrMessageEnqueue
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "The model returned an empty response."
	}

	now := time.Now()
	userMsg := &model.Message{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      model.RoleUser,
		Content:   strings.TrimSpace(input.Content),
		CreatedAt: now,
	}
	assistantMsg := &model.Message{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Role:      model.RoleAssistant,
		Content:   answer,
		CreatedAt: now,
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, input.SessionID)
		_ = s.historyCache.DeleteHistory(ctx, input.SessionID)
	}
	if err := s.publisher.Publish(ctx, *userMsg); err != nil {
		return nil, nil, ErrMessageEnqueue
	}
	if err := s.publisher.Publish(ctx, *assistantMsg); err != nil {
		return nil, nil, ErrMessageEnqueue
	}
	return userMsg, assistantMsg, nil
}

func (s *ChatService) resolveLLM(override LLMOverride) (ai.ChatConfig, error) {
	cfg := s.defaultLLM
	if strings.TrimSpace(override.BaseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(override.BaseURL)
	}
	if strings.TrimSpace(override.APIKey) != "" {
		cfg.APIKey = strings.TrimSpace(override.APIKey)
	}
	if strings.TrimSpace(override.Model) != "" {
		cfg.Model = strings.TrimSpace(override.Model)
	}
	if cfg.BaseURL == "" || cfg.APIKey == "" || cfg.Model == "" {
		return ai.ChatConfig{}, ErrChatDisabled
	}
	return cfg, nil
}

func toChatMessages(messages []model.Message) []ai.ChatMessage {
	out := make([]ai.ChatMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = model.RoleUser
		}
		out = append(out, ai.ChatMessage{Role: role, Content: m.Content})
	}
	return out
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
