package app

import (
	"context"
	"errors"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrSessionNotFound      = errors.New("session not found")
	ErrNoDocument           = errors.New("no document uploaded for this session")
	ErrMessageEmpty         = errors.New("message content is empty")
	ErrChatDisabled         = errors.New("chat is disabled: no completion API key configured")
	ErrMessageEnqueue       = errors.New("message enqueue failed")
	ErrQuizAlreadyGenerated = errors.New("quiz already generated for this document")
)

// UserStore, SessionStore, MessageStore and DocumentStore are satisfied by
// the GORM repositories; tests swap in in-memory fakes.

type UserStore interface {
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
}

type SessionStore interface {
	Create(session *model.Session) error
	ListByUserID(userID uint) ([]model.Session, error)
	GetByIDAndUserID(sessionID, userID uint) (*model.Session, error)
	DeleteByIDAndUserID(sessionID, userID uint) error
	SetQuizGenerated(sessionID uint, generated bool) error
}

type MessageStore interface {
	ListBySessionID(sessionID uint, limit int) ([]model.Message, error)
	DeleteBySessionID(sessionID uint) error
}

type DocumentStore interface {
	Replace(doc *model.Document) error
	GetBySessionID(sessionID uint) (*model.Document, error)
	DeleteBySessionID(sessionID uint) error
}

// AsyncTurnPublisher hands a finished turn to the persistence queue.
type AsyncTurnPublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

// CompletionClient is the completion gateway; *ai.OpenAICompatibleClient in
// production, a scripted fake in tests.
type CompletionClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}
