package app

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"docuchat/internal/extract"
	"docuchat/internal/model"
)

type DocumentService struct {
	sessionRepo  SessionStore
	messageRepo  MessageStore
	docRepo      DocumentStore
	historyCache HistoryCache
}

type UploadInput struct {
	UserID    uint
	SessionID uint
	Filename  string
	Name      string // optional display name; defaults to the filename stem
	Data      []byte
}

func NewDocumentService(
	sessionRepo SessionStore,
	messageRepo MessageStore,
	docRepo DocumentStore,
	historyCache HistoryCache,
) *DocumentService {
	return &DocumentService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		docRepo:      docRepo,
		historyCache: historyCache,
	}
}

// Upload extracts the file's text and installs it as the session's active
// document. Document and conversation live and die together: a successful
// replacement empties the turn log and re-arms the quiz generator. On any
// extraction failure nothing is mutated and the prior document stays active.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*model.Document, error) {
	if input.UserID == 0 || input.SessionID == 0 || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByIDAndUserID(input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	text, err := extract.Extract(input.Data, input.Filename)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.TrimSuffix(input.Filename, filepath.Ext(input.Filename))
		if name == "" {
			name = "Untitled"
		}
	}

	doc := &model.Document{
		SessionID: input.SessionID,
		UserID:    input.UserID,
		Name:      name,
		Format:    strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Filename), ".")),
		Content:   text,
		CreatedAt: time.Now(),
	}
	if err := s.docRepo.Replace(doc); err != nil {
		return nil, err
	}
	if err := s.resetConversationState(ctx, input.SessionID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) Current(userID, sessionID uint) (*model.Document, error) {
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

	doc, err := s.docRepo.GetBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNoDocument
	}
	return doc, nil
}

// Clear removes the active document and, with it, the whole conversation.
func (s *DocumentService) Clear(ctx context.Context, userID, sessionID uint) error {
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

	if err := s.docRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	return s.resetConversationState(ctx, sessionID)
}

func (s *DocumentService) resetConversationState(ctx context.Context, sessionID uint) error {
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
