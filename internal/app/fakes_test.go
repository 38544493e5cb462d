package app

import (
	"context"
	"errors"
	"fmt"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

type fakeSessionStore struct {
	sessions map[uint]*model.Session
	nextID   uint
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uint]*model.Session{}, nextID: 1}
}

func (f *fakeSessionStore) Create(session *model.Session) error {
	session.ID = f.nextID
	f.nextID++
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) ListByUserID(userID uint) ([]model.Session, error) {
	var out []model.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) GetByIDAndUserID(sessionID, userID uint) (*model.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) DeleteByIDAndUserID(sessionID, userID uint) error {
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeSessionStore) SetQuizGenerated(sessionID uint, generated bool) error {
	s, ok := f.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %d not found", sessionID)
	}
	s.QuizGenerated = generated
	return nil
}

type fakeMessageStore struct {
	messages []model.Message
	nextID   uint
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{nextID: 1}
}

func (f *fakeMessageStore) append(msg model.Message) {
	msg.ID = f.nextID
	f.nextID++
	f.messages = append(f.messages, msg)
}

func (f *fakeMessageStore) ListBySessionID(sessionID uint, limit int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMessageStore) DeleteBySessionID(sessionID uint) error {
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.SessionID != sessionID {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeDocumentStore struct {
	docs   map[uint]*model.Document
	nextID uint
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[uint]*model.Document{}, nextID: 1}
}

func (f *fakeDocumentStore) Replace(doc *model.Document) error {
	doc.ID = f.nextID
	f.nextID++
	copied := *doc
	f.docs[doc.SessionID] = &copied
	return nil
}

func (f *fakeDocumentStore) GetBySessionID(sessionID uint) (*model.Document, error) {
	d, ok := f.docs[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDocumentStore) DeleteBySessionID(sessionID uint) error {
	delete(f.docs, sessionID)
	return nil
}

// fakePublisher plays both queue and worker: a published turn lands in the
// message store immediately, as the RabbitMQ consumer would do eventually.
type fakePublisher struct {
	store *fakeMessageStore
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, msg model.Message) error {
	if f.err != nil {
		return f.err
	}
	f.store.append(msg)
	return nil
}

type fakeLLM struct {
	answer   string
	chunks   []string
	err      error
	gotCalls [][]ai.ChatMessage
}

func (f *fakeLLM) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	f.gotCalls = append(f.gotCalls, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeLLM) StreamComplete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	f.gotCalls = append(f.gotCalls, messages)
	if f.err != nil {
		return "", f.err
	}
	full := ""
	for _, c := range f.chunks {
		full += c
		if err := onChunk(c); err != nil {
			return "", err
		}
	}
	return full, nil
}

type fakeUserStore struct {
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(user *model.User) error {
	user.ID = f.nextID
	f.nextID++
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(id uint) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByUsername(username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) GetByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

var errFakeGateway = errors.New("gateway unavailable")
