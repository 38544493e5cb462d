package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

type chatFixture struct {
	sessions  *fakeSessionStore
	messages  *fakeMessageStore
	docs      *fakeDocumentStore
	llm       *fakeLLM
	svc       *ChatService
	sessionID uint
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	sessions := newFakeSessionStore()
	messages := newFakeMessageStore()
	docs := newFakeDocumentStore()
	llm := &fakeLLM{answer: "an answer"}
	publisher := &fakePublisher{store: messages}

	svc := NewChatService(sessions, messages, docs, publisher, nil, llm, ai.ChatConfig{
		BaseURL: "https://llm.example/v1",
		APIKey:  "sk-test",
		Model:   "test-model",
	})

	session, err := svc.CreateSession(CreateSessionInput{UserID: 1, Title: "t"})
	require.NoError(t, err)

	require.NoError(t, docs.Replace(&model.Document{
		SessionID: session.ID,
		UserID:    1,
		Name:      "doc",
		Format:    "txt",
		Content:   "the document text",
	}))

	return &chatFixture{
		sessions:  sessions,
		messages:  messages,
		docs:      docs,
		llm:       llm,
		svc:       svc,
		sessionID: session.ID,
	}
}

func (f *chatFixture) ask(t *testing.T, content string) *AskResult {
	t.Helper()
	result, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: content})
	require.NoError(t, err)
	return result
}

func TestAskFirstExchangeInlinesDocumentInUserTurn(t *testing.T) {
	f := newChatFixture(t)

	f.ask(t, "What is this about?")

	require.Len(t, f.llm.gotCalls, 1)
	promptMessages := f.llm.gotCalls[0]
	require.Len(t, promptMessages, 1)
	assert.Equal(t, "user", promptMessages[0].Role)
	assert.Contains(t, promptMessages[0].Content, "the document text")
	assert.Contains(t, promptMessages[0].Content, "What is this about?")
}

func TestAskOngoingExchangeUsesSystemTurnAndReplaysHistory(t *testing.T) {
	f := newChatFixture(t)

	f.ask(t, "first question")
	f.ask(t, "second question")

	require.Len(t, f.llm.gotCalls, 2)
	promptMessages := f.llm.gotCalls[1]

	// system + 2 prior turns + new user turn
	require.Len(t, promptMessages, 4)
	assert.Equal(t, "system", promptMessages[0].Role)
	assert.Contains(t, promptMessages[0].Content, "the document text")
	assert.Equal(t, "first question", promptMessages[1].Content)
	assert.Equal(t, "an answer", promptMessages[2].Content)
	assert.Equal(t, ai.ChatMessage{Role: "user", Content: "second question"}, promptMessages[3])
}

func TestTwoQuestionsLeaveFourOrderedTurns(t *testing.T) {
	f := newChatFixture(t)

	f.ask(t, "q1")
	f.ask(t, "q2")

	stored, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)
	require.Len(t, stored, 4)

	roles := []string{stored[0].Role, stored[1].Role, stored[2].Role, stored[3].Role}
	assert.Equal(t, []string{"user", "assistant", "user", "assistant"}, roles)
	assert.Equal(t, "q1", stored[0].Content)
	assert.Equal(t, "q2", stored[2].Content)
}

func TestGatewayErrorLeavesConversationUntouched(t *testing.T) {
	f := newChatFixture(t)
	f.ask(t, "q1")
	before, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)

	f.llm.err = &ai.GatewayError{StatusCode: 429, Err: errFakeGateway}
	_, askErr := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "q2"})
	require.Error(t, askErr)

	var gatewayErr *ai.GatewayError
	assert.ErrorAs(t, askErr, &gatewayErr)

	after, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a failed completion must not orphan the user turn")
}

func TestStreamAskCollectsChunksIntoStoredTurn(t *testing.T) {
	f := newChatFixture(t)
	f.llm.chunks = []string{"Alice ", "is ", "30."}

	var received string
	full, err := f.svc.StreamAsk(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "age?"},
		func(chunk string) error {
			received += chunk
			return nil
		})
	require.NoError(t, err)

	assert.Equal(t, "Alice is 30.", full)
	assert.Equal(t, "Alice is 30.", received)

	stored, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Alice is 30.", stored[1].Content)
}

func TestAskWithoutDocument(t *testing.T) {
	f := newChatFixture(t)
	require.NoError(t, f.docs.DeleteBySessionID(f.sessionID))

	_, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "q"})
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestAskEmptyContent(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "   "})
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestAskUnknownSession(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: 999, Content: "q"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAskWithoutAPIKey(t *testing.T) {
	f := newChatFixture(t)
	f.svc.defaultLLM.APIKey = ""

	_, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "q"})
	assert.ErrorIs(t, err, ErrChatDisabled)
}

func TestResetConversationClearsTurnsAndQuizFlag(t *testing.T) {
	f := newChatFixture(t)
	f.ask(t, "q1")
	require.NoError(t, f.sessions.SetQuizGenerated(f.sessionID, true))

	require.NoError(t, f.svc.ResetConversation(context.Background(), 1, f.sessionID))

	stored, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)

	session, err := f.sessions.GetByIDAndUserID(f.sessionID, 1)
	require.NoError(t, err)
	assert.False(t, session.QuizGenerated)

	doc, err := f.docs.GetBySessionID(f.sessionID)
	require.NoError(t, err)
	assert.NotNil(t, doc, "reset keeps the active document")
}

func TestDeleteSessionRemovesDocumentAndTurns(t *testing.T) {
	f := newChatFixture(t)
	f.ask(t, "q1")

	require.NoError(t, f.svc.DeleteSession(context.Background(), 1, f.sessionID))

	stored, err := f.messages.ListBySessionID(f.sessionID, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)

	doc, err := f.docs.GetBySessionID(f.sessionID)
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestHistoryReturnsOrderedTurnsAndHonorsLimit(t *testing.T) {
	f := newChatFixture(t)
	f.ask(t, "q1")
	f.ask(t, "q2")

	all, err := f.svc.History(context.Background(), 1, f.sessionID, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "q1", all[0].Content)

	// limit keeps the most recent turns
	tail, err := f.svc.History(context.Background(), 1, f.sessionID, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "q2", tail[0].Content)
	assert.Equal(t, "an answer", tail[1].Content)
}

func TestEnqueueFailureSurfacesAsEnqueueError(t *testing.T) {
	f := newChatFixture(t)
	f.svc.publisher = &fakePublisher{store: f.messages, err: errFakeGateway}

	_, err := f.svc.Ask(context.Background(), AskInput{UserID: 1, SessionID: f.sessionID, Content: "q"})
	assert.ErrorIs(t, err, ErrMessageEnqueue)
}
