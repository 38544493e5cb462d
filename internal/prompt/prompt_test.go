package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/ai"
)

func TestAssembleFirstExchange(t *testing.T) {
	messages := Assemble("the document body", nil, "What is this about?")

	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
	assert.Contains(t, messages[0].Content, "the document body")
	assert.Contains(t, messages[0].Content, "What is this about?")
}

func TestAssembleOngoingConversation(t *testing.T) {
	history := []ai.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "first answer"},
	}

	messages := Assemble("doc text", history, "second question")

	require.Len(t, messages, len(history)+2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "doc text")
	assert.Equal(t, history[0], messages[1])
	assert.Equal(t, history[1], messages[2])
	assert.Equal(t, ai.ChatMessage{Role: "user", Content: "second question"}, messages[3])
}

func TestAssembleCSVScenario(t *testing.T) {
	csvText := "name\tage\nAlice\t30\n"
	messages := Assemble(csvText, nil, "What is Alice's age?")

	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Content, csvText)
	assert.Contains(t, messages[0].Content, "What is Alice's age?")
}

func TestAssembleDeterministic(t *testing.T) {
	history := []ai.ChatMessage{{Role: "user", Content: "q"}, {Role: "assistant", Content: "a"}}
	first := Assemble("doc", history, "next")
	second := Assemble("doc", history, "next")
	assert.Equal(t, first, second)
}

func TestAssembleDoesNotMutateHistory(t *testing.T) {
	history := []ai.ChatMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	}
	snapshot := append([]ai.ChatMessage(nil), history...)

	_ = Assemble("doc", history, "next")
	assert.Equal(t, snapshot, history)
}

func TestQuizMessages(t *testing.T) {
	messages := QuizMessages("quiz source text")

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, "educator")
	assert.Contains(t, messages[0].Content, "quiz source text")
	assert.Equal(t, "user", messages[1].Role)
}
