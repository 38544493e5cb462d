// Package prompt builds the exact message sequence submitted to the
// completion endpoint. Output is deterministic for identical inputs.
package prompt

import (
	"fmt"

	"docuchat/internal/ai"
)

const (
	firstTurnTemplate = "Here is the content of the document: %s\n\n---\n\n%s"

	ongoingSystemTemplate = "You are a helpful assistant. Answer the user's questions using only the " +
		"content of the document below.\n\nDocument content:\n%s"

	quizSystemTemplate = "You are an experienced educator. Using only the content of the document " +
		"below, write exactly one quiz question for the student. The question may be multiple-choice " +
		"or free-form. Do not reveal the answer.\n\nDocument content:\n%s"

	quizUserTurn = "Please give me one quiz question about the document."
)

// Assemble produces the ordered message list for one ask-question exchange.
//
// On the first exchange for a document the whole document is inlined into a
// single user turn, with no system role. On later exchanges the document
// moves into a system turn, prior history is replayed in order, and the new
// question goes last. The document text is always carried verbatim; any size
// limit is the gateway's problem, not ours.
func Assemble(docContent string, history []ai.ChatMessage, question string) []ai.ChatMessage {
	if len(history) == 0 {
		return []ai.ChatMessage{{
			Role:    "user",
			Content: fmt.Sprintf(firstTurnTemplate, docContent, question),
		}}
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(ongoingSystemTemplate, docContent),
	})
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{
		Role:    "user",
		Content: question,
	})
	return messages
}

// QuizMessages produces the one-shot message list for quiz generation.
func QuizMessages(docContent string) []ai.ChatMessage {
	return []ai.ChatMessage{
		{
			Role:    "system",
			Content: fmt.Sprintf(quizSystemTemplate, docContent),
		},
		{
			Role:    "user",
			Content: quizUserTurn,
		},
	}
}
