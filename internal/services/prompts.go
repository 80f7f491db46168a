package services

import (
	"fmt"
	"strings"
)

// Kind is one of the three study actions.
type Kind string

const (
	KindSummary    Kind = "summary"
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
)

// ParseKind accepts the path segment used by the HTTP routes.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindSummary, KindQuiz, KindFlashcards:
		return k, true
	}
	return "", false
}

// Label is the human-readable action name used in status messages.
func (k Kind) Label() string {
	switch k {
	case KindQuiz:
		return "quiz"
	case KindFlashcards:
		return "flashcards"
	default:
		return "summary"
	}
}

// DefaultPrompt is prefilled in the UI and used when the user leaves it empty.
func DefaultPrompt(k Kind) string {
	switch k {
	case KindQuiz:
		return "Create a 5-question mixed-style quiz (MCQs and short answer)."
	case KindFlashcards:
		return "Generate 5-7 flashcards with a main topic and 3-5 key points for each, in JSON format."
	default:
		return "Summarize this PDF."
	}
}

const flashcardFormat = "The JSON output should be a list of dictionaries, where each dictionary has a 'topic' (string) and 'key_points' (list of strings). " +
	"Example JSON format: " +
	"```json\n" +
	"[\n" +
	"  {\"topic\": \"Main Topic 1\", \"key_points\": [\"Point 1.1\", \"Point 1.2\"]},\n" +
	"  {\"topic\": \"Main Topic 2\", \"key_points\": [\"Point 2.1\", \"Point 2.2\", \"Point 2.3\"]}\n" +
	"]\n" +
	"```"

// BuildPrompt embeds the user's request and the document path into the
// instruction sent to the agent.
func BuildPrompt(k Kind, userPrompt, path string) string {
	if strings.TrimSpace(userPrompt) == "" {
		userPrompt = DefaultPrompt(k)
	}
	switch k {
	case KindQuiz:
		return fmt.Sprintf("%s Extract text from the PDF at the following path and then create a quiz from it: %s", userPrompt, path)
	case KindFlashcards:
		return fmt.Sprintf("%s Extract text from the PDF at the following path: %s. %s", userPrompt, path, flashcardFormat)
	default:
		return fmt.Sprintf("%s Extract text from the PDF at the following path and then summarize it: %s", userPrompt, path)
	}
}
