package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/markdave123-py/Pagewise/internal/models"
)

var ErrFlashcardParse = errors.New("failed to parse flashcards from agent output")

var fencedJSON = regexp.MustCompile("(?s)```json\n(.*?)```")

// ParseFlashcards pulls the first ```json fenced block out of the agent's
// answer, falling back to the whole answer, and decodes it as a list.
func ParseFlashcards(output string) ([]models.Flashcard, error) {
	payload := strings.TrimSpace(output)
	if m := fencedJSON.FindStringSubmatch(output); m != nil {
		payload = strings.TrimSpace(m[1])
	}

	var cards []models.Flashcard
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFlashcardParse, err)
	}
	if cards == nil {
		return nil, fmt.Errorf("%w: expected a JSON list", ErrFlashcardParse)
	}
	return cards, nil
}
