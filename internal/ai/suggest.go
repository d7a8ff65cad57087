package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Suggestion is one recommended opportunity idea for a volunteer.
type Suggestion struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
}

// SuggestOpportunities asks the model for opportunity ideas matching the
// volunteer's favorite categories and recent hours. A malformed model reply
// degrades to an empty list, never an error surfaced to the caller.
func SuggestOpportunities(ctx context.Context, client *OllamaClient, categories []string, pastHours float64) ([]Suggestion, error) {
	prompt := fmt.Sprintf(`Suggest 3 volunteer opportunities for a user who likes %s and has completed %g volunteer hours recently.
Return ONLY a JSON object of the form:
{"suggestions": [{"title": "...", "organization": "...", "date": "YYYY-MM-DD"}]}`,
		strings.Join(categories, ", "), pastHours)

	resp, err := client.GenerateCompletion(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return []Suggestion{}, nil
	}
	if parsed.Suggestions == nil {
		return []Suggestion{}, nil
	}
	return parsed.Suggestions, nil
}

// ThankYouNote writes a short note an organization can send a volunteer
// after verifying their proof.
func ThankYouNote(ctx context.Context, client *OllamaClient, userName, opportunity string, hours float64) (string, error) {
	prompt := fmt.Sprintf("Write a short, enthusiastic thank-you note for %s who volunteered %g hours at %s.",
		userName, hours, opportunity)
	return client.GenerateCompletion(ctx, prompt, false)
}
