package ai

import "context"

// TextGenerator generates text from a system prompt and user prompt.
// Provider clients implement this so the planner never sees provider details.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
