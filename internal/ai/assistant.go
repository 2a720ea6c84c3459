package ai

import "context"

// Generator is the single completion primitive every agent is built on: one
// prompt in, the model's text reply out.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
