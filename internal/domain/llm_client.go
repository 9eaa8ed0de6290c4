package domain

import "context"

// GenerateOptions tunes one generation call.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// LLMClient sends prompts to the generation backend. GenerateStream
// yields incremental text chunks until the chunk channel closes; a
// failure mid-stream arrives on the error channel.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (string, error)
	GenerateStream(ctx context.Context, systemPrompt, userPrompt string, opts GenerateOptions) (<-chan string, <-chan error, error)
}
