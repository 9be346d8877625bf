package llm

import "context"

// Image is an inline image passed to a model alongside the prompt.
type Image struct {
	Data     []byte
	MIMEType string
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Add returns the sum of two usages.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
		TotalTokens:  u.TotalTokens + o.TotalTokens,
		CostUSD:      u.CostUSD + o.CostUSD,
	}
}

// Response is the generated text of a single model call.
type Response struct {
	Text  string
	Usage Usage
}

// Model generates text from a prompt and optional images.
type Model interface {
	// Generate sends one request. With no images the request is text-only.
	Generate(ctx context.Context, prompt string, images ...Image) (*Response, error)
	// Name returns the model identifier used for requests.
	Name() string
}
