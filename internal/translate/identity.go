package translate

import "context"

// Identity returns its input unchanged. It backs the "none" engine.
type Identity struct{}

func (Identity) Name() string { return EngineNone }

func (Identity) Translate(_ context.Context, text string) Result {
	if isBlank(text) {
		return Result{}
	}
	return Result{Text: text}
}
