package textgen

import (
	"context"
	"strings"
)

// Stub is a deterministic generator for tests and development without a
// configured model endpoint. It echoes a short digest of its input.
type Stub struct{}

func (Stub) Generate(ctx context.Context, systemInstruction, userContent string) (string, error) {
	content := strings.TrimSpace(userContent)
	if len(content) > 120 {
		content = content[:120]
	}
	return "(stub) " + content, nil
}
