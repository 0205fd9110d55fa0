// Package textgen wraps the external text-generation collaborator behind a
// narrow interface. The pipeline treats it as synchronous and I/O-bound;
// failures surface as collaborator errors and abort the calling stage.
package textgen

import "context"

// Generator produces text from a system instruction and user content.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, userContent string) (string, error)
}
