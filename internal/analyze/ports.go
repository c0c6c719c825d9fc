package analyze

import "context"

// Analyzer turns a patient query (plus optional image) into a textual
// assessment. It never fails: unreachable models degrade to a canned
// reply, so the return is always displayable text.
type Analyzer interface {
	Analyze(ctx context.Context, query string, image []byte) string
}

// ChatClient is the outbound side: one vision-capable completion and
// one plain-text completion.
type ChatClient interface {
	VisionCompletion(ctx context.Context, prompt string, image []byte) (string, error)
	TextCompletion(ctx context.Context, prompt string) (string, error)
}
