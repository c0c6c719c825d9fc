package speech

import (
	"context"
	"io"
)

type TTSClient interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error // text → voice
}
