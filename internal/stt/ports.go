package stt

import "context"

type Transcriber interface {
	// Transcribe converts raw audio bytes to text. filename carries the
	// original name so the backend can infer the container format.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
