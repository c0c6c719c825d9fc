package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/predicare/voicebot/internal/storage"
)

var ErrEmptyText = errors.New("empty text")

// Service synthesizes text and persists the result as a uniquely named
// artifact. The returned reference is the URL the artifact is served
// from.
type Service struct {
	tts   TTSClient
	store storage.ArtifactStore
}

func NewService(tts TTSClient, store storage.ArtifactStore) *Service {
	return &Service{
		tts:   tts,
		store: store,
	}
}

func (s *Service) Synthesize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	var buf bytes.Buffer
	if err := s.tts.Synthesize(ctx, text, &buf); err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}

	url, err := s.store.Save(ctx, artifactName(), &buf, "audio/mpeg")
	if err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}

	return url, nil
}

// artifactName gives timestamp-derived names; the uuid suffix keeps
// concurrent requests within the same second from colliding.
func artifactName() string {
	return fmt.Sprintf("response_%s_%s.mp3",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
	)
}
