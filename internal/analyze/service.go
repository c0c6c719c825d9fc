package analyze

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
)

const systemPrompt = `You are a medical AI assistant for educational purposes only.
Based on the patient's description, provide general medical information and suggest when to seek professional care.
Always remind patients that this is not a substitute for professional medical advice.`

const fallbackPromptTemplate = `You are a medical AI assistant for educational purposes only.

Patient describes: %q

Please provide:
1. A brief assessment based on the description
2. Possible causes or conditions to consider
3. General care recommendations
4. When to seek immediate medical attention

Keep your response concise (2-3 sentences) and always recommend consulting a healthcare professional for proper diagnosis.`

// Attempt is the outcome of one model call. Fallback is decided from
// this value, not from exception control flow.
type Attempt struct {
	Vision bool
	Text   string
	Err    error
}

func shouldFallback(a Attempt) bool {
	return a.Err != nil || strings.TrimSpace(a.Text) == ""
}

// IsErrorText reports whether analysis text is an error marker rather
// than a real assessment. Marked text is never sent to synthesis.
func IsErrorText(text string) bool {
	return strings.HasPrefix(text, "Error")
}

type Service struct {
	chat ChatClient
	log  *logger.ZapLogger
}

func NewService(chat ChatClient, log *logger.ZapLogger) *Service {
	return &Service{
		chat: chat,
		log:  log,
	}
}

// Analyze tries vision mode when an image is supplied, falls back to
// text-only on any vision fault, and degrades to a canned reply when
// the fallback fails too. The caller always gets text back.
func (s *Service) Analyze(ctx context.Context, query string, image []byte) string {
	if len(image) > 0 {
		att := s.tryVision(ctx, query, image)
		if !shouldFallback(att) {
			return att.Text
		}

		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "vision analysis failed, falling back to text-only",
			Service: "analyze",
			Error:   att.Err,
		})
	}

	att := s.tryTextOnly(ctx, query)
	if !shouldFallback(att) {
		return att.Text
	}

	s.log.Log(logger.LogEntry{
		Level:   "error",
		Message: "text-only analysis failed",
		Service: "analyze",
		Error:   att.Err,
	})

	return cannedReply(query)
}

func (s *Service) tryVision(ctx context.Context, query string, image []byte) Attempt {
	prompt := systemPrompt + "\n\nPatient describes: " + query

	text, err := s.chat.VisionCompletion(ctx, prompt, image)
	return Attempt{Vision: true, Text: text, Err: err}
}

func (s *Service) tryTextOnly(ctx context.Context, query string) Attempt {
	prompt := fmt.Sprintf(fallbackPromptTemplate, query)

	text, err := s.chat.TextCompletion(ctx, prompt)
	return Attempt{Text: text, Err: err}
}

// cannedReply must not start with an error marker: the consultation is
// degraded, not failed.
func cannedReply(query string) string {
	return fmt.Sprintf(
		"I am unable to analyze your symptoms right now. Based on your description (%q), "+
			"please consult a healthcare professional for a proper assessment and diagnosis.",
		query,
	)
}
