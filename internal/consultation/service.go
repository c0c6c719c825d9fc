package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/predicare/voicebot/internal/analyze"
)

// ErrNoInput means the client supplied neither audio nor a text query.
// An image alone is not enough: analysis needs a textual query to run.
var ErrNoInput = errors.New("no query provided (audio or text)")

// Input is one consultation request. Everything is optional; at least
// one of Audio or Query must resolve to non-empty text.
type Input struct {
	Audio     []byte
	AudioName string
	Image     []byte
	Query     string
}

// Result is the terminal output of a consultation. Built once, never
// mutated after return.
type Result struct {
	Transcription string
	Analysis      string
	AudioURL      string
	Success       bool
	Message       string
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, query string, image []byte) string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// Service runs the transcribe → analyze → synthesize pipeline. Every
// presentation layer (REST, web form, Telegram) goes through here.
type Service struct {
	stt      Transcriber
	analyzer Analyzer
	tts      Synthesizer
	log      *logger.ZapLogger
}

func NewService(stt Transcriber, analyzer Analyzer, tts Synthesizer, log *logger.ZapLogger) *Service {
	return &Service{
		stt:      stt,
		analyzer: analyzer,
		tts:      tts,
		log:      log,
	}
}

// Run executes one consultation.
//
// Transcription failure and missing input abort with a non-nil error
// (the Result still carries a displayable message). Analyzer faults are
// absorbed inside the analyzer; a failed synthesis degrades the result
// to text-only but leaves it successful.
func (s *Service) Run(ctx context.Context, in Input) (Result, error) {
	if len(in.Audio) > 0 {
		text, err := s.stt.Transcribe(ctx, in.Audio, in.AudioName)
		if err != nil {
			s.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "transcription failed",
				Service: "consultation",
				Error:   err,
			})

			return Result{
				Analysis: "Error in speech transcription: " + err.Error(),
				Message:  "Speech to text failed",
			}, fmt.Errorf("transcription: %w", err)
		}

		in.Query = text

		res := s.analyzeAndVoice(ctx, in)
		res.Transcription = text
		return res, nil
	}

	if strings.TrimSpace(in.Query) == "" {
		return Result{Message: "No query provided (audio or text)"}, ErrNoInput
	}

	return s.analyzeAndVoice(ctx, in), nil
}

func (s *Service) analyzeAndVoice(ctx context.Context, in Input) Result {
	res := Result{
		Analysis: s.analyzer.Analyze(ctx, in.Query, in.Image),
	}

	if analyze.IsErrorText(res.Analysis) {
		res.Message = "Analysis failed"
		return res
	}

	audioURL, err := s.tts.Synthesize(ctx, res.Analysis)
	if err != nil {
		// degraded, not failed: the text assessment is the deliverable
		s.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "speech synthesis failed, returning text only",
			Service: "consultation",
			Error:   err,
		})
	} else {
		res.AudioURL = audioURL
	}

	res.Success = true
	res.Message = "Consultation completed successfully"
	return res
}
