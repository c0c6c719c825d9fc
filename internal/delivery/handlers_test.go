package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/predicare/voicebot/internal/config"
	"github.com/predicare/voicebot/internal/consultation"
	"github.com/predicare/voicebot/internal/speech"
	"github.com/predicare/voicebot/internal/storage"
)

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeAnalyzer struct {
	calls int
	text  string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, query string, image []byte) string {
	f.calls++
	return f.text
}

type fakeTTS struct {
	err error
}

func (f *fakeTTS) Synthesize(ctx context.Context, text string, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "mp3-bytes")
	return err
}

type testEnv struct {
	router *chi.Mux
	stt    *fakeTranscriber
	an     *fakeAnalyzer
}

func newTestEnv(t *testing.T, cfg *config.Config, ttsErr error) testEnv {
	t.Helper()

	store, err := storage.NewLocalStore(t.TempDir(), "/audio")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	zl := logger.NewZapLogger(zap.NewNop().Sugar())

	stt := &fakeTranscriber{text: "I have a headache"}
	an := &fakeAnalyzer{text: "you should rest and hydrate"}
	tts := speech.NewService(&fakeTTS{err: ttsErr}, store)

	consult := consultation.NewService(stt, an, tts, zl)
	h := NewHandler(cfg, consult, stt, an, tts, store, zl)

	r := chi.NewRouter()
	RegisterRoutes(r, h)

	return testEnv{router: r, stt: stt, an: an}
}

func configuredCfg() *config.Config {
	return &config.Config{
		GroqAPIKey:       "gsk_test",
		ElevenLabsAPIKey: "el_test",
		STTTimeout:       time.Minute,
		LLMTimeout:       time.Minute,
		TTSTimeout:       time.Minute,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

// multipartBody builds a form with an optional file part carrying an
// explicit content type.
func multipartBody(t *testing.T, field, filename, contentType, data string, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if field != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)

		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := io.WriteString(part, data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}

	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, configuredCfg(), nil)

	rec := doJSON(t, env.router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "healthy" {
		t.Errorf("unexpected status %q", resp.Status)
	}
	if !resp.Services["groq"] || !resp.Services["elevenlabs"] {
		t.Errorf("unexpected service flags %v", resp.Services)
	}
	if resp.Timestamp == "" {
		t.Error("timestamp missing")
	}
}

func TestTranscribe(t *testing.T) {
	t.Run("rejects non-audio content type before transcribing", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		body, ct := multipartBody(t, "audio", "notes.txt", "text/plain", "hello", nil)
		req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
		if env.stt.calls != 0 {
			t.Error("transcriber must not be invoked")
		}
	})

	t.Run("transcribes audio upload", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		body, ct := multipartBody(t, "audio", "rec.wav", "audio/wav", "wav-bytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}

		resp := decodeBody[TranscriptionResponse](t, rec)
		if !resp.Success || resp.Transcription != "I have a headache" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("transcriber fault maps to 500", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)
		env.stt.err = errors.New("service unreachable")

		body, ct := multipartBody(t, "audio", "rec.wav", "audio/wav", "wav-bytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status %d, want 500", rec.Code)
		}
	})

	t.Run("missing credential maps to 500", func(t *testing.T) {
		cfg := configuredCfg()
		cfg.GroqAPIKey = ""
		env := newTestEnv(t, cfg, nil)

		body, ct := multipartBody(t, "audio", "rec.wav", "audio/wav", "wav-bytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status %d, want 500", rec.Code)
		}
		if env.stt.calls != 0 {
			t.Error("transcriber must not be invoked without a credential")
		}
	})
}

func TestAnalyze(t *testing.T) {
	t.Run("text-only query succeeds", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		rec := doJSON(t, env.router, http.MethodPost, "/analyze",
			AnalysisRequest{Query: "I have a headache and feel dizzy"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d", rec.Code)
		}

		resp := decodeBody[AnalysisResponse](t, rec)
		if !resp.Success || resp.Analysis == "" {
			t.Errorf("unexpected response %+v", resp)
		}
		if env.an.calls != 1 {
			t.Errorf("analyzer called %d times", env.an.calls)
		}
	})

	t.Run("missing query is a client error", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		rec := doJSON(t, env.router, http.MethodPost, "/analyze", AnalysisRequest{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}
	})

	t.Run("missing credential is a server error", func(t *testing.T) {
		cfg := configuredCfg()
		cfg.GroqAPIKey = ""
		env := newTestEnv(t, cfg, nil)

		rec := doJSON(t, env.router, http.MethodPost, "/analyze",
			AnalysisRequest{Query: "headache"})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status %d, want 500", rec.Code)
		}
	})
}

func TestSynthesize(t *testing.T) {
	t.Run("success returns a retrievable artifact", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		rec := doJSON(t, env.router, http.MethodPost, "/synthesize",
			SynthesisRequest{Text: "you should rest"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d", rec.Code)
		}

		resp := decodeBody[SynthesisResponse](t, rec)
		if !resp.Success || !strings.HasPrefix(resp.AudioURL, "/audio/") {
			t.Fatalf("unexpected response %+v", resp)
		}

		audioReq := httptest.NewRequest(http.MethodGet, resp.AudioURL, nil)
		audioRec := httptest.NewRecorder()
		env.router.ServeHTTP(audioRec, audioReq)

		if audioRec.Code != http.StatusOK {
			t.Fatalf("audio status %d", audioRec.Code)
		}
		if ct := audioRec.Header().Get("Content-Type"); ct != "audio/mpeg" {
			t.Errorf("unexpected content type %q", ct)
		}
		if audioRec.Body.String() != "mp3-bytes" {
			t.Errorf("unexpected audio body %q", audioRec.Body.String())
		}
	})

	t.Run("repeated calls produce distinct artifacts", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		urls := map[string]bool{}
		for i := 0; i < 3; i++ {
			rec := doJSON(t, env.router, http.MethodPost, "/synthesize",
				SynthesisRequest{Text: "identical text"})
			resp := decodeBody[SynthesisResponse](t, rec)
			if urls[resp.AudioURL] {
				t.Fatalf("audio url %q reused", resp.AudioURL)
			}
			urls[resp.AudioURL] = true
		}
	})

	t.Run("tts fault degrades in-band with 200", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), errors.New("quota exceeded"))

		rec := doJSON(t, env.router, http.MethodPost, "/synthesize",
			SynthesisRequest{Text: "you should rest"})
		if rec.Code != http.StatusOK {
			t.Fatalf("status %d, want 200", rec.Code)
		}

		resp := decodeBody[SynthesisResponse](t, rec)
		if resp.Success {
			t.Error("expected success=false")
		}
		if !strings.HasPrefix(resp.Message, "Speech synthesis temporarily unavailable") {
			t.Errorf("unexpected message %q", resp.Message)
		}
	})
}

func TestConsultation(t *testing.T) {
	t.Run("no input at all is a 400", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		body, ct := multipartBody(t, "", "", "", "", map[string]string{})
		req := httptest.NewRequest(http.MethodPost, "/consultation", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status %d, want 400", rec.Code)
		}

		resp := decodeBody[ConsultationResponse](t, rec)
		if resp.Success {
			t.Error("expected success=false")
		}
	})

	t.Run("typed query runs the full pipeline", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		body, ct := multipartBody(t, "", "", "", "", map[string]string{
			"query": "I have a headache and feel dizzy",
		})
		req := httptest.NewRequest(http.MethodPost, "/consultation", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}

		resp := decodeBody[ConsultationResponse](t, rec)
		if !resp.Success {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.Message != "Consultation completed successfully" {
			t.Errorf("unexpected message %q", resp.Message)
		}
		if !strings.HasPrefix(resp.AudioURL, "/audio/") {
			t.Errorf("unexpected audio url %q", resp.AudioURL)
		}
	})

	t.Run("voice consultation carries the transcript", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)

		body, ct := multipartBody(t, "audio", "rec.wav", "audio/wav", "wav-bytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/consultation", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}

		resp := decodeBody[ConsultationResponse](t, rec)
		if resp.Transcription != "I have a headache" {
			t.Errorf("unexpected transcription %q", resp.Transcription)
		}
	})

	t.Run("transcription fault is a 500", func(t *testing.T) {
		env := newTestEnv(t, configuredCfg(), nil)
		env.stt.err = errors.New("service unreachable")

		body, ct := multipartBody(t, "audio", "rec.wav", "audio/wav", "wav-bytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/consultation", body)
		req.Header.Set("Content-Type", ct)

		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status %d, want 500", rec.Code)
		}
	})
}

func TestAudioNotFound(t *testing.T) {
	env := newTestEnv(t, configuredCfg(), nil)

	req := httptest.NewRequest(http.MethodGet, "/audio/absent.mp3", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
