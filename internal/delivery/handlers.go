package delivery

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/predicare/voicebot/internal/config"
	"github.com/predicare/voicebot/internal/consultation"
	"github.com/predicare/voicebot/internal/storage"
)

const maxUploadSize = 32 << 20

type Handler struct {
	cfg      *config.Config
	consult  *consultation.Service
	stt      consultation.Transcriber
	analyzer consultation.Analyzer
	tts      consultation.Synthesizer
	store    storage.ArtifactStore
	log      *logger.ZapLogger
}

func NewHandler(
	cfg *config.Config,
	consult *consultation.Service,
	stt consultation.Transcriber,
	analyzer consultation.Analyzer,
	tts consultation.Synthesizer,
	store storage.ArtifactStore,
	log *logger.ZapLogger,
) *Handler {
	return &Handler{
		cfg:      cfg,
		consult:  consult,
		stt:      stt,
		analyzer: analyzer,
		tts:      tts,
		store:    store,
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Services: map[string]bool{
			"groq":       h.cfg.GroqConfigured(),
			"elevenlabs": h.cfg.ElevenLabsConfigured(),
		},
	})
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, TranscriptionResponse{
			Message: "missing audio file: " + err.Error(),
		})
		return
	}
	defer file.Close()

	// reject before reading a byte of the upload
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
		writeJSON(w, http.StatusBadRequest, TranscriptionResponse{
			Message: "File must be audio format",
		})
		return
	}

	if !h.cfg.GroqConfigured() {
		writeJSON(w, http.StatusInternalServerError, TranscriptionResponse{
			Message: "GROQ_API_KEY not configured",
		})
		return
	}

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, TranscriptionResponse{
			Message: "failed to read audio: " + err.Error(),
		})
		return
	}

	text, err := h.stt.Transcribe(r.Context(), audio, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, TranscriptionResponse{
			Message: "Transcription failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, TranscriptionResponse{
		Transcription: text,
		Success:       true,
		Message:       "Audio transcribed successfully",
	})
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{
			Message: "invalid json: " + err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{
			Message: "missing query",
		})
		return
	}

	if !h.cfg.GroqConfigured() {
		writeJSON(w, http.StatusInternalServerError, AnalysisResponse{
			Message: "GROQ_API_KEY not configured",
		})
		return
	}

	var image []byte
	if req.ImageBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			// a broken image falls back to text-only, same as a vision fault
			h.log.Log(logger.LogEntry{
				Level:   "warn",
				Message: "invalid image_base64, analyzing text only",
				Service: "delivery",
				Error:   err,
			})
		} else {
			image = decoded
		}
	}

	analysis := h.analyzer.Analyze(r.Context(), req.Query, image)

	writeJSON(w, http.StatusOK, AnalysisResponse{
		Analysis: analysis,
		Success:  true,
		Message:  "Analysis completed successfully",
	})
}

func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, SynthesisResponse{
			Message: "invalid json: " + err.Error(),
		})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, SynthesisResponse{
			Message: "missing text",
		})
		return
	}

	if !h.cfg.ElevenLabsConfigured() {
		writeJSON(w, http.StatusInternalServerError, SynthesisResponse{
			Message: "ELEVENLABS_API_KEY not configured",
		})
		return
	}

	audioURL, err := h.tts.Synthesize(r.Context(), req.Text)
	if err != nil {
		// synthesis faults are reported in-band, not as HTTP errors
		writeJSON(w, http.StatusOK, SynthesisResponse{
			Message: "Speech synthesis temporarily unavailable: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, SynthesisResponse{
		AudioURL: audioURL,
		Success:  true,
		Message:  "Speech synthesized successfully",
	})
}

func (h *Handler) Consultation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSON(w, http.StatusBadRequest, ConsultationResponse{
			Message: "invalid multipart: " + err.Error(),
		})
		return
	}

	in := consultation.Input{Query: r.FormValue("query")}

	if file, header, err := r.FormFile("audio"); err == nil {
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
			file.Close()
			writeJSON(w, http.StatusBadRequest, ConsultationResponse{
				Message: "File must be audio format",
			})
			return
		}

		audio, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			writeJSON(w, http.StatusBadRequest, ConsultationResponse{
				Message: "failed to read audio: " + readErr.Error(),
			})
			return
		}

		in.Audio = audio
		in.AudioName = header.Filename
	}

	if file, _, err := r.FormFile("image"); err == nil {
		image, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			writeJSON(w, http.StatusBadRequest, ConsultationResponse{
				Message: "failed to read image: " + readErr.Error(),
			})
			return
		}

		in.Image = image
	}

	res, err := h.consult.Run(r.Context(), in)

	status := http.StatusOK
	switch {
	case errors.Is(err, consultation.ErrNoInput):
		status = http.StatusBadRequest
	case err != nil:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, ConsultationResponse{
		Transcription: res.Transcription,
		Analysis:      res.Analysis,
		AudioURL:      res.AudioURL,
		Success:       res.Success,
		Message:       res.Message,
	})
}

func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	rc, err := h.store.Open(r.Context(), filename)
	if err != nil {
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := io.Copy(w, rc); err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "failed to stream audio",
			Service: "delivery",
			Error:   err,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
