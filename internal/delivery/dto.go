package delivery

type TranscriptionResponse struct {
	Transcription string `json:"transcription"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

type AnalysisRequest struct {
	Query       string `json:"query"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type AnalysisResponse struct {
	Analysis string `json:"analysis"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

type SynthesisRequest struct {
	Text string `json:"text"`
}

type SynthesisResponse struct {
	AudioURL string `json:"audio_url"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

type ConsultationResponse struct {
	Transcription string `json:"transcription,omitempty"`
	Analysis      string `json:"analysis"`
	AudioURL      string `json:"audio_url,omitempty"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}
