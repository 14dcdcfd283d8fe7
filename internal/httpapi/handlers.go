package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"speech-practice-service/internal/auth"
	"speech-practice-service/internal/export"
	"speech-practice-service/internal/fluency"
	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/models"
	"speech-practice-service/internal/observability/metrics"
	"speech-practice-service/internal/wordbank"
)

const maxRecordingUpload = 32 << 20 // 32MiB multipart memory cap

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type generateRequest struct {
	Transcript string `json:"transcript"`
	Language   string `json:"language"`
}

type generateResponse struct {
	Reply     string `json:"reply"`
	AudioData string `json:"audioData,omitempty"`
}

func (s *Server) handleGenerateResponse(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No transcript provided")
		return
	}

	reply, err := s.gateway.GenerateReply(r.Context(), req.Transcript, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrNoTranscript):
			writeError(w, http.StatusBadRequest, "No transcript provided")
		case errors.Is(err, gateway.ErrAPIKeyMissing):
			writeError(w, http.StatusInternalServerError, "API key missing")
		default:
			s.log.Error().Err(err).Msg("Error generating AI response")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	resp := generateResponse{Reply: reply.Text}
	if len(reply.Audio) > 0 {
		resp.AudioData = base64.StdEncoding.EncodeToString(reply.Audio)
	}
	writeJSON(w, http.StatusOK, resp)
}

type fluencyRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) handleFluencyReport(w http.ResponseWriter, r *http.Request) {
	var req fluencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No transcript provided")
		return
	}

	summary, err := fluency.Report(req.Transcript)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No transcript provided")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.FluencySummary{"summary": summary})
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFromContext(r.Context())

	words, err := s.words.List(r.Context(), owner)
	metrics.DefaultMetrics.RecordWordBankOp("list", err)
	if err != nil {
		s.log.Error().Err(err).Msg("Listing word bank failed")
		writeError(w, http.StatusInternalServerError, "Failed to list words")
		return
	}
	if words == nil {
		words = []models.Word{}
	}
	writeJSON(w, http.StatusOK, map[string][]models.Word{"words": words})
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var word models.Word
	if err := json.NewDecoder(r.Body).Decode(&word); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid word")
		return
	}

	owner := auth.OwnerFromContext(r.Context())
	_, err := s.words.Add(r.Context(), owner, word)
	metrics.DefaultMetrics.RecordWordBankOp("add", err)
	if err != nil {
		if errors.Is(err, wordbank.ErrInvalidWord) {
			writeError(w, http.StatusBadRequest, "Invalid word")
			return
		}
		s.log.Error().Err(err).Msg("Adding word failed")
		writeError(w, http.StatusInternalServerError, "Failed to add word")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFromContext(r.Context())
	id := chi.URLParam(r, "id")

	err := s.words.Remove(r.Context(), owner, id)
	metrics.DefaultMetrics.RecordWordBankOp("remove", err)
	if err != nil {
		s.log.Error().Err(err).Msg("Removing word failed")
		writeError(w, http.StatusInternalServerError, "Failed to remove word")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleSaveRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxRecordingUpload); err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}

	path, err := s.recordings.SaveAudio(audio, "wav")
	if err != nil {
		s.log.Error().Err(err).Msg("Saving uploaded recording failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if owner := auth.OwnerFromContext(r.Context()); owner != "" {
		rec := models.Recording{
			OwnerID:    owner,
			Transcript: r.FormValue("transcript"),
			Reply:      r.FormValue("aiResponse"),
			AudioPath:  path,
		}
		if _, err := s.recordings.Save(r.Context(), rec, nil); err != nil {
			// The artifact is on disk; metadata failure is logged only.
			s.log.Error().Err(err).Msg("Saving recording metadata failed")
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "File saved successfully!",
		"filePath": path,
	})
}

func (s *Server) handleExportWordBank(w http.ResponseWriter, r *http.Request) {
	owner := auth.OwnerFromContext(r.Context())

	words, err := s.words.List(r.Context(), owner)
	if err != nil {
		s.log.Error().Err(err).Msg("Exporting word bank failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if len(words) == 0 {
		writeError(w, http.StatusNotFound, "No words found")
		return
	}

	csv := export.ToCSV(export.WordColumns, export.WordRows(words))

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.log.Error().Err(err).Msg("Creating export dir failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	path := filepath.Join(s.exportDir, "word-bank.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		s.log.Error().Err(err).Msg("Writing export artifact failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	metrics.DefaultMetrics.RecordExport()
	writeJSON(w, http.StatusOK, map[string]string{"url": "/exports/word-bank.csv"})
}
