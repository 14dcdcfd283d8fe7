package httpapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speech-practice-service/internal/auth"
	"speech-practice-service/internal/config"
	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/models"
	"speech-practice-service/internal/recordings"
	"speech-practice-service/internal/wordbank"
)

type stubGateway struct {
	reply *gateway.Reply
	err   error
	calls []string
}

func (s *stubGateway) GenerateReply(_ context.Context, transcript, _ string) (*gateway.Reply, error) {
	s.calls = append(s.calls, transcript)
	if s.err != nil {
		return nil, s.err
	}
	return s.reply, nil
}

func newTestServer(t *testing.T, g ReplyGenerator) (*Server, http.Handler) {
	t.Helper()
	srv := NewServer(Config{
		Gateway:   g,
		Words:     wordbank.NewMemoryStore(),
		Identity:  auth.NewTokenVerifier(""),
		ExportDir: filepath.Join(t.TempDir(), "exports"),
		Session: config.SessionConfig{
			SilenceDelay: 30 * time.Millisecond,
		},
	})
	return srv, srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-User-ID", owner)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestGenerateResponse(t *testing.T) {
	stub := &stubGateway{reply: &gateway.Reply{
		Text:  "Bonjour! Comment allez-vous aujourd'hui?",
		Audio: []byte("mp3-bytes"),
		Voice: "alloy",
	}}
	_, h := newTestServer(t, stub)

	rr := doJSON(t, h, http.MethodPost, "/api/generate-response", "", map[string]string{
		"transcript": "Bonjour",
		"language":   "french",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, "Bonjour! Comment allez-vous aujourd'hui?", body["reply"])

	audio, err := base64.StdEncoding.DecodeString(body["audioData"].(string))
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, []string{"Bonjour"}, stub.calls)
}

func TestGenerateResponseTextOnly(t *testing.T) {
	stub := &stubGateway{reply: &gateway.Reply{Text: "Hola", Voice: "nova"}}
	_, h := newTestServer(t, stub)

	rr := doJSON(t, h, http.MethodPost, "/api/generate-response", "", map[string]string{
		"transcript": "Hola",
		"language":   "spanish",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	assert.Equal(t, "Hola", body["reply"])
	_, present := body["audioData"]
	assert.False(t, present, "text-only reply must omit audioData")
}

func TestGenerateResponseNoTranscript(t *testing.T) {
	stub := &stubGateway{err: gateway.ErrNoTranscript}
	_, h := newTestServer(t, stub)

	rr := doJSON(t, h, http.MethodPost, "/api/generate-response", "", map[string]string{
		"transcript": "",
		"language":   "french",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No transcript provided", decodeBody(t, rr)["error"])
}

func TestGenerateResponseAPIKeyMissing(t *testing.T) {
	// A real gateway without a credential must fail before any network
	// traffic; the stub path is bypassed deliberately here.
	_, h := newTestServer(t, gateway.New(gateway.Config{}))

	rr := doJSON(t, h, http.MethodPost, "/api/generate-response", "", map[string]string{
		"transcript": "Bonjour",
		"language":   "french",
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "API key missing", decodeBody(t, rr)["error"])
}

func TestGenerateResponseUpstreamFailure(t *testing.T) {
	stub := &stubGateway{err: &gateway.GatewayError{Step: "chat", Err: errors.New("bad gateway")}}
	_, h := newTestServer(t, stub)

	rr := doJSON(t, h, http.MethodPost, "/api/generate-response", "", map[string]string{
		"transcript": "Bonjour",
		"language":   "french",
	})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal Server Error", decodeBody(t, rr)["error"])
}

func TestFluencyReport(t *testing.T) {
	_, h := newTestServer(t, &stubGateway{})

	rr := doJSON(t, h, http.MethodPost, "/api/fluency-report", "", map[string]string{
		"transcript": "Well um I think that learning a new language takes a lot of practice",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Summary models.FluencySummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "Good fluency and natural speech!", out.Summary.Positives)
	assert.Equal(t, "Reduce filler words.", out.Summary.Improvements)
	assert.Equal(t, []string{"Well", "um", "I", "think", "that"}, out.Summary.Vocabulary)
}

func TestFluencyReportEmptyTranscript(t *testing.T) {
	_, h := newTestServer(t, &stubGateway{})

	rr := doJSON(t, h, http.MethodPost, "/api/fluency-report", "", map[string]string{"transcript": "  "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No transcript provided", decodeBody(t, rr)["error"])
}

func TestWordBankLifecycle(t *testing.T) {
	_, h := newTestServer(t, &stubGateway{})

	rr := doJSON(t, h, http.MethodPost, "/api/word-bank", "alice", models.Word{
		Word:        "Fluency",
		Translation: "Aisance",
		Explanation: "Speaking smoothly",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["success"])

	rr = doJSON(t, h, http.MethodGet, "/api/word-bank", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Words []models.Word `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed.Words, 1)
	assert.Equal(t, "Fluency", listed.Words[0].Word)
	require.NotEmpty(t, listed.Words[0].ID)

	// Another identity must not see alice's words.
	rr = doJSON(t, h, http.MethodGet, "/api/word-bank", "bob", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var other struct {
		Words []models.Word `json:"words"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &other))
	assert.Empty(t, other.Words)

	rr = doJSON(t, h, http.MethodDelete, "/api/word-bank/"+listed.Words[0].ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["success"])

	// Removal is idempotent.
	rr = doJSON(t, h, http.MethodDelete, "/api/word-bank/"+listed.Words[0].ID, "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["success"])

	rr = doJSON(t, h, http.MethodGet, "/api/word-bank", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Empty(t, listed.Words)
}

func TestAddWordRejectsEmpty(t *testing.T) {
	_, h := newTestServer(t, &stubGateway{})

	rr := doJSON(t, h, http.MethodPost, "/api/word-bank", "alice", models.Word{Word: "  "})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid word", decodeBody(t, rr)["error"])
}

func TestExportWordBank(t *testing.T) {
	srv, h := newTestServer(t, &stubGateway{})

	rr := doJSON(t, h, http.MethodGet, "/api/export-word-bank", "alice", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No words found", decodeBody(t, rr)["error"])

	rr = doJSON(t, h, http.MethodPost, "/api/word-bank", "alice", models.Word{
		Word:        "Bonjour",
		Translation: "Hello",
		Explanation: "Greeting",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/export-word-bank", "alice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/exports/word-bank.csv", decodeBody(t, rr)["url"])

	raw, err := os.ReadFile(filepath.Join(srv.exportDir, "word-bank.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Word,Translation,Explanation\nBonjour,Hello,Greeting\n", string(raw))

	// The artifact is served back under the advertised URL.
	req := httptest.NewRequest(http.MethodGet, "/exports/word-bank.csv", nil)
	got := httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, string(raw), got.Body.String())
}

func TestSaveRecording(t *testing.T) {
	dir := t.TempDir()
	store, err := recordings.New(filepath.Join(dir, "audio"), filepath.Join(dir, "recordings.db"))
	require.NoError(t, err)
	defer store.Close()

	srv := NewServer(Config{
		Gateway:    &stubGateway{},
		Words:      wordbank.NewMemoryStore(),
		Recordings: store,
		Identity:   auth.NewTokenVerifier(""),
		ExportDir:  filepath.Join(dir, "exports"),
	})
	h := srv.Router()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write([]byte("RIFF-fake-audio"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("transcript", "Bonjour tout le monde"))
	require.NoError(t, mw.WriteField("aiResponse", "Bonjour!"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/save-recording", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-ID", "alice")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "File saved successfully!", body["message"])
	path, _ := body["filePath"].(string)
	require.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, ".wav"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-fake-audio"), raw)

	// The owned upload also gets a metadata row.
	recs, err := store.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Bonjour tout le monde", recs[0].Transcript)
	assert.Equal(t, "Bonjour!", recs[0].Reply)
}

func TestSaveRecordingNoFile(t *testing.T) {
	dir := t.TempDir()
	store, err := recordings.New(filepath.Join(dir, "audio"), filepath.Join(dir, "recordings.db"))
	require.NoError(t, err)
	defer store.Close()

	srv := NewServer(Config{
		Gateway:    &stubGateway{},
		Words:      wordbank.NewMemoryStore(),
		Recordings: store,
		Identity:   auth.NewTokenVerifier(""),
		ExportDir:  filepath.Join(dir, "exports"),
	})
	h := srv.Router()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("transcript", "no audio attached"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/save-recording", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No file uploaded", decodeBody(t, rr)["error"])
}
