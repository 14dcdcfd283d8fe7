package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"speech-practice-service/internal/auth"
	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/recognizer/remote"
	"speech-practice-service/internal/recognizer/types"
	"speech-practice-service/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// clientMessage is one JSON control frame from the browser. Audio
// arrives as separate binary frames.
type clientMessage struct {
	Type       string  `json:"type"`
	Language   string  `json:"language,omitempty"`
	Text       string  `json:"text,omitempty"`
	Final      bool    `json:"final,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

type serverMessage struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Audio       string `json:"audio,omitempty"`
	Voice       string `json:"voice,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
	RecordingID string `json:"recordingId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// wsConn serializes writes; the reply callback fires from a gateway
// goroutine while the read loop may be answering control frames.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// handleSession runs one live capture session over a websocket. The
// browser pushes recognition results and raw audio; the server owns the
// transcript, the silence debounce and the AI round trip.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	owner := auth.OwnerFromContext(r.Context())
	ctx := r.Context()

	var (
		ctrl *session.Controller
		// remoteRec is non-nil when recognition is client-side and
		// "result" frames feed the stream.
		remoteRec *remote.Recognizer
	)
	// Recording in progress when the peer vanishes means lost data,
	// not a finished session.
	defer func() {
		if ctrl != nil && ctrl.State() == session.StateRecording {
			ctrl.Drop("connection closed")
		}
	}()

	for {
		msgType, payload, err := raw.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn().Err(err).Msg("Websocket read failed")
			}
			return
		}

		if msgType == websocket.BinaryMessage {
			if ctrl == nil {
				continue
			}
			if err := ctrl.AddAudioChunk(ctx, payload); err != nil {
				_ = conn.send(serverMessage{Type: "error", Error: err.Error()})
			}
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			_ = conn.send(serverMessage{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "start":
			if ctrl != nil && ctrl.State() == session.StateRecording {
				_ = conn.send(serverMessage{Type: "error", Error: session.ErrAlreadyRecording.Error()})
				continue
			}
			rec, err := s.recognizer(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("Opening recognizer stream failed")
				_ = conn.send(serverMessage{Type: "error", Error: "recognizer unavailable"})
				continue
			}
			remoteRec, _ = rec.(*remote.Recognizer)
			cfg := session.Config{
				OwnerID:      owner,
				Language:     msg.Language,
				Recognizer:   rec,
				Gateway:      s.gateway,
				SilenceDelay: s.sessionCfg.SilenceDelay,
				Limits: session.Limits{
					MaxTranscriptBytes: s.sessionCfg.MaxTranscriptBytes,
					MaxAudioBytes:      s.sessionCfg.MaxAudioBytes,
					MaxDuration:        s.sessionCfg.MaxDuration,
				},
				OnReply: func(reply *gateway.Reply) {
					out := serverMessage{Type: "reply", Text: reply.Text, Voice: reply.Voice}
					if len(reply.Audio) > 0 {
						out.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
					}
					_ = conn.send(out)
				},
			}
			if s.recordings != nil {
				cfg.Recorder = s.recordings
			}
			if s.publisher != nil {
				cfg.Publisher = s.publisher
			}
			ctrl = session.New(cfg)
			if err := ctrl.Start(ctx); err != nil {
				_ = conn.send(serverMessage{Type: "error", Error: err.Error()})
				ctrl = nil
				continue
			}
			_ = conn.send(serverMessage{Type: "started", SessionID: ctrl.ID()})

		case "result":
			// Only meaningful for client-side recognition; a server-side
			// recognizer produces its own results from the audio frames.
			if remoteRec == nil {
				continue
			}
			remoteRec.Push(types.Event{Text: msg.Text, Final: msg.Final, Confidence: msg.Confidence})

		case "stop":
			if ctrl == nil {
				continue
			}
			saved, err := ctrl.Stop(ctx)
			if err != nil {
				_ = conn.send(serverMessage{Type: "error", Error: err.Error()})
				continue
			}
			out := serverMessage{Type: "stopped"}
			if saved != nil {
				out.RecordingID = saved.ID
			}
			_ = conn.send(out)

		case "finish":
			if ctrl != nil {
				ctrl.Finish()
			}
			_ = conn.send(serverMessage{Type: "finished"})

		default:
			_ = conn.send(serverMessage{Type: "error", Error: "unknown message type"})
		}
	}
}
