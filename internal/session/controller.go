package session

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"speech-practice-service/internal/gateway"
	"speech-practice-service/internal/models"
	"speech-practice-service/internal/observability/logging"
	"speech-practice-service/internal/observability/metrics"
	"speech-practice-service/internal/recognizer"
)

// Limits defines safety guardrails for one session. They prevent
// unbounded resource usage from a stream that never stops.
type Limits struct {
	MaxTranscriptBytes int64
	MaxAudioBytes      int64
	MaxDuration        time.Duration
}

// DefaultLimits returns sensible default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxTranscriptBytes: 64 * 1024,
		MaxAudioBytes:      16 * 1024 * 1024,
		MaxDuration:        10 * time.Minute,
	}
}

// ReplyGenerator is the AI gateway contract the controller depends on.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, transcript, language string) (*gateway.Reply, error)
}

// Recorder persists a finished session's artifacts.
type Recorder interface {
	Save(ctx context.Context, rec models.Recording, audio []byte) (models.Recording, error)
}

// Publisher emits transcript and reply events.
type Publisher interface {
	PublishTranscript(ctx context.Context, key string, event any) error
	PublishReply(ctx context.Context, key string, event any) error
}

// Config wires one controller instance.
type Config struct {
	ID           string // assigned when empty
	OwnerID      string // empty for anonymous sessions
	Language     string
	Recognizer   recognizer.Recognizer
	Gateway      ReplyGenerator
	Recorder     Recorder
	Publisher    Publisher
	SilenceDelay time.Duration
	Limits       Limits

	// OnReply is invoked for every AI reply, outside any controller lock.
	OnReply func(*gateway.Reply)
}

// Controller owns one capture session. The transcript is appended in
// recognition-stream order by a single consumer goroutine and is never
// rewritten within a session. A trailing-silence debounce triggers the
// AI round trip; calls are serialized per session with superseded
// snapshots merged into one follow-up call.
type Controller struct {
	cfg       Config
	id        string
	log       zerolog.Logger
	metrics   *metrics.Metrics
	lifecycle *lifecycle

	mu         sync.Mutex
	transcript string
	lastSent   string
	lastReply  *gateway.Reply
	audio      bytes.Buffer
	startedAt  time.Time
	aiInFlight bool
	aiPending  bool
	silence    *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	aiWG   sync.WaitGroup
}

// New creates a controller in the Idle state.
func New(cfg Config) *Controller {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	if cfg.SilenceDelay <= 0 {
		cfg.SilenceDelay = 2 * time.Second
	}
	if cfg.Limits == (Limits{}) {
		cfg.Limits = DefaultLimits()
	}
	return &Controller{
		cfg:       cfg,
		id:        id,
		log:       logging.WithSession(id, cfg.OwnerID),
		metrics:   metrics.DefaultMetrics,
		lifecycle: newLifecycle(),
		done:      make(chan struct{}),
	}
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.lifecycle.current() }

// Transcript returns the transcript accumulated so far.
func (c *Controller) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// LastReply returns the most recent AI reply, or nil.
func (c *Controller) LastReply() *gateway.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply
}

// Start opens the recognition stream and begins consuming its events.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.lifecycle.beginRecording(); err != nil {
		return err
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	events, err := c.cfg.Recognizer.Start(c.ctx)
	if err != nil {
		c.cancel()
		c.lifecycle.drop()
		c.metrics.RecordSessionDropped("recognizer_start")
		return err
	}

	c.mu.Lock()
	c.startedAt = time.Now()
	c.mu.Unlock()

	c.metrics.RecordSessionStart()
	c.log.Info().Str("language", c.cfg.Language).Msg("Session recording started")

	go c.consume(events)
	return nil
}

// consume is the single consumer loop for recognition events. Results
// are applied in delivery order; results arriving after stop are dropped.
func (c *Controller) consume(events <-chan recognizer.Event) {
	defer close(c.done)

	for ev := range events {
		if ev.Err != nil {
			// Recognition errors do not stop the session; recording
			// continues until explicit stop.
			c.log.Warn().Err(ev.Err).Msg("Recognition stream error")
			continue
		}
		c.apply(ev)
	}
}

func (c *Controller) apply(ev recognizer.Event) {
	if !c.lifecycle.canAppend() {
		c.log.Debug().Str("text", ev.Text).Msg("Late recognition result dropped")
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	c.metrics.RecordTranscript(ev.Final)

	// Partial results are cumulative revisions of the utterance in
	// progress. They signal ongoing speech, so they re-arm the silence
	// debounce, but only the final result enters the transcript.
	if !ev.Final {
		c.mu.Lock()
		c.resetSilenceLocked()
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if c.transcript != "" {
		c.transcript += " "
	}
	c.transcript += text
	transcriptBytes := int64(len(c.transcript))
	elapsed := time.Since(c.startedAt)
	c.resetSilenceLocked()
	c.mu.Unlock()

	if c.cfg.Limits.MaxTranscriptBytes > 0 && transcriptBytes > c.cfg.Limits.MaxTranscriptBytes {
		c.Drop("transcript_limit")
		return
	}
	if c.cfg.Limits.MaxDuration > 0 && elapsed > c.cfg.Limits.MaxDuration {
		c.Drop("duration_limit")
		return
	}

	if ev.Final && c.cfg.Publisher != nil {
		evt := models.TranscriptEvent{
			EventType:  "practice.transcript.final",
			SessionID:  c.id,
			OwnerID:    c.cfg.OwnerID,
			Timestamp:  time.Now().UnixMilli(),
			Text:       text,
			Confidence: ev.Confidence,
		}
		if err := c.cfg.Publisher.PublishTranscript(c.ctx, c.id, evt); err != nil {
			c.log.Warn().Err(err).Msg("Failed to publish transcript event")
		}
	}
}

// resetSilenceLocked re-arms the trailing-silence debounce.
// Caller must hold c.mu.
func (c *Controller) resetSilenceLocked() {
	if c.silence == nil {
		c.silence = time.AfterFunc(c.cfg.SilenceDelay, c.onSilence)
		return
	}
	c.silence.Stop()
	c.silence.Reset(c.cfg.SilenceDelay)
}

// onSilence fires when no recognition result arrived for the configured
// delay. At most one gateway call is in flight per session; if a call is
// already pending the newest snapshot is merged into one follow-up call.
func (c *Controller) onSilence() {
	if !c.lifecycle.canAppend() {
		return
	}

	c.mu.Lock()
	snapshot := c.transcript
	if strings.TrimSpace(snapshot) == "" || snapshot == c.lastSent {
		c.mu.Unlock()
		return
	}
	if c.aiInFlight {
		c.aiPending = true
		c.mu.Unlock()
		return
	}
	c.aiInFlight = true
	c.lastSent = snapshot
	c.aiWG.Add(1)
	c.mu.Unlock()

	go c.roundTrip(snapshot)
}

func (c *Controller) roundTrip(snapshot string) {
	defer c.aiWG.Done()

	reply, err := c.cfg.Gateway.GenerateReply(c.ctx, snapshot, c.cfg.Language)
	if err != nil {
		// Gateway failures are logged, not fatal; the user keeps the
		// last good state.
		c.log.Warn().Err(err).Msg("AI round trip failed")
	} else {
		c.mu.Lock()
		c.lastReply = reply
		c.mu.Unlock()

		if c.cfg.Publisher != nil {
			evt := models.ReplyEvent{
				EventType: "practice.reply",
				SessionID: c.id,
				OwnerID:   c.cfg.OwnerID,
				Timestamp: time.Now().UnixMilli(),
				Language:  c.cfg.Language,
				Text:      reply.Text,
				HasAudio:  len(reply.Audio) > 0,
			}
			if perr := c.cfg.Publisher.PublishReply(c.ctx, c.id, evt); perr != nil {
				c.log.Warn().Err(perr).Msg("Failed to publish reply event")
			}
		}
		if c.cfg.OnReply != nil {
			c.cfg.OnReply(reply)
		}
	}

	c.mu.Lock()
	c.aiInFlight = false
	if c.aiPending {
		c.aiPending = false
		next := c.transcript
		if next != c.lastSent && c.lifecycle.canAppend() {
			c.aiInFlight = true
			c.lastSent = next
			c.aiWG.Add(1)
			c.mu.Unlock()
			go c.roundTrip(next)
			return
		}
	}
	c.mu.Unlock()
}

// AddAudioChunk buffers one raw audio segment and forwards it to the
// recognizer. Audio capture is optional: callers that never send audio
// still get a fully working text session.
func (c *Controller) AddAudioChunk(ctx context.Context, chunk []byte) error {
	if !c.lifecycle.canAppend() {
		return ErrNotRecording
	}

	c.mu.Lock()
	c.audio.Write(chunk)
	audioBytes := int64(c.audio.Len())
	c.mu.Unlock()

	c.metrics.RecordAudioReceived(len(chunk))

	if c.cfg.Limits.MaxAudioBytes > 0 && audioBytes > c.cfg.Limits.MaxAudioBytes {
		c.Drop("audio_limit")
		return ErrSessionDropped
	}

	if err := c.cfg.Recognizer.SendAudio(ctx, chunk); err != nil {
		c.log.Warn().Err(err).Msg("Forwarding audio to recognizer failed")
	}
	return nil
}

// Stop closes both streams, concatenates the buffered audio and persists
// the session artifacts when an owner identity is present. Anonymous
// sessions are logged only. Display state survives Stop and is cleared
// by Finish.
func (c *Controller) Stop(ctx context.Context) (*models.Recording, error) {
	if err := c.lifecycle.beginFinalizing(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.silence != nil {
		c.silence.Stop()
	}
	started := c.startedAt
	c.mu.Unlock()

	// Cancel both streams; the consumer loop drops anything late.
	c.cancel()
	<-c.done
	c.aiWG.Wait()
	if err := c.cfg.Recognizer.Close(); err != nil {
		c.log.Warn().Err(err).Msg("Closing recognizer failed")
	}

	c.mu.Lock()
	transcript := c.transcript
	audio := append([]byte(nil), c.audio.Bytes()...)
	var replyText string
	if c.lastReply != nil {
		replyText = c.lastReply.Text
	}
	c.mu.Unlock()

	duration := time.Since(started).Seconds()

	if c.cfg.OwnerID == "" || c.cfg.Recorder == nil {
		c.log.Info().
			Int("audioBytes", len(audio)).
			Int("transcriptBytes", len(transcript)).
			Msg("Anonymous session finished, not persisted")
		c.metrics.RecordSessionEnd(false, duration)
		c.lifecycle.finish()
		return nil, nil
	}

	saved, err := c.cfg.Recorder.Save(ctx, models.Recording{
		OwnerID:    c.cfg.OwnerID,
		Transcript: transcript,
		Reply:      replyText,
	}, audio)
	if err != nil {
		c.log.Error().Err(err).Msg("Persisting session recording failed")
		c.metrics.RecordSessionEnd(false, duration)
		c.lifecycle.finish()
		return nil, err
	}

	c.log.Info().
		Str("recordingId", saved.ID).
		Str("audioPath", saved.AudioPath).
		Msg("Session recording saved")
	c.metrics.RecordSessionEnd(true, duration)
	c.lifecycle.finish()
	return &saved, nil
}

// Finish clears the transcript and reply display state. Separate from
// Stop: stopping keeps the last session visible until the user finishes.
func (c *Controller) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = ""
	c.lastSent = ""
	c.lastReply = nil
	c.audio.Reset()
}

// Drop abandons the session without persisting anything.
func (c *Controller) Drop(reason string) {
	if !c.lifecycle.drop() {
		return
	}
	c.mu.Lock()
	if c.silence != nil {
		c.silence.Stop()
	}
	c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.metrics.RecordSessionDropped(reason)
	c.log.Warn().Str("reason", reason).Msg("Session dropped")
}
