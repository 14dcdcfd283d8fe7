package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Exercises one live capture session end to end: start, push
// recognition results and audio, wait for the AI reply, stop.

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

func main() {
	serverAddr := flag.String("server", "ws://localhost:8080/ws/session", "Websocket session endpoint")
	language := flag.String("language", "french", "Practice language")
	user := flag.String("user", "", "Owner id sent as X-User-ID (empty for anonymous)")
	audioFile := flag.String("audio", "", "Optional audio file streamed as binary frames")
	flag.Parse()

	header := http.Header{}
	if *user != "" {
		header.Set("X-User-ID", *user)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*serverAddr, header)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("Connected to server")

	send := func(msg clientMessage) {
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("failed to send %s: %v", msg.Type, err)
		}
	}
	recv := func() serverMessage {
		var msg serverMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Fatalf("failed to read message: %v", err)
		}
		if msg.Type == "error" {
			log.Fatalf("server error: %s", msg.Error)
		}
		return msg
	}

	send(clientMessage{Type: "start", Language: *language})
	started := recv()
	log.Printf("Session started: sessionId=%s", started.SessionID)

	if *audioFile != "" {
		audio, err := os.ReadFile(*audioFile)
		if err != nil {
			log.Fatalf("failed to read audio file: %v", err)
		}
		// 100ms pacing to simulate live capture
		const chunkSize = 3200
		for off := 0; off < len(audio); off += chunkSize {
			end := min(off+chunkSize, len(audio))
			if err := conn.WriteMessage(websocket.BinaryMessage, audio[off:end]); err != nil {
				log.Fatalf("failed to send audio frame: %v", err)
			}
			time.Sleep(100 * time.Millisecond)
		}
	}

	results := []clientMessage{
		{Type: "result", Text: "Bonjour"},
		{Type: "result", Text: "Bonjour je voudrais"},
		{Type: "result", Text: "Bonjour je voudrais pratiquer mon français", Final: true, Confidence: 0.94},
	}
	for _, r := range results {
		log.Printf("Sending result: final=%v text=%q", r.Final, r.Text)
		send(r)
		time.Sleep(100 * time.Millisecond)
	}

	reply := recv()
	pretty, _ := json.Marshal(reply)
	log.Printf("Received reply: %s", pretty)

	send(clientMessage{Type: "stop"})
	stopped := recv()
	log.Printf("Session stopped: recordingId=%s", stopped.RecordingID)
}
