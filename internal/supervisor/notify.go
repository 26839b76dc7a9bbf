package supervisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Notifier posts status messages to a Discord-style webhook. A zero-value
// webhook URL disables it; every Send becomes a no-op.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message. Failures are logged, never fatal; losing a status
// ping must not take the supervisor down.
func (n *Notifier) Send(message string) {
	if n == nil || n.webhookURL == "" {
		return
	}

	payload, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		slog.Error("Failed to encode webhook payload", "error", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		slog.Error("Failed to build webhook request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	// Discord rejects requests without a user agent.
	req.Header.Set("User-Agent", "ScuttleSupervisor/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Error("Webhook post failed", "error", err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		slog.Error("Webhook post rejected", "status", resp.Status)
	}
}

// Log writes the message locally and mirrors it to the webhook when asked.
func (n *Notifier) Log(message string, webhook bool) {
	slog.Info(message)
	if webhook {
		n.Send(message)
	}
}

// Logf is Log with formatting.
func (n *Notifier) Logf(webhook bool, format string, args ...any) {
	n.Log(fmt.Sprintf(format, args...), webhook)
}
