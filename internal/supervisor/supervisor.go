package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"scuttle/internal/config"
)

// Supervisor runs the restart loop: server up, tunnel up, URL announced,
// then watch. A dead server restarts the pair; a dead tunnel restarts only
// the tunnel; a server that goes quiet for too long is assumed wedged and
// cycled.
type Supervisor struct {
	ServerBin string
	TunnelBin string
	Notifier  *Notifier

	Origin         string
	PollInterval   time.Duration
	IdleRestart    time.Duration
	TunnelURLWait  time.Duration
	ServerBootWait time.Duration
}

func New(serverBin, tunnelBin string, notifier *Notifier) *Supervisor {
	return &Supervisor{
		ServerBin:      serverBin,
		TunnelBin:      tunnelBin,
		Notifier:       notifier,
		Origin:         "http://localhost:" + config.Port,
		PollInterval:   config.PollInterval,
		IdleRestart:    config.IdleRestart,
		TunnelURLWait:  config.TunnelURLWait,
		ServerBootWait: config.ServerBootWait,
	}
}

// Run supervises until ctx is cancelled. Each iteration of the outer loop
// is one full restart cycle.
func (s *Supervisor) Run(ctx context.Context) error {
	s.Notifier.Log("Scuttle booting up", true)

	restarts := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		server, tunnel, err := s.startPair(ctx)
		if err != nil {
			return err
		}

		s.monitor(ctx, server, tunnel)

		tunnel.Terminate()
		server.Terminate()

		if ctx.Err() != nil {
			s.Notifier.Log("Scuttle shutting down", true)
			return ctx.Err()
		}

		restarts++
		s.Notifier.Logf(true, "Restart cycle #%d complete", restarts)
	}
}

// startPair boots the server, waits for it to answer health checks, then
// brings up the tunnel and announces its URL.
func (s *Supervisor) startPair(ctx context.Context) (server, tunnel *Child, err error) {
	s.Notifier.Log("Starting server...", false)
	server, err = StartChild("server", s.ServerBin)
	if err != nil {
		return nil, nil, err
	}

	if s.waitForServer(ctx) {
		s.Notifier.Log("Server is healthy", false)
	} else {
		s.Notifier.Log("Server did not answer health checks in time", true)
	}

	s.Notifier.Log("Starting tunnel...", false)
	tunnel, err = StartTunnel(s.TunnelBin, s.Origin)
	if err != nil {
		server.Terminate()
		return nil, nil, err
	}

	if url := WaitForTunnelURL(tunnel.Lines, s.TunnelURLWait); url != "" {
		s.Notifier.Logf(true, "Tunnel URL: %s", url)
	} else {
		s.Notifier.Log("Failed to get tunnel URL in time", true)
	}
	return server, tunnel, nil
}

// monitor watches the running pair and returns when the cycle should end:
// server death, prolonged server silence, or context cancellation. Tunnel
// death is handled inline with a tunnel-only restart.
func (s *Supervisor) monitor(ctx context.Context, server *Child, tunnel *Child) {
	lastActivity := time.Now()
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case line, ok := <-server.Lines:
			if !ok {
				s.Notifier.Log("Server exited, restarting both...", true)
				return
			}
			lastActivity = time.Now()
			slog.Debug("server output", "line", line)

		case <-ticker.C:
			if !server.Alive() {
				s.Notifier.Log("Server exited, restarting both...", true)
				return
			}
			if time.Since(lastActivity) > s.IdleRestart {
				s.Notifier.Logf(true, "Server silent for %s, cycling...", s.IdleRestart)
				return
			}
			if !tunnel.Alive() {
				s.Notifier.Log("Tunnel died, restarting tunnel only...", true)
				tunnel.Terminate()

				restarted, err := StartTunnel(s.TunnelBin, s.Origin)
				if err != nil {
					s.Notifier.Logf(true, "Tunnel restart failed: %v", err)
					continue
				}
				*tunnel = *restarted
				if url := WaitForTunnelURL(tunnel.Lines, s.TunnelURLWait); url != "" {
					s.Notifier.Logf(true, "Tunnel URL restarted: %s", url)
				} else {
					s.Notifier.Log("Failed to get tunnel URL in time", true)
				}
			}
		}
	}
}

// waitForServer polls the health endpoint until it answers or the boot
// window closes.
func (s *Supervisor) waitForServer(ctx context.Context) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	healthURL := fmt.Sprintf("%s/api/health", s.Origin)
	deadline := time.Now().Add(s.ServerBootWait)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return false
		}
		resp, err := client.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(time.Second)
	}
	return false
}
