package supervisor

import (
	"regexp"
	"strings"
	"time"
)

var tunnelURLRe = regexp.MustCompile(`(?i)https?://[a-z0-9-]+\.trycloudflare\.com/?`)

// StartTunnel launches the cloudflared quick tunnel pointed at the local
// server origin.
func StartTunnel(bin, origin string) (*Child, error) {
	return StartChild("tunnel", bin, "tunnel", "--url", origin)
}

// ExtractTunnelURL pulls the public tunnel URL out of one output line, or
// returns "".
func ExtractTunnelURL(line string) string {
	return strings.TrimSpace(tunnelURLRe.FindString(line))
}

// WaitForTunnelURL reads tunnel output until a public https URL shows up or
// the timeout passes. A plain http URL is remembered as a fallback and
// returned if nothing better arrives.
func WaitForTunnelURL(lines <-chan string, timeout time.Duration) string {
	deadline := time.After(timeout)
	lastURL := ""

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return lastURL
			}
			url := ExtractTunnelURL(line)
			if url == "" {
				continue
			}
			if strings.HasPrefix(strings.ToLower(url), "https://") {
				return url
			}
			lastURL = url
		case <-deadline:
			return lastURL
		}
	}
}
