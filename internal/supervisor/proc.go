// Package supervisor keeps the server and its public tunnel alive: it
// starts both, watches their output, restarts whichever dies and pushes
// status messages to a webhook.
package supervisor

import (
	"bufio"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"
)

// Child is a supervised subprocess with its combined output exposed as a
// line channel.
type Child struct {
	Name  string
	Lines <-chan string

	cmd  *exec.Cmd
	done chan struct{}
}

// StartChild launches name with args, merging stdout and stderr into the
// line channel. The channel closes when the process exits.
func StartChild(name, bin string, args ...string) (*Child, error) {
	cmd := exec.Command(bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("piping %s stdout: %w", name, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", name, err)
	}
	slog.Info("Started subprocess", "name", name, "pid", cmd.Process.Pid)

	lines := make(chan string, 256)
	done := make(chan struct{})

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			default:
				// Nobody draining; drop rather than block the child.
			}
		}
		close(lines)
		cmd.Wait()
		close(done)
	}()

	return &Child{Name: name, Lines: lines, cmd: cmd, done: done}, nil
}

// Alive reports whether the process is still running.
func (c *Child) Alive() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Terminate asks the process to exit and escalates to SIGKILL after five
// seconds.
func (c *Child) Terminate() {
	if !c.Alive() {
		return
	}
	if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return
	}

	select {
	case <-c.done:
		slog.Info("Subprocess terminated gracefully", "name", c.Name)
	case <-time.After(5 * time.Second):
		slog.Warn("Subprocess did not terminate, escalating to SIGKILL", "name", c.Name)
		c.cmd.Process.Kill()
		<-c.done
	}
}
