package supervisor

import (
	"log/slog"
	"os/exec"
	"runtime"
)

// PreventSleep starts a platform sleep inhibitor so the host does not doze
// off mid-stream. Best effort: a missing tool just means the machine keeps
// its own power policy.
func PreventSleep() *exec.Cmd {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("caffeinate", "-i")
	case "linux":
		cmd = exec.Command("systemd-inhibit", "--what=idle", "sleep", "infinity")
	default:
		return nil
	}

	if err := cmd.Start(); err != nil {
		slog.Warn("Could not start sleep inhibitor", "error", err)
		return nil
	}
	slog.Info("Sleep inhibitor running", "pid", cmd.Process.Pid)
	return cmd
}

// AllowSleep stops the inhibitor started by PreventSleep.
func AllowSleep(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	cmd.Process.Kill()
	cmd.Wait()
	slog.Info("Sleep inhibitor stopped")
}
