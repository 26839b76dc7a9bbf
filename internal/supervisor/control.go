package supervisor

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

// ControlListener accepts plain-text commands on a local TCP port so other
// processes can stop the supervisor without hunting for its pid. The only
// command is STOP.
type ControlListener struct {
	listener net.Listener
	Stop     chan struct{}
}

// ListenControl binds the control port on localhost and starts accepting.
func ListenControl(port int) (*ControlListener, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("binding control port %d: %w", port, err)
	}

	c := &ControlListener{listener: listener, Stop: make(chan struct{}, 1)}
	go c.accept()
	slog.Info("Control port listening", "addr", listener.Addr())
	return c, nil
}

func (c *ControlListener) accept() {
	for {
		conn, err := c.listener.Accept()
		if err != nil {
			return
		}
		go c.handle(conn)
	}
}

func (c *ControlListener) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		return
	}
	command := strings.TrimSpace(strings.ToUpper(scanner.Text()))

	switch command {
	case "STOP":
		fmt.Fprintln(conn, "OK")
		select {
		case c.Stop <- struct{}{}:
		default:
		}
	default:
		fmt.Fprintln(conn, "ERR unknown command")
	}
}

// Addr reports the bound address, useful when the port was chosen by the OS.
func (c *ControlListener) Addr() net.Addr {
	return c.listener.Addr()
}

func (c *ControlListener) Close() error {
	return c.listener.Close()
}
