package port

import (
	"fmt"
	"net"
)

// Available reports whether a TCP listener can be bound on port across all
// interfaces, the same address space the server binds.
func Available(port int) bool {
	return Check(port) == nil
}

// Check attempts to bind port and releases it immediately. The returned
// error explains why the port cannot be used.
func Check(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", port)
	}
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return fmt.Errorf("port %d unavailable: %w", port, err)
	}
	ln.Close()
	return nil
}

// Free asks the OS for a currently unused TCP port.
func Free() (int, error) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
