package udp

import (
	"fmt"
	"net"
	"strconv"
)

const (
	DefaultListenAddr = ":1234"
	DefaultOutboxSize = 256
	// MaxDatagram is the largest payload read from the socket.
	MaxDatagram = 64 * 1024
)

// Config describes the UDP socket and its reply outbox.
type Config struct {
	ListenAddr string `json:"listen_addr"`
	OutboxSize int    `json:"outbox_size"`
}

// SetDefaults fills in unset values.
func (c *Config) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = DefaultOutboxSize
	}
}

// Validate checks that ListenAddr is host:port with a usable port.
func (c Config) Validate() error {
	_, port, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("udp: listen_addr %q: %w", c.ListenAddr, err)
	}
	return ValidatePort(port)
}

// ValidatePort accepts 0 (ephemeral) through 65535.
func ValidatePort(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("udp: invalid port %q", port)
	}
	return nil
}
