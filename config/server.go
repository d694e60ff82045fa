package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/kilianp07/jobgate/infra/udp"
)

// ServerConfig holds the listening sockets.
type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
	OutboxSize int    `json:"outbox_size"`
	// AdminAddr enables the HTTP admin API when set.
	AdminAddr string `json:"admin_addr"`
	// APIToken protects /api/ routes with a bearer token.
	APIToken string `json:"api_token"`
}

// SetDefaults fills in unset values.
func (c *ServerConfig) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = udp.DefaultListenAddr
	}
	if c.OutboxSize <= 0 {
		c.OutboxSize = udp.DefaultOutboxSize
	}
}

// Validate requires a listen port in 1..65535.
func (c ServerConfig) Validate() error {
	_, port, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen_addr %q: %w", c.ListenAddr, err)
	}
	if err := ValidatePort(port); err != nil {
		return err
	}
	if c.AdminAddr != "" {
		if _, _, err := net.SplitHostPort(c.AdminAddr); err != nil {
			return fmt.Errorf("admin_addr %q: %w", c.AdminAddr, err)
		}
	}
	return nil
}

// ValidatePort accepts port numbers 1 through 65535.
func ValidatePort(port string) error {
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port %q: must be 1-65535", port)
	}
	return nil
}

// WithPort replaces the port of ListenAddr, keeping the host.
func (c *ServerConfig) WithPort(port int) error {
	if err := ValidatePort(strconv.Itoa(port)); err != nil {
		return err
	}
	host, _, err := net.SplitHostPort(c.ListenAddr)
	if err != nil {
		host = ""
	}
	c.ListenAddr = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}

// UDP converts the section to the transport configuration.
func (c ServerConfig) UDP() udp.Config {
	return udp.Config{ListenAddr: c.ListenAddr, OutboxSize: c.OutboxSize}
}
