package udp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kilianp07/jobgate/core/protocol"
)

// Client sends requests to a jobgate server and reads its replies.
type Client struct {
	conn *net.UDPConn
}

// Dial connects a client socket to addr.
func Dial(addr string) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("udp: dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Send encodes and writes req.
func (c *Client) Send(req protocol.Request) error {
	payload, err := protocol.EncodeRequest(req)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(payload)
	return err
}

// Receive waits for the next reply until ctx is done.
func (c *Client) Receive(ctx context.Context) (protocol.Response, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return protocol.Response{}, err
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetReadDeadline(time.Now()) })
	defer stop()
	buf := make([]byte, MaxDatagram)
	n, err := c.conn.Read(buf)
	if err != nil {
		if ctx.Err() != nil {
			return protocol.Response{}, ctx.Err()
		}
		return protocol.Response{}, err
	}
	return protocol.DecodeResponse(buf[:n])
}

// Close closes the socket.
func (c *Client) Close() error { return c.conn.Close() }
