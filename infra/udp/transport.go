// Package udp is the datagram transport in front of the dispatch controller.
// A reader goroutine decodes requests and submits them; replies go through a
// bounded outbox drained by a single writer so the controller never waits on
// the socket.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/kilianp07/jobgate/core/dispatch"
	"github.com/kilianp07/jobgate/core/logger"
	"github.com/kilianp07/jobgate/core/monitoring"
	"github.com/kilianp07/jobgate/core/protocol"
)

// Submitter receives decoded requests.
type Submitter interface {
	Submit(ctx context.Context, sub dispatch.Submission) error
}

type outbound struct {
	to      netip.AddrPort
	payload []byte
}

// Transport owns the UDP socket. It implements dispatch.Emitter.
type Transport struct {
	conn *net.UDPConn
	log  logger.Logger

	mu     sync.RWMutex
	closed bool
	outbox chan outbound
	writer sync.WaitGroup
}

// Listen binds the socket and starts the reply writer.
func Listen(cfg Config, log logger.Logger) (*Transport, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	addr, err := net.ResolveUDPAddr("udp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s: %w", cfg.ListenAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: listen %s: %w", cfg.ListenAddr, err)
	}
	t := &Transport{
		conn:   conn,
		log:    log,
		outbox: make(chan outbound, cfg.OutboxSize),
	}
	t.writer.Add(1)
	go t.writeLoop()
	log.Infof("listening for datagrams on %s", conn.LocalAddr())
	return t, nil
}

// Addr returns the bound address.
func (t *Transport) Addr() netip.AddrPort {
	return t.conn.LocalAddr().(*net.UDPAddr).AddrPort()
}

// Serve reads datagrams until ctx is canceled, the socket is closed or the
// submitter is closed. Malformed datagrams are dropped.
func (t *Transport) Serve(ctx context.Context, sub Submitter) error {
	stop := context.AfterFunc(ctx, func() {
		_ = t.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, MaxDatagram)
	for {
		n, from, err := t.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			t.log.Errorf("read datagram: %v", err)
			continue
		}
		datagramsTotal.WithLabelValues("received").Inc()
		req, err := protocol.Decode(buf[:n])
		if err != nil {
			datagramsTotal.WithLabelValues("malformed").Inc()
			t.log.Debugw("dropping datagram", map[string]any{"from": from.String(), "error": err.Error()})
			continue
		}
		err = sub.Submit(ctx, dispatch.Submission{Request: req, Sender: from})
		switch {
		case err == nil:
		case errors.Is(err, dispatch.ErrClosed) || ctx.Err() != nil:
			return nil
		default:
			datagramsTotal.WithLabelValues("submit_error").Inc()
			t.log.Errorf("submit from %s: %v", from, err)
		}
	}
}

// Emit encodes resp and queues it for the writer. A full or closed outbox
// drops the reply.
func (t *Transport) Emit(to netip.AddrPort, resp protocol.Response) {
	payload, err := protocol.Encode(resp)
	if err != nil {
		repliesTotal.WithLabelValues("error").Inc()
		t.log.Errorf("encode reply for %s: %v", to, err)
		return
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		repliesTotal.WithLabelValues("dropped").Inc()
		return
	}
	select {
	case t.outbox <- outbound{to: to, payload: payload}:
		outboxDepth.Inc()
	default:
		repliesTotal.WithLabelValues("dropped").Inc()
		t.log.Warnf("outbox full, dropping reply to %s", to)
	}
}

func (t *Transport) writeLoop() {
	defer t.writer.Done()
	for out := range t.outbox {
		outboxDepth.Dec()
		if _, err := t.conn.WriteToUDPAddrPort(out.payload, out.to); err != nil {
			repliesTotal.WithLabelValues("error").Inc()
			t.log.Errorf("write reply to %s: %v", out.to, err)
			monitoring.CaptureException(err, map[string]string{"component": "udp", "peer": out.to.String()})
			continue
		}
		repliesTotal.WithLabelValues("sent").Inc()
	}
}

// Close flushes queued replies and closes the socket. Serve returns once the
// socket is closed.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.outbox)
	t.mu.Unlock()
	t.writer.Wait()
	return t.conn.Close()
}

var _ dispatch.Emitter = (*Transport)(nil)
