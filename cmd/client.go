package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jobgate/core/model"
	"github.com/kilianp07/jobgate/core/protocol"
	"github.com/kilianp07/jobgate/infra/udp"
)

var (
	serverAddr string
	textMode   bool
	timeout    time.Duration
)

func addClientFlags(c *cobra.Command) {
	c.Flags().StringVarP(&serverAddr, "server", "s", "127.0.0.1:1234", "server address host:port")
	c.Flags().BoolVar(&textMode, "text", false, "use the semicolon text format instead of JSON-RPC")
	c.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for replies")
}

func encoding() model.Encoding {
	if textMode {
		return model.EncodingText
	}
	return model.EncodingJSON
}

// roundTrip sends req and prints up to want replies.
func roundTrip(cmd *cobra.Command, req protocol.Request, want int) error {
	c, err := udp.Dial(serverAddr)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Send(req); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	for i := 0; i < want; i++ {
		resp, err := c.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("no reply within %s", timeout)
			}
			return err
		}
		if resp.IsError() {
			fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", resp.Error)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Result)
		if !strings.HasPrefix(resp.Result, "Request will be processed") {
			return nil
		}
	}
	return nil
}
