package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jobgate/core/protocol"
)

var controlAliases = map[string]protocol.Method{
	"start":     protocol.MethodStartProcessing,
	"stop":      protocol.MethodStopProcessing,
	"busy":      protocol.MethodSetBusy,
	"available": protocol.MethodSetAvailable,
}

var controlCmd = &cobra.Command{
	Use:       "control <start|stop|busy|available>",
	Short:     "Send a control command to a running server",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"start", "stop", "busy", "available"},
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ok := controlAliases[args[0]]
		if !ok {
			m = protocol.Method(args[0])
		}
		if !m.Control() {
			return fmt.Errorf("%w: %q", protocol.ErrUnknownMethod, args[0])
		}
		return roundTrip(cmd, protocol.Request{Method: m, Encoding: encoding()}, 1)
	},
}

func init() {
	addClientFlags(controlCmd)
	rootCmd.AddCommand(controlCmd)
}
