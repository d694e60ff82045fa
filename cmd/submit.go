package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/jobgate/core/protocol"
)

var (
	submitID    string
	submitDelay int64
	submitAt    string
)

var submitCmd = &cobra.Command{
	Use:   "submit <configuration> <priority>",
	Short: "Submit a request and print the ack and the outcome",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := protocol.Request{
			Method:   protocol.MethodProcessRequest,
			ID:       submitID,
			Encoding: encoding(),
			Params: protocol.Params{
				Configuration: protocol.Text(args[0]),
				Priority:      protocol.Text(args[1]),
				DelayMs:       submitDelay,
				ScheduledAt:   submitAt,
			},
		}
		return roundTrip(cmd, req, 2)
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitID, "id", "", "request id; the server assigns one when empty")
	submitCmd.Flags().Int64Var(&submitDelay, "delay-ms", 0, "dispatch delay in delayed mode")
	submitCmd.Flags().StringVar(&submitAt, "at", "", "RFC3339 dispatch time in delayed mode")
	addClientFlags(submitCmd)
	rootCmd.AddCommand(submitCmd)
}
