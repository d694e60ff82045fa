package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jobgate/app"
	"github.com/kilianp07/jobgate/config"
	"github.com/kilianp07/jobgate/infra/logger"
)

var (
	cfgPath    string
	listenPort int
)

var rootCmd = &cobra.Command{
	Use:   "jobgate",
	Short: "Admission control service for display jobs over UDP",
	RunE:  serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admission server",
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().IntVarP(&listenPort, "port", "p", 0, "UDP port to listen on (1-65535), overrides server.listen_addr")
	}
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		if err := cfg.Server.WithPort(listenPort); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	fmt.Fprintf(cmd.OutOrStdout(), "Server is running on %s. Waiting for requests...\n", svc.Addr())
	return svc.Run(ctx)
}
