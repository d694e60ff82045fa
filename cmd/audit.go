package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/jobgate/core/audit"
	"github.com/kilianp07/jobgate/pkg/export"
)

var (
	exportFormat string
	exportSince  time.Duration
	exportLimit  int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of a file backed store",
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print audit records as JSON or CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		switch cfg.Audit.Backend {
		case audit.BackendJSONL, audit.BackendRotating, audit.BackendSQLite:
		default:
			return fmt.Errorf("audit backend %q is not file backed", cfg.Audit.Backend)
		}
		store, err := audit.Open(cfg.Audit)
		if err != nil {
			return err
		}
		defer store.Close()
		q := audit.Query{Limit: exportLimit}
		if exportSince > 0 {
			q.Start = time.Now().Add(-exportSince)
		}
		recs, err := store.Query(cmd.Context(), q)
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), exportFormat, recs)
	},
}

func init() {
	auditExportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatJSON, "output format: json or csv")
	auditExportCmd.Flags().DurationVar(&exportSince, "since", 0, "only records newer than this duration")
	auditExportCmd.Flags().IntVar(&exportLimit, "limit", 0, "keep only the most recent N records")
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}
