package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zoning-cli/internal/report"
)

var (
	reportAddress  string
	reportOrgID    string
	reportUserID   string
	reportClientID string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a feasibility report for a single address",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "report")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Generator.GenerateReport(ctx, report.GenerateRequest{
			Address:  reportAddress,
			OrgID:    reportOrgID,
			UserID:   reportUserID,
			ClientID: reportClientID,
		})
		if err != nil {
			return eris.Wrap(err, "generate report")
		}

		zap.L().Info("report complete",
			zap.String("report_id", result.ReportID),
			zap.String("status", string(result.Status)),
			zap.String("bbl", result.BBL),
		)

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportAddress, "address", "", "property address (required)")
	reportCmd.Flags().StringVar(&reportOrgID, "org", "", "organization ID (required)")
	reportCmd.Flags().StringVar(&reportUserID, "user", "", "user ID (required)")
	reportCmd.Flags().StringVar(&reportClientID, "client", "", "client ID")
	_ = reportCmd.MarkFlagRequired("address")
	_ = reportCmd.MarkFlagRequired("org")
	_ = reportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(reportCmd)
}
