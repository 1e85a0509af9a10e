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
	assemblageAddresses []string
	assemblageOrgID     string
	assemblageUserID    string
	assemblageClientID  string
)

var assemblageCmd = &cobra.Command{
	Use:   "assemblage",
	Short: "Generate an assemblage report for 2-3 adjacent lots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, "report")
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Generator.GenerateAssemblageReport(ctx, report.AssemblageRequest{
			Addresses: assemblageAddresses,
			OrgID:     assemblageOrgID,
			UserID:    assemblageUserID,
			ClientID:  assemblageClientID,
		})
		if err != nil {
			return eris.Wrap(err, "generate assemblage report")
		}

		zap.L().Info("assemblage report complete",
			zap.String("report_id", result.ReportID),
			zap.String("status", string(result.Status)),
			zap.Int("lots", len(assemblageAddresses)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	assemblageCmd.Flags().StringArrayVar(&assemblageAddresses, "address", nil, "lot address, repeat 2-3 times (required)")
	assemblageCmd.Flags().StringVar(&assemblageOrgID, "org", "", "organization ID (required)")
	assemblageCmd.Flags().StringVar(&assemblageUserID, "user", "", "user ID (required)")
	assemblageCmd.Flags().StringVar(&assemblageClientID, "client", "", "client ID")
	_ = assemblageCmd.MarkFlagRequired("address")
	_ = assemblageCmd.MarkFlagRequired("org")
	_ = assemblageCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(assemblageCmd)
}
