package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/zoning-cli/internal/model"
	"github.com/sells-group/zoning-cli/internal/report"
)

var (
	batchFile     string
	batchLimit    int
	batchOrgID    string
	batchUserID   string
	batchClientID string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate reports for a CSV file of addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		addresses, err := readAddressFile(batchFile)
		if err != nil {
			return err
		}

		return processBatch(ctx, addresses, batchLimit, cfg.Batch.MaxConcurrentReports, func(ctx context.Context, address string) (*report.Result, error) {
			return env.Generator.GenerateReport(ctx, report.GenerateRequest{
				Address:  address,
				OrgID:    batchOrgID,
				UserID:   batchUserID,
				ClientID: batchClientID,
			})
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "CSV file with one address per row (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of addresses to process (0 = all)")
	batchCmd.Flags().StringVar(&batchOrgID, "org", "", "organization ID (required)")
	batchCmd.Flags().StringVar(&batchUserID, "user", "", "user ID (required)")
	batchCmd.Flags().StringVar(&batchClientID, "client", "", "client ID")
	_ = batchCmd.MarkFlagRequired("file")
	_ = batchCmd.MarkFlagRequired("org")
	_ = batchCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(batchCmd)
}

// readAddressFile reads addresses from the first CSV column, skipping
// blank rows and an optional "address" header.
func readAddressFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: open address file")
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var addresses []string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "batch: read address file")
		}
		if len(row) == 0 {
			continue
		}
		addr := strings.TrimSpace(row[0])
		if addr == "" || strings.EqualFold(addr, "address") {
			continue
		}
		addresses = append(addresses, addr)
	}

	return addresses, nil
}

// generateFunc is the callback signature for generating one report.
type generateFunc func(ctx context.Context, address string) (*report.Result, error)

// processBatch applies limit, then processes addresses concurrently. A
// failed report counts against the failed total but never aborts the batch.
func processBatch(ctx context.Context, addresses []string, limit, concurrency int, generate generateFunc) error {
	if len(addresses) == 0 {
		zap.L().Info("no addresses to process")
		return nil
	}

	if limit > 0 && len(addresses) > limit {
		addresses = addresses[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("addresses", len(addresses)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, address := range addresses {
		g.Go(func() error {
			log := zap.L().With(zap.String("address", address))

			result, err := generate(gctx, address)
			if err != nil {
				failed.Add(1)
				log.Error("report generation failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			if result.Status == model.ReportStatusFailed {
				failed.Add(1)
				log.Warn("report marked failed", zap.String("report_id", result.ReportID), zap.String("reason", result.Error))
				return nil
			}

			succeeded.Add(1)
			log.Info("report complete",
				zap.String("report_id", result.ReportID),
				zap.String("bbl", result.BBL),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
