// =============================================================================
// Genset Invoicer - Export Command
// =============================================================================
//
// This file defines the 'export' command, which produces one PDF per
// invoice of a customer.
//
// COMMAND USAGE:
//   invoicer export --customer c [--theme t] [--out-dir d] [--metrics-file f]
//
// PROCESSING PIPELINE:
//   1. Build the invoice list and select the customer's invoices
//   2. Export them one after another (render, capture, write)
//   3. Mark every exported invoice as used
//   4. Write the export summary (and an error log if anything failed)
//   5. Optionally write Prometheus metrics in textfile format
//
// A failing invoice does not stop the batch.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/export"
	"github.com/nilefleet/genset-invoicer/internal/invoicing"
	"github.com/nilefleet/genset-invoicer/internal/metrics"
	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/resilience"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

var (
	exportCustomer    string
	exportTheme       string
	exportOutDir      string
	exportMetricsFile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every invoice of a customer as PDF",
	Long: `Export renders and captures every invoice of one customer, strictly one
after another, and writes one PDF per invoice to the output directory.

A failed invoice is recorded and the batch continues. Details of every
invoice go to export_summary_<time>.txt in the output directory; failures
also go to export_errors_<time>.txt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportCustomer, "customer", "c", "", "Customer whose invoices are exported (required)")
	exportCmd.Flags().StringVarP(&exportTheme, "theme", "t", "", "Document theme (default render.theme)")
	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", "", "Output directory (default output_dir)")
	exportCmd.Flags().StringVar(&exportMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	_ = exportCmd.MarkFlagRequired("customer")
}

func runExport(cmd *cobra.Command) error {
	startTime := time.Now()
	runID := uuid.New().String()
	log := app.logger.With(zap.String("run_id", runID))

	if err := app.requireCustomer(exportCustomer); err != nil {
		return err
	}
	theme, err := app.theme(exportTheme)
	if err != nil {
		return err
	}
	outDir := exportOutDir
	if outDir == "" {
		outDir = app.cfg.OutputDir
	}

	invoices, err := app.invoices()
	if err != nil {
		return err
	}
	all := invoices
	invoices = invoicing.ForCustomer(all, exportCustomer)

	out := cmd.OutOrStdout()
	if len(invoices) == 0 {
		fmt.Fprintf(out, "No invoices for %s.\n", exportCustomer)
		if customers := invoicing.Customers(all); len(customers) > 0 {
			fmt.Fprintf(out, "Customers with invoices: %s\n", strings.Join(customers, ", "))
		}
		return nil
	}

	capturer, err := app.newCapturer()
	if err != nil {
		return err
	}
	defer capturer.Close()

	renderer, err := render.New()
	if err != nil {
		return err
	}

	m := metrics.NewMetrics()
	progress := &progressLine{w: cmd.ErrOrStderr()}
	driver := export.New(export.Config{
		Theme:       theme,
		Profile:     app.session.Company(),
		OutputDir:   outDir,
		FileFormat:  app.cfg.Export.FileFormat,
		ItemTimeout: app.cfg.Export.Timeout,
		Retry: resilience.Config{
			MaxRetries:     app.cfg.Export.MaxRetries,
			InitialBackoff: app.cfg.Export.InitialBackoff,
		},
		Breaker:        app.cfg.Export.Breaker,
		BreakerTimeout: app.cfg.Export.BreakerTimeout,
	}, renderer, capturer,
		export.WithLogger(log),
		export.WithMetrics(m),
		export.WithExportedHook(app.session.MarkExported),
		export.WithProgress(progress.Update),
	)

	log.Info("export started",
		zap.String("customer", exportCustomer),
		zap.Int("invoices", len(invoices)),
		zap.String("backend", capturer.Name()),
		zap.String("theme", theme.String()))

	report := driver.Run(cmd.Context(), invoices)
	endTime := time.Now()
	progress.Done()

	// Exported marks are kept even when the batch was interrupted.
	if err := app.save(); err != nil {
		return err
	}

	summary := report.Summary(runID, exportCustomer, capturer.Name(), theme.String(), len(invoices), startTime, endTime)
	summaryPath, err := utils.WriteSummaryLog(summary, outDir)
	if err != nil {
		log.Warn("failed to write export summary", zap.Error(err))
	}
	errorLogPath, err := utils.WriteErrorLog(report.ErrorEntries(endTime), outDir, startTime)
	if err != nil {
		log.Warn("failed to write export error log", zap.Error(err))
	}

	if exportMetricsFile != "" {
		if err := m.WriteTextfile(exportMetricsFile); err != nil {
			log.Warn("failed to write metrics", zap.Error(err))
		}
	}

	log.Info("export finished",
		zap.Int("processed", report.Processed),
		zap.Int("failed", len(report.Failed())),
		zap.String("summary", summaryPath),
		zap.Duration("elapsed", endTime.Sub(startTime)))

	fmt.Fprintf(out, "Processed %d invoices\n", report.Processed)
	if errorLogPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d invoice(s) failed, see %s\n", len(report.Failed()), errorLogPath)
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("export interrupted after %d of %d invoices: %w", report.Processed, len(invoices), err)
	}
	return nil
}

// progressLine redraws one "[n/total] label" line in place.
type progressLine struct {
	w     io.Writer
	drawn bool
}

func (p *progressLine) Update(current, total int, label string) {
	fmt.Fprintf(p.w, "\r[%d/%d] %s", current, total, label)
	p.drawn = true
}

// Done terminates the line, whether or not the batch ran to the end.
func (p *progressLine) Done() {
	if p.drawn {
		fmt.Fprintln(p.w)
		p.drawn = false
	}
}
