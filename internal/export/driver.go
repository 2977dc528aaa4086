// =============================================================================
// Genset Invoicer - Batch Export Driver
// =============================================================================
//
// The driver turns a list of invoices into PDF files, one after another.
//
// PER ITEM:
//   1. Render the invoice (theme, company profile).
//   2. Capture the rendered document under a per-item timeout, through the
//      optional circuit breaker and bounded retry.
//   3. Write the bytes to the output directory.
//   4. Report success to OnExported, then report progress.
//
// A failing item is logged and recorded; the batch continues. Cancelling
// the parent context stops the batch between items.
//
// =============================================================================

package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/capture"
	"github.com/nilefleet/genset-invoicer/internal/metrics"
	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/resilience"
	"github.com/nilefleet/genset-invoicer/internal/types"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// DefaultItemTimeout bounds one render+capture.
const DefaultItemTimeout = 60 * time.Second

// Config holds the batch settings.
type Config struct {
	Theme   render.Theme
	Profile types.CompanyProfile

	// OutputDir receives the exported files.
	OutputDir string
	// FileFormat names each file, see utils.GenerateOutputFileName.
	FileFormat string

	// ItemTimeout bounds one item. Zero means DefaultItemTimeout.
	ItemTimeout time.Duration

	Retry resilience.Config
	// Breaker enables the circuit breaker around capture.
	Breaker        bool
	BreakerTimeout time.Duration
}

// ItemResult is the outcome of one invoice.
type ItemResult struct {
	InvoiceID  string
	Serial     string
	Customer   string
	OutputPath string
	Err        error
	Attempts   int
	Duration   time.Duration
}

// OK reports whether the item was exported.
func (r ItemResult) OK() bool {
	return r.Err == nil
}

// Report is the outcome of one batch.
type Report struct {
	// Processed counts the items attempted. It equals the input length
	// unless the context was cancelled.
	Processed int
	Results   []ItemResult
}

// Failed returns the results that carry an error.
func (r Report) Failed() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Succeeded returns the results that were exported.
func (r Report) Succeeded() []ItemResult {
	var out []ItemResult
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Driver exports invoices sequentially.
type Driver struct {
	cfg      Config
	renderer *render.Renderer
	capturer capture.Capturer
	breaker  *gobreaker.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *zap.Logger

	onExported func(id string)
	onProgress func(current, total int, label string)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics records per-item metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithExportedHook is called with the invoice id after each success.
func WithExportedHook(fn func(id string)) Option {
	return func(d *Driver) {
		d.onExported = fn
	}
}

// WithProgress is called after every item, successful or not.
func WithProgress(fn func(current, total int, label string)) Option {
	return func(d *Driver) {
		d.onProgress = fn
	}
}

// New creates a driver.
func New(cfg Config, renderer *render.Renderer, capturer capture.Capturer, opts ...Option) *Driver {
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	if cfg.FileFormat == "" {
		cfg.FileFormat = utils.DefaultFileFormat
	}

	d := &Driver{
		cfg:      cfg,
		renderer: renderer,
		capturer: capturer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if cfg.Breaker {
		d.breaker = resilience.NewCircuitBreaker("capture-"+capturer.Name(), cfg.BreakerTimeout)
	}
	return d
}

// Run exports invoices in input order.
//
// PARAMETERS:
//   - ctx: Cancelling it stops the batch before the next item.
//   - invoices: The invoices to export, usually one customer's.
//
// RETURNS:
//   - A Report with one ItemResult per processed invoice.
func (d *Driver) Run(ctx context.Context, invoices []types.Invoice) Report {
	report := Report{Results: make([]ItemResult, 0, len(invoices))}
	total := len(invoices)

	if d.metrics != nil {
		d.metrics.IncrBatch()
	}
	if err := utils.EnsureDir(d.cfg.OutputDir); err != nil {
		d.logger.Error("cannot prepare output directory", zap.String("dir", d.cfg.OutputDir), zap.Error(err))
	}

	for i := range invoices {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("export cancelled",
				zap.Int("processed", report.Processed),
				zap.Int("total", total),
				zap.Error(err))
			break
		}

		inv := &invoices[i]
		result := d.exportOne(ctx, inv)
		report.Results = append(report.Results, result)
		report.Processed++

		if d.metrics != nil {
			d.metrics.RecordItem(d.capturer.Name(), result.OK(), result.Attempts, result.Duration)
		}

		if result.OK() {
			d.logger.Debug("invoice exported",
				zap.String("serial", result.Serial),
				zap.String("path", result.OutputPath),
				zap.Int("attempts", result.Attempts),
				zap.Duration("duration", result.Duration))
			if d.onExported != nil {
				d.onExported(inv.ID)
			}
		} else {
			d.logger.Error("invoice export failed",
				zap.String("serial", result.Serial),
				zap.String("booking_ref", result.InvoiceID),
				zap.Int("attempts", result.Attempts),
				zap.Error(result.Err))
		}

		if d.onProgress != nil {
			d.onProgress(i+1, total, "Exporting "+inv.SerialNumber)
		}
	}

	return report
}

func (d *Driver) exportOne(parent context.Context, inv *types.Invoice) ItemResult {
	start := time.Now()
	result := ItemResult{
		InvoiceID: inv.ID,
		Serial:    inv.SerialNumber,
		Customer:  inv.CustomerName,
	}

	ctx, cancel := context.WithTimeout(parent, d.cfg.ItemTimeout)
	defer cancel()

	out, err := d.renderer.Render(inv, d.cfg.Theme, d.cfg.Profile)
	if err != nil {
		result.Err = fmt.Errorf("render %s: %w", inv.SerialNumber, err)
		result.Duration = time.Since(start)
		return result
	}

	data, attempts, err := resilience.Guard(ctx, d.breaker, d.cfg.Retry, func(ctx context.Context) ([]byte, error) {
		data, err := d.capturer.Capture(ctx, out)
		if err != nil && !retryableCapture(err) {
			return nil, resilience.Permanent(err)
		}
		return data, err
	})
	result.Attempts = attempts
	if err != nil {
		result.Err = fmt.Errorf("capture %s: %w", inv.SerialNumber, err)
		result.Duration = time.Since(start)
		return result
	}

	name := utils.GenerateOutputFileName(d.cfg.FileFormat, map[string]string{
		"serial":   inv.SerialNumber,
		"customer": inv.CustomerName,
		"booking":  inv.BookingRef,
	}, ".pdf")
	path := filepath.Join(d.cfg.OutputDir, name)

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		result.Err = fmt.Errorf("write %s: %w", inv.SerialNumber, err)
		result.Duration = time.Since(start)
		return result
	}

	result.OutputPath = path
	result.Duration = time.Since(start)
	return result
}

// retryableCapture reports whether another attempt could succeed. Bad
// input and bad images fail the same way every time.
func retryableCapture(err error) bool {
	var capErr *capture.Error
	if errors.As(err, &capErr) {
		switch capErr.Code {
		case capture.ErrCodeInvalidInput, capture.ErrCodeInvalidImage:
			return false
		}
	}
	return true
}

// ErrorType classifies a failed result for the error log.
func ErrorType(err error) string {
	var capErr *capture.Error
	if errors.As(err, &capErr) {
		return capErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return capture.ErrCodeTimeout
	}
	if errors.Is(err, gobreaker.ErrOpenState) {
		return "BREAKER_OPEN"
	}
	return "EXPORT_FAILED"
}
