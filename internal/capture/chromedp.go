package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/render"
)

const (
	defaultChromeTimeout = 60 * time.Second

	a4WidthMM  = 210
	a4HeightMM = 297
)

// ChromeConfig contains configuration for the chromedp backend
type ChromeConfig struct {
	// Timeout bounds one capture when the caller's context has no deadline.
	Timeout time.Duration
	// RemoteURL is the DevTools URL of a running Chrome (optional).
	// If empty, chromedp launches a new browser.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// ChromeCapturer prints HTML to PDF using the Chrome DevTools Protocol.
// One browser is shared by every capture; each capture gets its own tab.
type ChromeCapturer struct {
	config      *ChromeConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewChromeCapturer creates a chromedp-based capturer.
func NewChromeCapturer(config *ChromeConfig) (*ChromeCapturer, error) {
	if config == nil {
		config = &ChromeConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultChromeTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &ChromeCapturer{
		config: config,
		logger: logger,
	}

	if config.RemoteURL != "" {
		c.allocCtx, c.allocCancel = chromedp.NewRemoteAllocator(context.Background(), config.RemoteURL)
		return c, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	c.allocCtx, c.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)

	return c, nil
}

// Name implements Capturer.
func (c *ChromeCapturer) Name() string {
	return BackendChromedp
}

// Capture prints out.HTML as an A4 PDF.
func (c *ChromeCapturer) Capture(ctx context.Context, out *render.Output) ([]byte, error) {
	if out == nil || strings.TrimSpace(out.HTML) == "" {
		return nil, NewError(ErrCodeInvalidInput, "HTML content is empty", nil)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(c.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			c.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer tabCancel()

	// Tie the tab's lifetime to the caller's context.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var pdfData []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, out.HTML).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(a4WidthMM)).
				WithPaperHeight(mmToInches(a4HeightMM)).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(ErrCodeTimeout, "PDF capture timed out", err)
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, NewError(ErrCodeTimeout, "PDF capture was cancelled", err)
		}
		c.logger.Error("chromedp capture failed", zap.String("title", out.Title), zap.Error(err))
		return nil, NewError(ErrCodeFailed, "chromedp execution failed", err)
	}

	if len(pdfData) == 0 {
		return nil, NewError(ErrCodeEmptyDocument, "generated PDF is empty", nil)
	}

	c.logger.Debug("PDF captured",
		zap.String("title", out.Title),
		zap.Int("bytes", len(pdfData)))

	return pdfData, nil
}

// Close shuts the browser down.
func (c *ChromeCapturer) Close() error {
	if c.allocCancel != nil {
		c.allocCancel()
	}
	return nil
}
