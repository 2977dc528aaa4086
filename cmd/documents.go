package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nilefleet/genset-invoicer/internal/capture"
	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/resilience"
	"github.com/nilefleet/genset-invoicer/internal/types"
	"github.com/nilefleet/genset-invoicer/pkg/utils"
)

// theme resolves a --theme flag, falling back to render.theme.
func (a *application) theme(flag string) (render.Theme, error) {
	if flag == "" {
		return a.cfg.Theme(), nil
	}
	return render.ParseTheme(flag)
}

// newCapturer builds the configured capture backend.
func (a *application) newCapturer() (capture.Capturer, error) {
	return capture.New(capture.Options{
		Backend: a.cfg.Export.Backend,
		Chrome: capture.ChromeConfig{
			Timeout:   a.cfg.Export.Timeout,
			RemoteURL: a.cfg.Chrome.RemoteURL,
			NoSandbox: a.cfg.Chrome.NoSandbox,
			Logger:    a.logger.Named("chrome"),
		},
	})
}

// writeDocument renders doc and writes it to out. The extension of out
// picks the format: ".pdf" is captured, anything else is written as HTML.
// An empty out writes "<print title>.html" to the output directory.
func (a *application) writeDocument(ctx context.Context, doc types.Document, theme render.Theme, out string) (string, error) {
	renderer, err := render.New()
	if err != nil {
		return "", err
	}
	rendered, err := renderer.Render(doc, theme, a.session.Company())
	if err != nil {
		return "", err
	}

	if out == "" {
		out = filepath.Join(a.cfg.OutputDir, rendered.Title+".html")
	}

	if !strings.EqualFold(filepath.Ext(out), ".pdf") {
		if err := utils.WriteFileAtomic(out, []byte(rendered.HTML), 0644); err != nil {
			return "", err
		}
		return out, nil
	}

	capturer, err := a.newCapturer()
	if err != nil {
		return "", err
	}
	defer capturer.Close()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Export.Timeout)
	defer cancel()

	retry := resilience.Config{MaxRetries: a.cfg.Export.MaxRetries, InitialBackoff: a.cfg.Export.InitialBackoff}
	data, attempts, err := resilience.Guard(ctx, nil, retry, func(ctx context.Context) ([]byte, error) {
		return capturer.Capture(ctx, rendered)
	})
	if err != nil {
		return "", fmt.Errorf("capture %s: %w", doc.Serial(), err)
	}
	a.logger.Debug("document captured",
		zap.String("serial", doc.Serial()),
		zap.String("backend", capturer.Name()),
		zap.Int("attempts", attempts))

	if err := utils.WriteFileAtomic(out, data, 0644); err != nil {
		return "", err
	}
	return out, nil
}

// requireCustomer checks that name has a policy and suggests the closest
// known name when it has not.
func (a *application) requireCustomer(name string) error {
	if _, ok := a.session.Policy(name); ok {
		return nil
	}
	if suggestion, ok := a.session.SuggestCustomer(name); ok {
		return fmt.Errorf("unknown customer %q (did you mean %q?)", name, suggestion)
	}
	return fmt.Errorf("unknown customer %q", name)
}
