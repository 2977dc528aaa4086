// Package capture turns rendered documents into PDF bytes.
//
// Two backends exist. The chromedp backend prints the rendered HTML through
// headless Chrome and is pixel-faithful to the preview. The pdf backend lays
// the document out directly with gofpdf from the view model and needs no
// browser, which makes it the default for batch runs on servers.
package capture

import (
	"context"
	"fmt"
	"strings"

	"github.com/nilefleet/genset-invoicer/internal/render"
)

// Capturer produces document bytes from a rendered document. Implementations
// are not required to be safe for concurrent use.
type Capturer interface {
	Capture(ctx context.Context, out *render.Output) ([]byte, error)
	Name() string
	Close() error
}

// Backend names accepted by New.
const (
	BackendPDF      = "pdf"
	BackendChromedp = "chromedp"
)

// Error represents a failed capture.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Error codes for capture failures
const (
	ErrCodeTimeout       = "CAPTURE_TIMEOUT"
	ErrCodeFailed        = "CAPTURE_FAILED"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidImage  = "INVALID_IMAGE"
	ErrCodeEmptyDocument = "EMPTY_DOCUMENT"
)

// NewError creates a new capture Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Chrome  ChromeConfig
}

// New creates the capturer named by opts.Backend.
func New(opts Options) (Capturer, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendPDF:
		return NewPDFCapturer(), nil
	case BackendChromedp:
		return NewChromeCapturer(&opts.Chrome)
	default:
		return nil, fmt.Errorf("unknown capture backend %q (expected %s or %s)", opts.Backend, BackendPDF, BackendChromedp)
	}
}

// mmToInches converts millimeters to inches
func mmToInches(mm float64) float64 {
	return mm / 25.4
}
