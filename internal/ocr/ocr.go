// Package ocr is the boundary to the external text-analysis
// collaborator. The engine never inspects text itself: the Check verb
// hands a captured zone to a Backend and gets back the extracted text
// and a verdict on the script's condition expression.
package ocr

import (
	"context"
	"fmt"

	"github.com/honk-lang/honk/internal/config"
	"github.com/honk-lang/honk/internal/screen"
)

// Backend extracts text from captured pixels and evaluates condition
// expressions against it. Both calls honor ctx deadlines.
type Backend interface {
	ExtractText(ctx context.Context, snap screen.Snapshot) (string, error)
	EvaluateCondition(ctx context.Context, text, expr string) (bool, error)
}

// New builds the backend selected by cfg.
func New(cfg config.OCRConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "rules":
		return Rules{}, nil
	case "http":
		return NewHTTP(cfg), nil
	default:
		return nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}
