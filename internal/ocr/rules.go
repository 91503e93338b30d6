package ocr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/honk-lang/honk/internal/screen"
)

// ErrNoExtractor is returned by backends that cannot read text out of
// pixels. Zone-targeted checks still work against them through
// EvaluateCondition; template-text checks need the http backend.
var ErrNoExtractor = errors.New("text extraction not supported by this backend")

// Rules evaluates condition expressions locally without any external
// service. It is the default backend: scripts that only need pixel
// verbs never pay for a sidecar, and checks against it fail loudly
// instead of silently passing.
type Rules struct{}

func (Rules) ExtractText(_ context.Context, _ screen.Snapshot) (string, error) {
	return "", fmt.Errorf("%w: configure ocr.backend \"http\" to extract text", ErrNoExtractor)
}

func (Rules) EvaluateCondition(_ context.Context, text, expr string) (bool, error) {
	return Evaluate(text, expr)
}

// Static returns fixed text and evaluates conditions with the rule
// language. It exists for tests that need a deterministic Check verb.
type Static struct {
	Text string
	Err  error
}

func (s Static) ExtractText(_ context.Context, _ screen.Snapshot) (string, error) {
	return s.Text, s.Err
}

func (s Static) EvaluateCondition(_ context.Context, text, expr string) (bool, error) {
	return Evaluate(text, expr)
}

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Evaluate applies a condition expression to extracted text.
//
// Expressions are a prefix and an argument separated by a colon:
//
//	equals:Ready       text equals the argument after trimming
//	contains:42 items  case-insensitive substring
//	matches:^OK\b      Go regular expression
//	gt:100             first number in the text is greater
//	lt:5               first number in the text is smaller
//	empty              text is blank
//	not-empty          text is not blank
//
// A bare expression with no known prefix is shorthand for contains.
func Evaluate(text, expr string) (bool, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false, errors.New("empty condition expression")
	}

	trimmed := strings.TrimSpace(text)
	switch expr {
	case "empty":
		return trimmed == "", nil
	case "not-empty":
		return trimmed != "", nil
	}

	op, arg, found := strings.Cut(expr, ":")
	if !found {
		return containsFold(trimmed, expr), nil
	}

	switch op {
	case "equals":
		return trimmed == arg, nil
	case "contains":
		return containsFold(trimmed, arg), nil
	case "matches":
		re, err := regexp.Compile(arg)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", expr, err)
		}
		return re.MatchString(trimmed), nil
	case "gt", "lt":
		want, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return false, fmt.Errorf("condition %q: %w", expr, err)
		}
		numStr := numberPattern.FindString(trimmed)
		if numStr == "" {
			return false, nil
		}
		got, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return false, nil
		}
		if op == "gt" {
			return got > want, nil
		}
		return got < want, nil
	default:
		// Unknown prefix: the colon was part of the literal text.
		return containsFold(trimmed, expr), nil
	}
}

func containsFold(text, substr string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(substr))
}
