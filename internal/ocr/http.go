package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/honk-lang/honk/internal/config"
	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

// HTTP talks to an OCR sidecar service. The sidecar owns the actual
// recognition model; honk only ships pixels to it and conditions back.
type HTTP struct {
	client *resty.Client
}

// NewHTTP builds a client for the sidecar at cfg.URL.
func NewHTTP(cfg config.OCRConfig) *HTTP {
	client := resty.New()
	client.SetBaseURL(cfg.URL)
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	return &HTTP{client: client}
}

type extractRequest struct {
	ImagePNG string    `json:"image_png"`
	Zone     geom.Zone `json:"zone"`
}

type extractResponse struct {
	Text string `json:"text"`
}

type evaluateRequest struct {
	Text      string `json:"text"`
	Condition string `json:"condition"`
}

type evaluateResponse struct {
	Verdict bool `json:"verdict"`
}

// ExtractText sends the snapshot's pixels to the sidecar as base64 PNG
// and returns the recognized text.
func (h *HTTP) ExtractText(ctx context.Context, snap screen.Snapshot) (string, error) {
	if snap.Img == nil {
		return "", fmt.Errorf("extract from empty snapshot")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, snap.Img); err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	req := extractRequest{
		ImagePNG: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Zone:     snap.Zone,
	}

	var result extractResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/v1/extract")
	if err != nil {
		return "", fmt.Errorf("ocr extract: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ocr extract: service returned %s: %s", resp.Status(), resp.String())
	}
	return result.Text, nil
}

// EvaluateCondition asks the sidecar for a verdict on expr given the
// extracted text.
func (h *HTTP) EvaluateCondition(ctx context.Context, text, expr string) (bool, error) {
	var result evaluateResponse
	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(evaluateRequest{Text: text, Condition: expr}).
		SetResult(&result).
		Post("/v1/evaluate")
	if err != nil {
		return false, fmt.Errorf("ocr evaluate: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("ocr evaluate: service returned %s: %s", resp.Status(), resp.String())
	}
	return result.Verdict, nil
}
