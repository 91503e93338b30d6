package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/honk-lang/honk/internal/config"
	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

func testSnapshot() screen.Snapshot {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 0, 255})
		}
	}
	return screen.Snapshot{Img: img, Zone: geom.NewZone(10, 20, 8, 8)}
}

func TestHTTPExtractText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/extract" {
			t.Errorf("path = %q, want /v1/extract", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sekrit" {
			t.Errorf("authorization = %q", auth)
		}

		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Zone != geom.NewZone(10, 20, 8, 8) {
			t.Errorf("zone = %v", req.Zone)
		}
		if _, err := base64.StdEncoding.DecodeString(req.ImagePNG); err != nil {
			t.Errorf("image_png is not valid base64: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(extractResponse{Text: "Hello, pixels"})
	}))
	defer srv.Close()

	backend := NewHTTP(config.OCRConfig{URL: srv.URL, APIKey: "sekrit", Timeout: 2 * time.Second})
	text, err := backend.ExtractText(context.Background(), testSnapshot())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Hello, pixels" {
		t.Errorf("text = %q", text)
	}
}

func TestHTTPEvaluateCondition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/evaluate" {
			t.Errorf("path = %q, want /v1/evaluate", r.URL.Path)
		}
		var req evaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(evaluateResponse{Verdict: req.Condition == "contains:ok"})
	}))
	defer srv.Close()

	backend := NewHTTP(config.OCRConfig{URL: srv.URL, Timeout: 2 * time.Second})

	verdict, err := backend.EvaluateCondition(context.Background(), "all ok", "contains:ok")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !verdict {
		t.Error("expected true verdict")
	}

	verdict, err = backend.EvaluateCondition(context.Background(), "all ok", "contains:nope")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if verdict {
		t.Error("expected false verdict")
	}
}

func TestHTTPServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	backend := NewHTTP(config.OCRConfig{URL: srv.URL, Timeout: 2 * time.Second})
	if _, err := backend.ExtractText(context.Background(), testSnapshot()); err == nil {
		t.Error("expected error on 503")
	}
	if _, err := backend.EvaluateCondition(context.Background(), "x", "empty"); err == nil {
		t.Error("expected error on 503")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	b, err := New(config.OCRConfig{Backend: "rules"})
	if err != nil {
		t.Fatalf("new rules backend: %v", err)
	}
	if _, ok := b.(Rules); !ok {
		t.Errorf("backend = %T, want Rules", b)
	}

	b, err = New(config.OCRConfig{Backend: "http", URL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new http backend: %v", err)
	}
	if _, ok := b.(*HTTP); !ok {
		t.Errorf("backend = %T, want *HTTP", b)
	}

	if _, err := New(config.OCRConfig{Backend: "tesseract"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
