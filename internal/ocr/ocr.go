// Package ocr reads text printed on listing photos.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

const maxImageBytes = 20 << 20

// Reader returns one text per image URL, "" where recognition failed. It
// never returns an error.
type Reader interface {
	ReadTexts(ctx context.Context, urls []string) []string
}

// Nop returns empty texts.
type Nop struct{}

// ReadTexts implements Reader.
func (Nop) ReadTexts(_ context.Context, urls []string) []string {
	return make([]string, len(urls))
}

// VisionClient calls the Google Vision images:annotate REST endpoint with
// TEXT_DETECTION.
type VisionClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewVisionClient returns a client. A nil httpClient gets a default one with
// timeout applied.
func NewVisionClient(endpoint, apiKey string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *VisionClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &VisionClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   httpClient,
		logger:   logging.NewComponentLogger(logger, "ocr"),
	}
}

// New returns the configured reader: Vision when ocr.enabled, Nop otherwise.
func New(cfg *config.Config, logger *slog.Logger) Reader {
	if !cfg.OCR.Enabled {
		return Nop{}
	}
	timeout := time.Duration(cfg.OCR.TimeoutSeconds) * time.Second
	return NewVisionClient(cfg.OCR.Endpoint, cfg.OCR.APIKey, nil, timeout, logger)
}

// ReadTexts implements Reader. Images are processed in order.
func (v *VisionClient) ReadTexts(ctx context.Context, urls []string) []string {
	ctx, span := telemetry.StartSpan(ctx, "ocr.ReadTexts",
		telemetry.WithAttributes(attribute.Int("ocr.images", len(urls))),
	)
	defer span.End()

	texts := make([]string, len(urls))
	failed := 0
	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		text, err := v.readOne(ctx, u)
		if err != nil {
			failed++
			logging.WarnWithContext(logging.WithContext(ctx, v.logger), "image text detection failed", "ocr_failed",
				logging.String("url", u),
				logging.Error(err),
				logging.String(logging.FieldImpact, "image contributes no text to extraction"),
			)
			continue
		}
		texts[i] = text
	}
	telemetry.AddSpanAttributes(span, attribute.Int("ocr.failed", failed))
	telemetry.SetSpanOK(span)
	return texts
}

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    imageContent `json:"image"`
	Features []feature    `json:"features"`
}

type imageContent struct {
	Content string `json:"content"`
}

type feature struct {
	Type string `json:"type"`
}

type annotateResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

func (v *VisionClient) readOne(ctx context.Context, imageURL string) (string, error) {
	img, err := v.download(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}

	payload, err := json.Marshal(annotateRequest{Requests: []imageRequest{{
		Image:    imageContent{Content: base64.StdEncoding.EncodeToString(img)},
		Features: []feature{{Type: "TEXT_DETECTION"}},
	}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := v.endpoint
	if v.apiKey != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint += sep + "key=" + url.QueryEscape(v.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("annotate: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("read annotate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("annotate: unexpected status %s", resp.Status)
	}

	var decoded annotateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode annotate response: %w", err)
	}
	if len(decoded.Responses) == 0 {
		return "", nil
	}
	first := decoded.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return "", errors.New(first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return "", nil
	}
	return strings.TrimSpace(first.TextAnnotations[0].Description), nil
}

func (v *VisionClient) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
