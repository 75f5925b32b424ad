package extraction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wouterstultiens/boardgame-finder/internal/logging"
	"github.com/wouterstultiens/boardgame-finder/internal/metrics"
	"github.com/wouterstultiens/boardgame-finder/internal/services"
	"github.com/wouterstultiens/boardgame-finder/internal/services/llm"
	"github.com/wouterstultiens/boardgame-finder/internal/telemetry"
)

// Status tags the outcome of one extraction.
type Status string

const (
	StatusFound  Status = "found"
	StatusNone   Status = "none"
	StatusFailed Status = "failed"
)

// Result is the outcome of extracting names from one listing.
type Result struct {
	Status Status
	Names  []Name
	Err    error
}

// Extractor asks the oracle which games a listing contains.
type Extractor struct {
	oracle  llm.Completer
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs an Extractor. A non-positive timeout leaves the caller's
// deadline in charge.
func New(oracle llm.Completer, timeout time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		oracle:  oracle,
		timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "extraction"),
	}
}

// Extract returns the names found in the listing text and image texts.
func (e *Extractor) Extract(ctx context.Context, title, description string, imageTexts []string) Result {
	ctx = services.WithStage(ctx, "extraction")
	ctx, span := telemetry.StartSpan(ctx, "extraction.Extract",
		telemetry.WithAttributes(attribute.Int("extraction.image_texts", len(imageTexts))),
	)
	defer span.End()
	logger := logging.WithContext(ctx, e.logger)

	if e.oracle == nil {
		err := services.Wrap(services.ErrConfiguration, "extraction", "extract", "no oracle configured", nil)
		telemetry.RecordError(span, err)
		return e.fail(logger, err, "")
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := e.oracle.Complete(callCtx, SystemPrompt, BuildUserMessage(title, description, imageTexts))
	metrics.RecordOracleCall("extraction", start)
	if err != nil {
		marker := services.ErrExternalTool
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		wrapped := services.Wrap(marker, "extraction", "oracle call", "", err)
		telemetry.RecordError(span, wrapped)
		return e.fail(logger, wrapped, raw)
	}

	parsed := Parse(raw)
	if !parsed.Valid() {
		wrapped := services.Wrap(services.ErrValidation, "extraction", "parse reply", "", parsed.Err)
		telemetry.RecordError(span, wrapped)
		return e.fail(logger, wrapped, raw)
	}

	status := StatusFound
	if len(parsed.Names) == 0 {
		status = StatusNone
	}
	metrics.ExtractionResults.WithLabelValues(string(status)).Inc()
	telemetry.AddSpanAttributes(span,
		attribute.String("extraction.status", string(status)),
		attribute.Int("extraction.names", len(parsed.Names)),
	)
	telemetry.SetSpanOK(span)
	logger.Debug("extraction completed",
		logging.String("status", string(status)),
		logging.Int("names", len(parsed.Names)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return Result{Status: status, Names: parsed.Names}
}

func (e *Extractor) fail(logger *slog.Logger, err error, raw string) Result {
	metrics.ExtractionResults.WithLabelValues(string(StatusFailed)).Inc()
	logging.WarnWithContext(logger, "extraction failed", "extraction_failed",
		logging.Error(err),
		logging.String("failure_kind", services.FailureKind(err)),
		logging.String("raw_snippet", llm.SummarizeSnippet(raw)),
		logging.String(logging.FieldErrorHint, "check oracle availability and reply format"),
		logging.String(logging.FieldImpact, "listing recorded without game names"),
	)
	return Result{Status: StatusFailed, Err: err}
}
