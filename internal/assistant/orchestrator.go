package assistant

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medloop/practice-assistant/internal/observability/metrics"
	"github.com/medloop/practice-assistant/pkg/logging"
)

// Orchestrator wraps the model-backed tier with the deterministic engine
// as its fallback. If the model tier fails, the turn is retried on the
// deterministic tier; the user sees no trace of the failure. With no
// model tier configured, every turn runs deterministically.
type Orchestrator struct {
	model    TurnProcessor
	fallback *Engine
	metrics  *metrics.AssistantMetrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

var _ TurnProcessor = (*Orchestrator)(nil)

// NewOrchestrator wires the two tiers. model may be nil.
func NewOrchestrator(model TurnProcessor, fallback *Engine, m *metrics.AssistantMetrics, logger *logging.Logger) *Orchestrator {
	if fallback == nil {
		panic("assistant: fallback engine required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		model:    model,
		fallback: fallback,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("assistant"),
	}
}

// ProcessTurn runs the turn on the model tier when one is configured,
// falling back to the deterministic tier on any model failure.
func (o *Orchestrator) ProcessTurn(ctx context.Context, req TurnRequest, convo *ConversationContext) (*TurnResult, error) {
	ctx, span := o.tracer.Start(ctx, "assistant.ProcessTurn",
		trace.WithAttributes(attribute.String("session_id", req.SessionID)))
	defer span.End()

	if o.model != nil {
		result, err := o.model.ProcessTurn(ctx, req, convo)
		if err == nil {
			return result, nil
		}

		span.RecordError(err)
		o.metrics.ObserveModelFallback()
		o.logger.Warn("model tier failed, falling back to deterministic pipeline",
			"session_id", req.SessionID,
			"error", err.Error(),
		)
	}

	result, err := o.fallback.ProcessTurn(ctx, req, convo)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: deterministic tier: %w", err)
	}
	return result, nil
}
