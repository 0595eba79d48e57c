package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingProcessor struct {
	calls int
}

func (f *failingProcessor) ProcessTurn(context.Context, TurnRequest, *ConversationContext) (*TurnResult, error) {
	f.calls++
	return nil, errors.New("model unavailable")
}

// A model failure is invisible to the caller: the deterministic tier
// answers the same turn.
func TestOrchestratorFallsBack(t *testing.T) {
	model := &failingProcessor{}
	o := NewOrchestrator(model, newTestEngine(t), nil, nil)

	result, err := o.ProcessTurn(context.Background(), TurnRequest{
		SessionID: "s1", OrgID: "org-1", Text: "I want to book an appointment",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, IntentAppointmentBooking, result.Intent)
	assert.Equal(t, StateCollecting, result.State)
}

// Without a model tier every turn runs deterministically.
func TestOrchestratorNoModel(t *testing.T) {
	o := NewOrchestrator(nil, newTestEngine(t), nil, nil)

	result, err := o.ProcessTurn(context.Background(), TurnRequest{
		SessionID: "s1", OrgID: "org-1", Text: "Hello",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, IntentGreeting, result.Intent)
}

// When the model tier works, the fallback never runs.
func TestOrchestratorPrefersModel(t *testing.T) {
	client := &stubLLMClient{response: LLMResponse{
		Text: `{"intent": "greeting", "confidence": 0.8, "entities": {}}`,
	}}
	engine := newTestEngine(t)
	o := NewOrchestrator(NewModelProcessor(client, engine, 0, nil), engine, nil, nil)

	result, err := o.ProcessTurn(context.Background(), TurnRequest{
		SessionID: "s1", OrgID: "org-1", Text: "hello",
	}, nil)

	require.NoError(t, err)
	require.Len(t, client.requests, 1)
	assert.Equal(t, IntentGreeting, result.Intent)
	assert.Equal(t, 0.8, result.Confidence)
}
