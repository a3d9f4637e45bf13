package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_KeepsCorrelationID(t *testing.T) {
	corr := uuid.New()
	env := NewEnvelope("capital", "capital.positions", corr)

	assert.Equal(t, corr, env.CorrelationID)
	assert.NotEqual(t, uuid.Nil, env.ID)
	assert.NotEqual(t, corr, env.ID)
	assert.False(t, env.Timestamp.IsZero())
}

func TestNewEnvelope_GeneratesCorrelationID(t *testing.T) {
	env := NewEnvelope("capital", "capital.time", uuid.Nil)
	assert.NotEqual(t, uuid.Nil, env.CorrelationID)
}

func TestEnvelope_JSON(t *testing.T) {
	env := NewEnvelope("capital", "capital.time", uuid.Nil)
	env.Payload = json.RawMessage(`{"serverTime":1}`)

	b, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "capital.time", decoded["event_type"])
	assert.Equal(t, map[string]any{"serverTime": float64(1)}, decoded["payload"])
	_, hasErr := decoded["error"]
	assert.False(t, hasErr)
}
