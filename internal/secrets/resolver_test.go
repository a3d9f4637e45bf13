package secrets

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgsecrets "github.com/Checker-Finance/adapters/pkg/secrets"
)

// --- Mock Provider ---

type mockProvider struct {
	secrets map[string]map[string]string
	err     error
	calls   int
}

func (m *mockProvider) GetSecret(_ context.Context, key string) (map[string]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.secrets[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("secret not found: %s", key)
}

type venueCfg struct {
	Key string
}

func parseVenueCfg(m map[string]string) (venueCfg, error) {
	if m["key"] == "" {
		return venueCfg{}, errors.New("missing required field 'key'")
	}
	return venueCfg{Key: m["key"]}, nil
}

func newResolver(p pkgsecrets.Provider) *AWSResolver[venueCfg] {
	return NewAWSResolver(zap.NewNop(), "Dev", "capital", p, pkgsecrets.NewCache[venueCfg](time.Minute))
}

// --- Tests ---

func TestAWSResolver_SecretName(t *testing.T) {
	r := newResolver(&mockProvider{})
	assert.Equal(t, "dev/main/capital", r.SecretName("Main"))
}

func TestAWSResolver_Resolve_FetchesThenCaches(t *testing.T) {
	mock := &mockProvider{secrets: map[string]map[string]string{
		"dev/main/capital": {"key": "v1"},
	}}
	r := newResolver(mock)

	cfg, err := r.Resolve(context.Background(), "main", parseVenueCfg)
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.Key)

	cfg, err = r.Resolve(context.Background(), "MAIN", parseVenueCfg)
	require.NoError(t, err)
	assert.Equal(t, "v1", cfg.Key)
	assert.Equal(t, 1, mock.calls, "second resolve is served from cache")
}

func TestAWSResolver_Resolve_ProviderError(t *testing.T) {
	r := newResolver(&mockProvider{err: errors.New("throttled")})

	_, err := r.Resolve(context.Background(), "main", parseVenueCfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolve capital config for "main"`)
	assert.Contains(t, err.Error(), "throttled")
}

func TestAWSResolver_Resolve_ParseError(t *testing.T) {
	mock := &mockProvider{secrets: map[string]map[string]string{
		"dev/main/capital": {"other": "x"},
	}}
	r := newResolver(mock)

	_, err := r.Resolve(context.Background(), "main", parseVenueCfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field 'key'")

	_, _ = r.Resolve(context.Background(), "main", parseVenueCfg)
	assert.Equal(t, 2, mock.calls, "failed parses are not cached")
}

func TestAWSResolver_Forget(t *testing.T) {
	mock := &mockProvider{secrets: map[string]map[string]string{
		"dev/main/capital": {"key": "v1"},
	}}
	r := newResolver(mock)

	_, err := r.Resolve(context.Background(), "main", parseVenueCfg)
	require.NoError(t, err)

	mock.secrets["dev/main/capital"] = map[string]string{"key": "v2"}
	r.Forget("main")

	cfg, err := r.Resolve(context.Background(), "main", parseVenueCfg)
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.Key)
	assert.Equal(t, 2, mock.calls)
}
