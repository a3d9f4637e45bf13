package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/Checker-Finance/adapters/pkg/secrets"
)

// AWSResolver resolves per-account venue configuration from a secrets
// Provider and caches the parsed result. It is generic over the resolved type
// so each venue package supplies only its own parse function.
//
// Secret naming convention: {env}/{account}/{venue}
type AWSResolver[T any] struct {
	logger   *zap.Logger
	env      string
	venue    string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[T]
}

// NewAWSResolver constructs a resolver for one venue.
func NewAWSResolver[T any](
	logger *zap.Logger,
	env string,
	venue string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[T],
) *AWSResolver[T] {
	return &AWSResolver[T]{
		logger:   logger,
		env:      env,
		venue:    venue,
		provider: provider,
		cache:    cache,
	}
}

func (r *AWSResolver[T]) cacheKey(account string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s", account, r.venue))
}

// SecretName returns the secret holding the configuration of account.
func (r *AWSResolver[T]) SecretName(account string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, account, r.venue))
}

// Resolve returns the cached T for account, fetching and parsing the secret on
// a miss. parse should reject secrets with missing required fields.
func (r *AWSResolver[T]) Resolve(ctx context.Context, account string, parse func(map[string]string) (T, error)) (T, error) {
	secretName := r.SecretName(account)

	cfg, hit, err := r.cache.GetOrLoad(r.cacheKey(account), func() (T, error) {
		var zero T
		secretMap, err := r.provider.GetSecret(ctx, secretName)
		if err != nil {
			r.logger.Warn("secrets.fetch_failed",
				zap.String("key", secretName),
				zap.Error(err))
			return zero, fmt.Errorf("resolve %s config for %q: %w", r.venue, account, err)
		}
		parsed, err := parse(secretMap)
		if err != nil {
			return zero, fmt.Errorf("parse secret %q: %w", secretName, err)
		}
		return parsed, nil
	})
	if err != nil {
		return cfg, err
	}

	if !hit {
		r.logger.Info("secrets.config_resolved",
			zap.String("account", account),
			zap.String("venue", r.venue))
	}
	return cfg, nil
}

// Forget drops the cached value for account so the next Resolve re-reads the secret.
func (r *AWSResolver[T]) Forget(account string) {
	r.cache.Bust(r.cacheKey(account))
}
