package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/capital"
	intsecrets "github.com/Checker-Finance/adapters/internal/secrets"
	pkgsecrets "github.com/Checker-Finance/adapters/pkg/secrets"
)

const venue = "capital"

// AWSResolver resolves Capital.com credentials from AWS Secrets Manager.
// It is a thin wrapper over the generic intsecrets.AWSResolver[capital.Credentials].
//
// Secret naming convention: {env}/{account}/capital
// Secret JSON format:       {"identifier": "...", "clear_password": "...", "api_key": "..."}
type AWSResolver struct {
	inner *intsecrets.AWSResolver[capital.Credentials]
}

// NewAWSResolver constructs a Capital.com credentials resolver.
func NewAWSResolver(
	logger *zap.Logger,
	env string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[capital.Credentials],
) *AWSResolver {
	return &AWSResolver{inner: intsecrets.NewAWSResolver(logger, env, venue, provider, cache)}
}

// Resolve returns the credentials stored for account.
func (r *AWSResolver) Resolve(ctx context.Context, account string) (capital.Credentials, error) {
	return r.inner.Resolve(ctx, account, parseCredentials)
}

// Forget drops cached credentials so the next Resolve re-reads the secret.
func (r *AWSResolver) Forget(account string) {
	r.inner.Forget(account)
}

// ForAccount binds the resolver to one account. The result is the
// capital.CredentialsSource the client logs in with.
func (r *AWSResolver) ForAccount(account string) *AccountSource {
	return &AccountSource{resolver: r, account: account}
}

// AccountSource loads the credentials of a single account through the cache.
type AccountSource struct {
	resolver *AWSResolver
	account  string
}

var _ capital.CredentialsSource = (*AccountSource)(nil)

// Load implements capital.CredentialsSource.
func (s *AccountSource) Load(ctx context.Context) (capital.Credentials, error) {
	return s.resolver.Resolve(ctx, s.account)
}

// Forget implements capital.CredentialsSource.
func (s *AccountSource) Forget() {
	s.resolver.Forget(s.account)
}

// SecretName returns the secret consulted for account.
func (r *AWSResolver) SecretName(account string) string {
	return r.inner.SecretName(account)
}

func parseCredentials(m map[string]string) (capital.Credentials, error) {
	creds := capital.CredentialsFromMap(m)
	if creds.Identifier == "" {
		return capital.Credentials{}, fmt.Errorf("missing required field 'identifier'")
	}
	if creds.Password == "" {
		return capital.Credentials{}, fmt.Errorf("missing required field 'clear_password'")
	}
	if creds.APIKey == "" {
		return capital.Credentials{}, fmt.Errorf("missing required field 'api_key'")
	}
	return creds, nil
}
