package capital

// DefaultBaseURL is the live Capital.com REST API root.
const DefaultBaseURL = "https://api-capital.backend-capital.com/api/v1/"

const (
	HeaderAPIKey        = "X-CAP-API-KEY"
	HeaderSecurityToken = "X-SECURITY-TOKEN"
	HeaderCST           = "CST"
)

// Endpoint is a path relative to the API base URL.
type Endpoint string

const (
	EndpointSession          Endpoint = "session"
	EndpointPositions        Endpoint = "positions"
	EndpointWorkingOrders    Endpoint = "workingorders"
	EndpointMarketNavigation Endpoint = "marketnavigation"
	EndpointPing             Endpoint = "ping"
	EndpointTime             Endpoint = "time"
)

// RequiresSession reports whether requests to e carry the session headers.
// Only the server time endpoint is public.
func (e Endpoint) RequiresSession() bool {
	return e != EndpointTime
}

// Credentials are used only to obtain session tokens.
type Credentials struct {
	Identifier string
	Password   string
	APIKey     string
}

// Complete reports whether all three fields are set.
func (c Credentials) Complete() bool {
	return c.Identifier != "" && c.Password != "" && c.APIKey != ""
}

// CredentialsFromMap reads credentials from an options map using the keys
// "identifier", "clear_password" (or "password") and "api_key".
func CredentialsFromMap(m map[string]string) Credentials {
	password := m["clear_password"]
	if password == "" {
		password = m["password"]
	}
	return Credentials{
		Identifier: m["identifier"],
		Password:   password,
		APIKey:     m["api_key"],
	}
}

// SessionTokens is the pair issued by a successful login. The zero value
// means "not authenticated".
type SessionTokens struct {
	SecurityToken string
	CST           string
}

// Valid reports whether both tokens are present.
func (t SessionTokens) Valid() bool {
	return t.SecurityToken != "" && t.CST != ""
}

// LoginRequest is the body of POST /session.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}
