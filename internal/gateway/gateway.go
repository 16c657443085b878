// Package gateway is the single place outbound marketplace requests are
// built and responses unwrapped. Every domain request function goes
// through Client.Request and inherits its error contract.
package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lotmarket/internal/session"
	"lotmarket/utils"
)

// APIKeyHeader is the provisioned-key header the marketplace API requires
// on authenticated non-auth requests.
const APIKeyHeader = "X-Noroff-API-Key"

const genericErrorMessage = "Something went wrong"

// envelope is the wire shape of every marketplace response
type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

// APIError is the uniform failure returned for any non-2xx response.
// Message is always human-readable and safe to show directly.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Options shapes a single request
type Options struct {
	Method string // defaults to GET
	Body   any    // JSON-encoded when non-nil
	Token  string // overrides the session token when set
}

// Client issues marketplace requests with bearer and API-key material
// resolved from the session store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *session.Store
}

// New creates a gateway client. No explicit timeout is set; requests rely
// on the transport's defaults, matching the original client behavior.
func New(baseURL string, sessions *session.Store) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		sessions:   sessions,
	}
}

// Request issues an HTTP call against the marketplace API and returns the
// unwrapped payload: the envelope's data field when present, otherwise the
// whole response body.
func (c *Client) Request(path string, opts Options) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("gateway: encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	isAuthPath := strings.HasPrefix(path, "/auth")

	token := opts.Token
	if token == "" && !isAuthPath {
		token = c.sessions.AuthToken()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	// auth endpoints never need the provisioned key, and provisioning
	// itself needs a bearer token
	if !isAuthPath && token != "" {
		if apiKey := c.ensureAPIKey(token); apiKey != "" {
			req.Header.Set(APIKeyHeader, apiKey)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		env = envelope{} // unparseable body degrades to an empty envelope
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := genericErrorMessage
		switch {
		case len(env.Errors) > 0 && env.Errors[0].Message != "":
			message = env.Errors[0].Message
		case env.Message != "":
			message = env.Message
		}
		utils.Debug("gateway: request failed", map[string]any{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		})
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data, nil
	}
	return raw, nil
}

// ensureAPIKey returns the provisioned API key, creating and caching one
// on first use. Provisioning failures are swallowed: the request proceeds
// without the key and the server decides whether that is acceptable.
func (c *Client) ensureAPIKey(token string) string {
	if key := c.sessions.APIKey(); key != "" {
		return key
	}

	raw, err := c.Request("/auth/create-api-key", Options{
		Method: http.MethodPost,
		Body:   map[string]any{},
		Token:  token,
	})
	if err != nil {
		utils.Warn("gateway: API key provisioning failed", map[string]any{"error": err.Error()})
		return ""
	}

	var payload struct {
		Key  string `json:"key"`
		Data struct {
			Key string `json:"key"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		utils.Warn("gateway: unexpected API key payload", map[string]any{"error": err.Error()})
		return ""
	}

	key := payload.Data.Key
	if key == "" {
		key = payload.Key
	}
	if key == "" {
		return ""
	}

	if err := c.sessions.SaveAPIKey(key); err != nil {
		utils.Warn("gateway: failed to cache API key", map[string]any{"error": err.Error()})
	}
	return key
}
