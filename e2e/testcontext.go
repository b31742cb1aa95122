// Package e2e drives a running cityline instance over HTTP with godog
// scenarios. The suite is black-box: it talks to whatever
// CITYLINE_E2E_BASE_URL points at and mints its own bearer tokens with the
// same dev signing key the server boots with, so it needs no login endpoint.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TestContext holds the HTTP client, the current bearer token, and the
// values scenarios capture from responses. One instance is shared across
// step packages; Reset is called before every scenario.
type TestContext struct {
	baseURL    string
	client     *http.Client
	signingKey []byte
	issuer     string
	audience   string

	accessToken string
	lastStatus  int
	lastBody    []byte
	saved       map[string]string
}

// NewTestContext builds a context from the environment, falling back to the
// dev-compose defaults.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:    envOr("CITYLINE_E2E_BASE_URL", "http://localhost:8080"),
		client:     &http.Client{Timeout: 10 * time.Second},
		signingKey: []byte(envOr("CITYLINE_E2E_SIGNING_KEY", "dev-secret-key-change-in-production")),
		issuer:     envOr("CITYLINE_E2E_JWT_ISSUER", "cityline"),
		audience:   envOr("CITYLINE_E2E_JWT_AUDIENCE", "cityline-api"),
		saved:      map[string]string{},
	}
}

// Reset drops per-scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.saved = map[string]string{}
}

// POST sends a JSON body and captures the response.
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body, nil)
}

// PATCH sends a JSON body and captures the response.
func (tc *TestContext) PATCH(path string, body interface{}) error {
	return tc.do(http.MethodPatch, path, body, nil)
}

// GET performs a request with optional extra headers and captures the
// response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetLastResponseStatus returns the status code of the last response.
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }

// GetLastResponseBody returns the raw body of the last response.
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }

// GetResponseField walks a dot-separated path such as
// "complaint.tracking_number" through the last JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	current := doc
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response", field)
		}
	}
	return current, nil
}

// ResponseContains reports whether the last response carries the field.
func (tc *TestContext) ResponseContains(field string) bool {
	_, err := tc.GetResponseField(field)
	return err == nil
}

// Save stores a value under a scenario-scoped name.
func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

// Saved returns a previously stored value.
func (tc *TestContext) Saved(name string) (string, error) {
	v, ok := tc.saved[name]
	if !ok {
		return "", fmt.Errorf("nothing saved under %q", name)
	}
	return v, nil
}

// SaveResponseField captures a string field from the last response under the
// given name.
func (tc *TestContext) SaveResponseField(field, name string) error {
	v, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("field %q is not a string (got %T)", field, v)
	}
	tc.Save(name, s)
	return nil
}

// AuthenticateAs mints a token for a fresh subject with the given role and
// attaches it to subsequent requests.
func (tc *TestContext) AuthenticateAs(role string) error {
	return tc.AuthenticateSubject(uuid.NewString(), role)
}

// AuthenticateSubject mints a token for a specific subject, which is how
// scenarios impersonate the institution a complaint was routed to.
func (tc *TestContext) AuthenticateSubject(subject, role string) error {
	now := time.Now()
	claims := jwt.MapClaims{
		"role": role,
		"sub":  subject,
		"iss":  tc.issuer,
		"aud":  tc.audience,
		"exp":  now.Add(time.Hour).Unix(),
		"iat":  now.Unix(),
		"jti":  uuid.NewString(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.signingKey)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	tc.accessToken = token
	return nil
}

// ClearAccessToken makes subsequent requests anonymous.
func (tc *TestContext) ClearAccessToken() { tc.accessToken = "" }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
