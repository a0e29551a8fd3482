// Package capture – backend API client
//
// This file implements the thin HTTP client the capture workflow uses to
// talk to the registration backend. Responses are decoded into the wire
// shapes served by the handlers package; conflict responses are mapped to
// sentinel errors so the state machine can branch on them.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors surfaced to the workflow. Timeouts are distinguished
// from other transport failures so the operator can be told to check the
// connection rather than the data.
var (
	// ErrTimeout indicates the backend did not answer within the request
	// timeout.
	ErrTimeout = errors.New("capture: request timed out")

	// ErrFolioConflict indicates the generated folio is already taken;
	// the station retries with a fresh folio.
	ErrFolioConflict = errors.New("capture: folio already exists")

	// ErrPersonConflict indicates the person already has a registration.
	ErrPersonConflict = errors.New("capture: person already registered")

	// ErrNotAuthorized indicates the CURP is not in the authorization
	// directory.
	ErrNotAuthorized = errors.New("capture: curp not authorized")
)

// Person is a directory entry as served by the backend.
type Person struct {
	FullName   string `json:"nombreCompleto"`
	Role       string `json:"cargo"`
	Section    int    `json:"seccion"`
	Subprogram int    `json:"sp"`
	CURP       string `json:"curp"`
}

// Submission is the payload for POST /api/registro-credencial.
type Submission struct {
	Folio      string `json:"folio"`
	CURP       string `json:"curp"`
	FullName   string `json:"nombreCompleto"`
	Role       string `json:"cargo"`
	Section    int    `json:"seccion"`
	Subprogram int    `json:"sp"`
	CardImage  string `json:"credencial"`
	ProofImage string `json:"comprobacion,omitempty"`
}

// SubmitResult carries the backend's confirmation of a stored registration.
type SubmitResult struct {
	Folio        string    `json:"folio"`
	RegisteredAt time.Time `json:"fechaRegistro"`
	ID           string    `json:"id"`
}

// Client talks to the registration backend.
type Client struct {
	// BaseURL is the backend root, e.g. "http://10.0.0.5:8080".
	BaseURL string
	// HTTPClient is used for all requests; a default with a 15s timeout
	// is installed when nil.
	HTTPClient *http.Client
}

// NewClient returns a Client for the given backend root.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SearchPersons queries the directory for name within a sub-program. The
// returned message mirrors the backend's guidance text (e.g. "type at
// least two characters") and is meant for direct display.
func (c *Client) SearchPersons(ctx context.Context, name string, subprogram int) ([]Person, string, error) {
	body := map[string]any{"nombre": name, "sp": subprogram}
	var out struct {
		Success bool     `json:"success"`
		Results []Person `json:"resultados"`
		Message string   `json:"mensaje"`
	}
	if err := c.post(ctx, "/api/buscar-persona", body, &out); err != nil {
		return nil, "", err
	}
	return out.Results, out.Message, nil
}

// RegisterPerson registers a person missing from the directory and returns
// the stored entry.
func (c *Client) RegisterPerson(ctx context.Context, fullName, curp string, subprogram int) (*Person, error) {
	body := map[string]any{"nombreCompleto": fullName, "curp": curp, "sp": subprogram}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Person  Person `json:"persona"`
	}
	if err := c.post(ctx, "/api/persona-nueva", body, &out); err != nil {
		return nil, err
	}
	return &out.Person, nil
}

// ValidateCURP checks the CURP against the authorization directory.
func (c *Client) ValidateCURP(ctx context.Context, curp string) error {
	body := map[string]any{"curp": curp}
	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	return c.post(ctx, "/api/validate-curp", body, &out)
}

// Submit stores a completed registration.
func (c *Client) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	var out struct {
		Success bool `json:"success"`
		SubmitResult
	}
	if err := c.post(ctx, "/api/registro-credencial", sub, &out); err != nil {
		return nil, err
	}
	return &out.SubmitResult, nil
}

// post sends a JSON body and decodes a JSON response into out. Non-2xx
// responses are turned into errors; 409 and 404 bodies are inspected to
// pick the matching sentinel.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.NewDecoder(resp.Body).Decode(out)
	}

	var apiErr struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)

	switch resp.StatusCode {
	case http.StatusConflict:
		// The backend distinguishes the two conflicts only by message.
		if strings.Contains(strings.ToLower(apiErr.Error), "folio") {
			return ErrFolioConflict
		}
		return ErrPersonConflict
	case http.StatusNotFound:
		if path == "/api/validate-curp" {
			return ErrNotAuthorized
		}
	}
	if apiErr.Error != "" {
		return fmt.Errorf("capture: backend %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("capture: backend returned %d", resp.StatusCode)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// isTimeout reports whether err is a deadline or transport timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
