// Package courtroom is the client-side orchestration core for a case: it
// governs how the human and the AI opposing party alternate authorship of
// the argument transcript, mirrors the server's submission quota, merges
// the two argument branches for display, and drives the witness
// examination lifecycle including polling for asynchronous AI
// cross-examination. The server stays authoritative for all persisted
// state; everything held here is an invalidatable cache.
package courtroom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// API is the server surface the orchestration core consumes
type API interface {
	Case(ctx context.Context, cnr string) (*models.Case, error)
	AssignRole(ctx context.Context, cnr, role string) (*models.CaseRolesResponse, error)
	SubmitArgument(ctx context.Context, cnr, role, text string) (*models.ArgumentResponse, error)
	SubmitClosingStatement(ctx context.Context, cnr, role, text string) (*models.ClosingResponse, error)
	ArgumentRateLimit(ctx context.Context) (*models.RateLimitWindow, error)
	AvailableWitnesses(ctx context.Context, cnr string) (*models.AvailableWitnessesResponse, error)
	CurrentWitness(ctx context.Context, cnr string) (*models.CurrentWitnessResponse, error)
	CallWitness(ctx context.Context, cnr, witnessID, role string) (*models.CallWitnessResponse, error)
	ExamineWitness(ctx context.Context, cnr, role, question string) (*models.ExaminationResponse, error)
	AICrossExamine(ctx context.Context, cnr string) error
	ConcludeWitness(ctx context.Context, cnr string) (*models.ConcludeWitnessResponse, error)
}

// Client is the HTTP implementation of API
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient returns a Client for the server at baseURL authenticating
// with the given bearer token
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrService, err)
	}
	return nil
}

// statusError maps an HTTP failure onto the error taxonomy, keeping the
// server's message for display
func statusError(resp *http.Response) error {
	var body models.ErrorMessageResponse
	message := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Response.Message != "" {
		message = body.Response.Message
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		sentinel = ErrAuthorization
	case resp.StatusCode == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case resp.StatusCode == http.StatusConflict:
		sentinel = ErrStateConflict
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusBadGateway:
		sentinel = ErrService
	case resp.StatusCode == http.StatusBadRequest:
		sentinel = ErrValidation
	default:
		sentinel = ErrService
	}
	return fmt.Errorf("%w: %s", sentinel, message)
}

// Case fetches the current server-side snapshot of a case
func (c *Client) Case(ctx context.Context, cnr string) (*models.Case, error) {
	var out models.Case
	if err := c.do(ctx, http.MethodGet, "/api/v1/cases/"+cnr, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignRole requests a role for the case. The server echoes the roles in
// effect, which may differ from the request when the case is locked.
func (c *Client) AssignRole(ctx context.Context, cnr, role string) (*models.CaseRolesResponse, error) {
	var out models.CaseRolesResponse
	err := c.do(ctx, http.MethodPut, "/api/v1/cases/"+cnr+"/roles", map[string]string{"role": role}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitArgument sends one user argument and returns whatever AI entries
// the exchange produced
func (c *Client) SubmitArgument(ctx context.Context, cnr, role, text string) (*models.ArgumentResponse, error) {
	var out models.ArgumentResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/arguments", map[string]string{
		"role":     role,
		"argument": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitClosingStatement ends the argument phase for the submitting party
func (c *Client) SubmitClosingStatement(ctx context.Context, cnr, role, text string) (*models.ClosingResponse, error) {
	var out models.ClosingResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/arguments/closing", map[string]string{
		"role":      role,
		"statement": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ArgumentRateLimit fetches the authoritative quota window
func (c *Client) ArgumentRateLimit(ctx context.Context) (*models.RateLimitWindow, error) {
	var out models.RateLimitWindow
	if err := c.do(ctx, http.MethodGet, "/api/v1/rate-limit/arguments", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AvailableWitnesses lists the witness pool for a case
func (c *Client) AvailableWitnesses(ctx context.Context, cnr string) (*models.AvailableWitnessesResponse, error) {
	var out models.AvailableWitnessesResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/cases/"+cnr+"/witnesses", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentWitness is the poll target for examination state
func (c *Client) CurrentWitness(ctx context.Context, cnr string) (*models.CurrentWitnessResponse, error) {
	var out models.CurrentWitnessResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/cases/"+cnr+"/witnesses/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CallWitness puts a witness on the stand for the given party
func (c *Client) CallWitness(ctx context.Context, cnr, witnessID, role string) (*models.CallWitnessResponse, error) {
	var out models.CallWitnessResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/witnesses/"+witnessID+"/call", map[string]string{"role": role}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExamineWitness asks the witness on the stand a single question
func (c *Client) ExamineWitness(ctx context.Context, cnr, role, question string) (*models.ExaminationResponse, error) {
	var out models.ExaminationResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/witnesses/examine", map[string]string{
		"role":     role,
		"question": question,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AICrossExamine starts the asynchronous cross-examination job; progress
// is observed through CurrentWitness
func (c *Client) AICrossExamine(ctx context.Context, cnr string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/witnesses/cross-examine", nil, nil)
}

// ConcludeWitness dismisses the witness on the stand
func (c *Client) ConcludeWitness(ctx context.Context, cnr string) (*models.ConcludeWitnessResponse, error) {
	var out models.ConcludeWitnessResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/cases/"+cnr+"/witnesses/conclude", nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
