// Package llm is the boundary to the external legal-text generation
// service. The service's internals (prompting, models) are opaque to this
// repository; everything here is a thin HTTP client around its endpoints.
package llm

// go generate: mockery --name Generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// WitnessContext carries everything the service needs to speak for, or
// question, a witness.
type WitnessContext struct {
	WitnessName string                   `json:"witness_name"`
	WitnessRole string                   `json:"witness_role"`
	WitnessBio  string                   `json:"witness_bio,omitempty"`
	LawyerRole  string                   `json:"lawyer_role"`
	CaseDetails string                   `json:"case_details"`
	Testimony   []models.ExaminationItem `json:"testimony_so_far"`
	Arguments   string                   `json:"case_arguments,omitempty"`
	Question    string                   `json:"question,omitempty"`
}

// Generator produces all AI-authored legal text
type Generator interface {
	OpeningStatement(ctx context.Context, role, caseDetails, userRole string) (string, error)
	CounterArgument(ctx context.Context, history, argument, aiRole, userRole, caseDetails string) (string, error)
	ClosingStatement(ctx context.Context, history, aiRole, userRole string) (string, error)
	Verdict(ctx context.Context, plaintiffArguments, defendantArguments []string, caseDetails, title string) (string, error)
	ExamineWitness(ctx context.Context, wc WitnessContext) (string, error)
	CrossExaminationQuestion(ctx context.Context, wc WitnessContext) (string, error)
	ShouldContinueCrossExamination(ctx context.Context, wc WitnessContext, questionsAsked, maxQuestions int) (bool, error)
	ShouldCallWitness(ctx context.Context, aiRole, caseDetails, argumentsHistory string, available []models.WitnessInfo) (string, error)
	GenerateCase(ctx context.Context, sectionsInvolved []string, sectionNumbers []string) (*models.Case, error)
}

type client struct {
	baseURL string
	hc      *http.Client
}

// New returns a Generator backed by the service at baseURL
func New(baseURL string) Generator {
	return &client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm service returned status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type textResponse struct {
	Text string `json:"text"`
}

func (c *client) OpeningStatement(ctx context.Context, role, caseDetails, userRole string) (string, error) {
	var out textResponse
	err := c.post(ctx, "/lawyer/opening", map[string]string{
		"role":         role,
		"case_details": caseDetails,
		"user_role":    userRole,
	}, &out)
	return out.Text, err
}

func (c *client) CounterArgument(ctx context.Context, history, argument, aiRole, userRole, caseDetails string) (string, error) {
	var out textResponse
	err := c.post(ctx, "/lawyer/counter", map[string]string{
		"history":      history,
		"argument":     argument,
		"ai_role":      aiRole,
		"user_role":    userRole,
		"case_details": caseDetails,
	}, &out)
	return out.Text, err
}

func (c *client) ClosingStatement(ctx context.Context, history, aiRole, userRole string) (string, error) {
	var out textResponse
	err := c.post(ctx, "/lawyer/closing", map[string]string{
		"history":   history,
		"ai_role":   aiRole,
		"user_role": userRole,
	}, &out)
	return out.Text, err
}

func (c *client) Verdict(ctx context.Context, plaintiffArguments, defendantArguments []string, caseDetails, title string) (string, error) {
	var out textResponse
	err := c.post(ctx, "/judge/verdict", map[string]interface{}{
		"plaintiff_arguments": plaintiffArguments,
		"defendant_arguments": defendantArguments,
		"case_details":        caseDetails,
		"title":               title,
	}, &out)
	return out.Text, err
}

func (c *client) ExamineWitness(ctx context.Context, wc WitnessContext) (string, error) {
	var out textResponse
	err := c.post(ctx, "/witness/answer", wc, &out)
	return out.Text, err
}

func (c *client) CrossExaminationQuestion(ctx context.Context, wc WitnessContext) (string, error) {
	var out textResponse
	err := c.post(ctx, "/witness/cross-question", wc, &out)
	return out.Text, err
}

func (c *client) ShouldContinueCrossExamination(ctx context.Context, wc WitnessContext, questionsAsked, maxQuestions int) (bool, error) {
	var out struct {
		Continue bool `json:"continue"`
	}
	err := c.post(ctx, "/witness/should-continue", map[string]interface{}{
		"context":         wc,
		"questions_asked": questionsAsked,
		"max_questions":   maxQuestions,
	}, &out)
	return out.Continue, err
}

// ShouldCallWitness asks the service whether the AI lawyer should call one
// of its remaining witnesses. An empty id means it declines.
func (c *client) ShouldCallWitness(ctx context.Context, aiRole, caseDetails, argumentsHistory string, available []models.WitnessInfo) (string, error) {
	var out struct {
		ShouldCall bool   `json:"should_call"`
		WitnessID  string `json:"witness_id"`
	}
	err := c.post(ctx, "/witness/should-call", map[string]interface{}{
		"ai_role":           aiRole,
		"case_details":      caseDetails,
		"arguments_history": argumentsHistory,
		"witnesses":         available,
	}, &out)
	if err != nil || !out.ShouldCall {
		return "", err
	}
	return out.WitnessID, nil
}

func (c *client) GenerateCase(ctx context.Context, sectionsInvolved []string, sectionNumbers []string) (*models.Case, error) {
	var out models.Case
	err := c.post(ctx, "/case/generate", map[string]interface{}{
		"sections_involved": sectionsInvolved,
		"section_numbers":   sectionNumbers,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
