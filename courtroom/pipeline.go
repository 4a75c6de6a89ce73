package courtroom

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// DefaultClosingThreshold is how many user entries the transcript needs
// before the closing statement becomes available
const DefaultClosingThreshold = 3

// Pipeline submits the human's arguments and ingests the AI entries each
// exchange returns. It maintains the local copy of both branches; the
// server remains authoritative and any failure leaves the local
// transcript untouched.
type Pipeline struct {
	api      API
	session  *Session
	mirror   *RateLimitMirror
	notifier Notifier

	// ClosingThreshold defaults to DefaultClosingThreshold when zero
	ClosingThreshold int

	mu        sync.Mutex
	plaintiff []models.Argument
	defendant []models.Argument
	verdict   string
	status    string
	inFlight  bool
}

// NewPipeline builds a pipeline over the session's case. The mirror may
// be nil when quota mirroring is not wanted.
func NewPipeline(api API, session *Session, mirror *RateLimitMirror, notifier Notifier) *Pipeline {
	return &Pipeline{
		api:      api,
		session:  session,
		mirror:   mirror,
		notifier: orNop(notifier),
	}
}

// Load seeds the local branches from the session's case snapshot, which
// must have been loaded first
func (p *Pipeline) Load() {
	c := p.session.Case()
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plaintiff = append([]models.Argument(nil), c.PlaintiffArguments...)
	p.defendant = append([]models.Argument(nil), c.DefendantArguments...)
	p.verdict = c.Verdict
	p.status = c.Status
}

func (p *Pipeline) threshold() int {
	if p.ClosingThreshold > 0 {
		return p.ClosingThreshold
	}
	return DefaultClosingThreshold
}

// SubmitArgument sends one argument for the session's role and appends
// the resulting entries locally: the user entry at time T, then any AI
// opening at T+1s, then any AI counter at T+2s. The synthetic offsets
// keep local ordering deterministic regardless of server clock precision.
func (p *Pipeline) SubmitArgument(ctx context.Context, text string) (*models.ArgumentResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: argument must not be empty", ErrValidation)
	}
	role := p.session.Role()
	if role == "" {
		return nil, fmt.Errorf("%w: no role assigned for this case", ErrAuthorization)
	}
	if p.mirror != nil && !p.mirror.Allow() {
		return nil, fmt.Errorf("%w: no attempts left in the current window", ErrRateLimited)
	}

	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	resp, err := p.api.SubmitArgument(ctx, p.session.CNR(), role, text)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p.mu.Lock()
	p.appendLocked(role, models.Argument{
		Type:      models.ArgumentTypeUser,
		Content:   text,
		UserID:    "self",
		Branch:    role,
		Timestamp: primitive.NewDateTimeFromTime(now),
	})
	if resp.AIOpeningStatement != "" {
		p.appendLocked(resp.AIOpeningRole, models.Argument{
			Type:      models.ArgumentTypeOpening,
			Content:   resp.AIOpeningStatement,
			Branch:    resp.AIOpeningRole,
			Timestamp: primitive.NewDateTimeFromTime(now.Add(time.Second)),
		})
	}
	if resp.AICounterArgument != "" {
		p.appendLocked(resp.AICounterRole, models.Argument{
			Type:      models.ArgumentTypeCounter,
			Content:   resp.AICounterArgument,
			Branch:    resp.AICounterRole,
			Timestamp: primitive.NewDateTimeFromTime(now.Add(2 * time.Second)),
		})
	}
	p.status = models.CaseStatusActive
	p.mu.Unlock()

	p.session.markLocked(role)
	p.notifier.Notify(EventTranscriptUpdated, p.Transcript())
	p.refreshMirror(ctx)
	return resp, nil
}

// SubmitClosing ends the argument phase for the session's role. Only
// available once ClosingEligible reports true; the verdict in the
// response resolves the case.
func (p *Pipeline) SubmitClosing(ctx context.Context, text string) (*models.ClosingResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: closing statement must not be empty", ErrValidation)
	}
	role := p.session.Role()
	if role == "" {
		return nil, fmt.Errorf("%w: no role assigned for this case", ErrAuthorization)
	}
	if !p.ClosingEligible() {
		return nil, fmt.Errorf("%w: closing requires %d user arguments, have %d", ErrStateConflict, p.threshold(), p.UserEntryCount())
	}
	if p.mirror != nil && !p.mirror.Allow() {
		return nil, fmt.Errorf("%w: no attempts left in the current window", ErrRateLimited)
	}

	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()

	resp, err := p.api.SubmitClosingStatement(ctx, p.session.CNR(), role, text)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p.mu.Lock()
	p.appendLocked(role, models.Argument{
		Type:      models.ArgumentTypeClosing,
		Content:   text,
		UserID:    "self",
		Branch:    role,
		Timestamp: primitive.NewDateTimeFromTime(now),
	})
	if resp.AIClosingStatement != "" {
		p.appendLocked(resp.AIClosingRole, models.Argument{
			Type:      models.ArgumentTypeClosing,
			Content:   resp.AIClosingStatement,
			Branch:    resp.AIClosingRole,
			Timestamp: primitive.NewDateTimeFromTime(now.Add(time.Second)),
		})
	}
	if resp.Verdict != "" {
		p.verdict = resp.Verdict
		p.status = models.CaseStatusResolved
	}
	p.mu.Unlock()

	p.notifier.Notify(EventTranscriptUpdated, p.Transcript())
	if resp.Verdict != "" {
		p.notifier.Notify(EventVerdictDelivered, resp.Verdict)
	}
	p.refreshMirror(ctx)
	return resp, nil
}

// UserEntryCount counts user-typed arguments across both branches,
// excluding openings and closings
func (p *Pipeline) UserEntryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, arg := range p.plaintiff {
		if arg.Type == models.ArgumentTypeUser {
			n++
		}
	}
	for _, arg := range p.defendant {
		if arg.Type == models.ArgumentTypeUser {
			n++
		}
	}
	return n
}

// ClosingEligible reports whether the party may end the argument phase
func (p *Pipeline) ClosingEligible() bool {
	return p.UserEntryCount() >= p.threshold()
}

// Transcript returns both branches merged in chronological order
func (p *Pipeline) Transcript() []models.Argument {
	p.mu.Lock()
	defer p.mu.Unlock()
	return MergeTranscript(p.plaintiff, p.defendant)
}

// Verdict returns the stored verdict, empty until the case resolves
func (p *Pipeline) Verdict() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verdict
}

// Status returns the locally tracked case status
func (p *Pipeline) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// begin marks a submission in flight; a second concurrent submission for
// the same case is refused rather than queued
func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight {
		return fmt.Errorf("%w: a submission is already in flight", ErrStateConflict)
	}
	if p.status == models.CaseStatusResolved {
		return fmt.Errorf("%w: case is resolved", ErrStateConflict)
	}
	p.inFlight = true
	return nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

func (p *Pipeline) appendLocked(branch string, arg models.Argument) {
	if branch == models.RoleDefendant {
		p.defendant = append(p.defendant, arg)
	} else {
		p.plaintiff = append(p.plaintiff, arg)
	}
}

// refreshMirror resyncs the quota mirror after a successful submission;
// failure here is not an error, the next countdown expiry retries
func (p *Pipeline) refreshMirror(ctx context.Context) {
	if p.mirror == nil {
		return
	}
	_ = p.mirror.Refresh(ctx)
}
