package courtroom

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// WitnessState enumerates the examination lifecycle
type WitnessState int

// Examination states. At most one witness session is active per case.
const (
	NoWitness WitnessState = iota
	UserQuestioning
	AIExaminingFirst
	AICrossExamining
	AwaitingUserChoice
	AwaitingUserCross
)

func (s WitnessState) String() string {
	switch s {
	case NoWitness:
		return "no_witness"
	case UserQuestioning:
		return "user_questioning"
	case AIExaminingFirst:
		return "ai_examining_first"
	case AICrossExamining:
		return "ai_cross_examining"
	case AwaitingUserChoice:
		return "awaiting_user_choice"
	case AwaitingUserCross:
		return "awaiting_user_cross"
	}
	return fmt.Sprintf("WitnessState(%d)", int(s))
}

// DefaultPollInterval bounds how stale the view of an AI examination can
// get: staleness is at most one interval plus server processing time
const DefaultPollInterval = 2 * time.Second

// WitnessMachine drives the call/question/cross-examine/conclude
// lifecycle for one case. AI examination runs out-of-band on the server;
// the machine discovers completion by polling the current-witness
// endpoint. A push notification may arrive earlier, but polling remains
// the source of truth for transitions.
type WitnessMachine struct {
	api      API
	session  *Session
	notifier Notifier

	// PollInterval defaults to DefaultPollInterval when zero
	PollInterval time.Duration

	mu          sync.Mutex
	state       WitnessState
	witnessID   string
	witnessName string
	calledBy    string
	history     []models.ExaminationItem
	pollCancel  context.CancelFunc
}

// NewWitnessMachine builds a machine in the NoWitness state
func NewWitnessMachine(api API, session *Session, notifier Notifier) *WitnessMachine {
	return &WitnessMachine{
		api:      api,
		session:  session,
		notifier: orNop(notifier),
	}
}

func (m *WitnessMachine) pollInterval() time.Duration {
	if m.PollInterval > 0 {
		return m.PollInterval
	}
	return DefaultPollInterval
}

// State returns the current examination state
func (m *WitnessMachine) State() WitnessState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// WitnessID returns the id of the witness on the stand, empty in
// NoWitness
func (m *WitnessMachine) WitnessID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.witnessID
}

// WitnessName returns the display name of the witness on the stand
func (m *WitnessMachine) WitnessName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.witnessName
}

// CalledBy returns which party called the current witness
func (m *WitnessMachine) CalledBy() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calledBy
}

// History returns a copy of the recorded examination exchanges
func (m *WitnessMachine) History() []models.ExaminationItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ExaminationItem(nil), m.history...)
}

// AvailableWitnesses lists the callable witnesses for the case
func (m *WitnessMachine) AvailableWitnesses(ctx context.Context) ([]models.WitnessInfo, error) {
	resp, err := m.api.AvailableWitnesses(ctx, m.session.CNR())
	if err != nil {
		return nil, err
	}
	return resp.Witnesses, nil
}

// CallWitness puts a witness on the stand for the human party. Legal only
// in NoWitness; a failed call leaves the machine in NoWitness.
func (m *WitnessMachine) CallWitness(ctx context.Context, witnessID string) error {
	m.mu.Lock()
	if m.state != NoWitness {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot call a witness in state %s", ErrStateConflict, state)
	}
	m.mu.Unlock()

	resp, err := m.api.CallWitness(ctx, m.session.CNR(), witnessID, m.session.Role())
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.state = UserQuestioning
	m.witnessID = resp.WitnessID
	m.witnessName = resp.WitnessName
	m.calledBy = m.session.Role()
	m.history = nil
	m.mu.Unlock()

	m.notifier.Notify(EventWitnessStateChange, UserQuestioning)
	return nil
}

// Examine asks the witness one question and records the answer. Legal
// only in UserQuestioning.
func (m *WitnessMachine) Examine(ctx context.Context, question string) (*models.ExaminationResponse, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", ErrValidation)
	}
	m.mu.Lock()
	if m.state != UserQuestioning {
		state := m.state
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot examine in state %s", ErrStateConflict, state)
	}
	m.mu.Unlock()

	resp, err := m.api.ExamineWitness(ctx, m.session.CNR(), m.session.Role(), question)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.history = append(m.history, models.ExaminationItem{
		ID:        resp.ExaminationID,
		Examiner:  m.session.Role(),
		Question:  resp.Question,
		Answer:    resp.Answer,
		Timestamp: resp.Timestamp,
	})
	history := append([]models.ExaminationItem(nil), m.history...)
	m.mu.Unlock()

	m.notifier.Notify(EventExaminationUpdated, history)
	return resp, nil
}

// NoMoreQuestions hands the witness to the AI for cross-examination. The
// transition to AICrossExamining happens synchronously; the machine then
// polls until the server reports the examination finished. A failed
// request reverts to UserQuestioning.
func (m *WitnessMachine) NoMoreQuestions(ctx context.Context) error {
	m.mu.Lock()
	if m.state != UserQuestioning {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: no examination to finish in state %s", ErrStateConflict, state)
	}
	m.state = AICrossExamining
	m.mu.Unlock()
	m.notifier.Notify(EventWitnessStateChange, AICrossExamining)

	if err := m.api.AICrossExamine(ctx, m.session.CNR()); err != nil {
		m.mu.Lock()
		m.state = UserQuestioning
		m.mu.Unlock()
		m.notifier.Notify(EventWitnessStateChange, UserQuestioning)
		return err
	}

	m.startPolling(ctx)
	return nil
}

// AskMoreQuestions resumes user questioning from either awaiting state.
// It never moves through an AI-examining state.
func (m *WitnessMachine) AskMoreQuestions() error {
	m.mu.Lock()
	if m.state != AwaitingUserChoice && m.state != AwaitingUserCross {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot resume questioning in state %s", ErrStateConflict, state)
	}
	m.state = UserQuestioning
	m.mu.Unlock()

	m.notifier.Notify(EventWitnessStateChange, UserQuestioning)
	return nil
}

// NoFurtherQuestions dismisses the witness from either awaiting state and
// clears the session. A failed conclude reverts to the prior state with
// history intact.
func (m *WitnessMachine) NoFurtherQuestions(ctx context.Context) error {
	m.mu.Lock()
	if m.state != AwaitingUserChoice && m.state != AwaitingUserCross {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot dismiss the witness in state %s", ErrStateConflict, state)
	}
	prior := m.state
	m.mu.Unlock()

	if _, err := m.api.ConcludeWitness(ctx, m.session.CNR()); err != nil {
		m.mu.Lock()
		m.state = prior
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()

	m.stopPolling()
	m.notifier.Notify(EventWitnessStateChange, NoWitness)
	return nil
}

// Poll fetches the server's examination view and applies it. Exposed so
// a push notification or a test can force a refresh between ticks.
func (m *WitnessMachine) Poll(ctx context.Context) error {
	resp, err := m.api.CurrentWitness(ctx, m.session.CNR())
	if err != nil {
		return err
	}
	m.apply(resp)
	return nil
}

// apply reconciles the local state with one server observation
func (m *WitnessMachine) apply(resp *models.CurrentWitnessResponse) {
	m.mu.Lock()
	prior := m.state

	// A resolved or adjourned case has no examination left to track;
	// clear the session and stop the poll loop
	if resp.CaseStatus == models.CaseStatusResolved || resp.CaseStatus == models.CaseStatusAdjourned {
		m.clearLocked()
		m.mu.Unlock()
		m.stopPolling()
		m.notifyIfChanged(prior)
		return
	}

	if !resp.HasWitness {
		// The stand is empty server-side. An AI-examining state holds its
		// ground only while the server still reports an examination in
		// flight; everything else reconciles to empty.
		if resp.IsAIExamining && (m.state == AICrossExamining || m.state == AIExaminingFirst) {
			m.mu.Unlock()
			return
		}
		m.clearLocked()
		m.mu.Unlock()
		m.notifyIfChanged(prior)
		return
	}

	next := m.state
	switch m.state {
	case NoWitness:
		// AI-initiated call: the opposing party put a witness on the
		// stand before we did anything
		if resp.CalledBy == m.session.Role() {
			next = UserQuestioning
		} else if len(resp.ExaminationHistory) == 0 || resp.IsAIExamining {
			next = AIExaminingFirst
		}
	case AICrossExamining:
		if !resp.IsAIExamining {
			next = AwaitingUserChoice
		}
	case AIExaminingFirst:
		if !resp.IsAIExamining {
			next = AwaitingUserCross
		}
	case AwaitingUserChoice:
		// Stability: only a fresh true observation may force a downgrade
		if resp.IsAIExamining {
			next = AICrossExamining
		}
	case AwaitingUserCross:
		if resp.IsAIExamining {
			next = AIExaminingFirst
		}
	}

	// Adopt the server's view of the witness and history only once the
	// machine is in a witness session; the server is authoritative for
	// recorded exchanges
	if next != NoWitness {
		m.witnessID = resp.WitnessID
		m.witnessName = resp.WitnessName
		m.history = append([]models.ExaminationItem(nil), resp.ExaminationHistory...)
		if resp.CalledBy != "" {
			m.calledBy = resp.CalledBy
		}
	}
	m.state = next
	m.mu.Unlock()

	m.notifyIfChanged(prior)
	if next != NoWitness {
		m.notifier.Notify(EventExaminationUpdated, resp.ExaminationHistory)
	}
}

// clearLocked resets the witness session fields; callers hold m.mu
func (m *WitnessMachine) clearLocked() {
	m.state = NoWitness
	m.witnessID = ""
	m.witnessName = ""
	m.calledBy = ""
	m.history = nil
}

func (m *WitnessMachine) notifyIfChanged(prior WitnessState) {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	if state != prior {
		m.notifier.Notify(EventWitnessStateChange, state)
	}
}

// StartPolling begins the fixed-interval poll loop; it stops on its own
// once the machine leaves the AI-examining states, or when ctx closes
func (m *WitnessMachine) StartPolling(ctx context.Context) {
	m.startPolling(ctx)
}

func (m *WitnessMachine) startPolling(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.pollCancel != nil {
		m.pollCancel()
	}
	m.pollCancel = cancel
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.pollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = m.Poll(ctx)
				state := m.State()
				if state != AICrossExamining && state != AIExaminingFirst {
					return
				}
			}
		}
	}()
}

func (m *WitnessMachine) stopPolling() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollCancel != nil {
		m.pollCancel()
		m.pollCancel = nil
	}
}

// Close cancels any outstanding polling; callers must invoke it when the
// owning view goes away or the case resolves
func (m *WitnessMachine) Close() {
	m.stopPolling()
}
