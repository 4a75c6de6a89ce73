package courtroom_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ParthRana1023/AI-Courtroom-sub001/courtroom"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// fakeAPI is a scriptable server double shared by the orchestration
// tests. Zero-value fields mean "succeed with an empty response".
type fakeAPI struct {
	mu sync.Mutex

	caseResp    *models.Case
	caseErr     error
	rolesResp   *models.CaseRolesResponse
	rolesErr    error
	argResp     *models.ArgumentResponse
	argErr      error
	closingResp *models.ClosingResponse
	closingErr  error
	windowResp  *models.RateLimitWindow
	windowErr   error

	witnessesResp *models.AvailableWitnessesResponse
	currentResp   *models.CurrentWitnessResponse
	currentErr    error
	callResp      *models.CallWitnessResponse
	callErr       error
	examineResp   *models.ExaminationResponse
	examineErr    error
	crossErr      error
	concludeResp  *models.ConcludeWitnessResponse
	concludeErr   error

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{calls: map[string]int{}}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) Case(ctx context.Context, cnr string) (*models.Case, error) {
	f.record("Case")
	if f.caseErr != nil {
		return nil, f.caseErr
	}
	if f.caseResp != nil {
		return f.caseResp, nil
	}
	return &models.Case{CNR: cnr, Status: models.CaseStatusNotStarted}, nil
}

func (f *fakeAPI) AssignRole(ctx context.Context, cnr, role string) (*models.CaseRolesResponse, error) {
	f.record("AssignRole")
	if f.rolesErr != nil {
		return nil, f.rolesErr
	}
	if f.rolesResp != nil {
		return f.rolesResp, nil
	}
	return &models.CaseRolesResponse{UserRole: role, AIRole: models.OpposingRole(role)}, nil
}

func (f *fakeAPI) SubmitArgument(ctx context.Context, cnr, role, text string) (*models.ArgumentResponse, error) {
	f.record("SubmitArgument")
	if f.argErr != nil {
		return nil, f.argErr
	}
	if f.argResp != nil {
		return f.argResp, nil
	}
	return &models.ArgumentResponse{
		AICounterArgument: "objection noted",
		AICounterRole:     models.OpposingRole(role),
	}, nil
}

func (f *fakeAPI) SubmitClosingStatement(ctx context.Context, cnr, role, text string) (*models.ClosingResponse, error) {
	f.record("SubmitClosingStatement")
	if f.closingErr != nil {
		return nil, f.closingErr
	}
	if f.closingResp != nil {
		return f.closingResp, nil
	}
	return &models.ClosingResponse{
		Verdict:            "judgment for the plaintiff",
		AIClosingStatement: "the defense rests",
		AIClosingRole:      models.OpposingRole(role),
	}, nil
}

func (f *fakeAPI) ArgumentRateLimit(ctx context.Context) (*models.RateLimitWindow, error) {
	f.record("ArgumentRateLimit")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.windowErr != nil {
		return nil, f.windowErr
	}
	if f.windowResp != nil {
		w := *f.windowResp
		if f.windowResp.SecondsUntilNext != nil {
			s := *f.windowResp.SecondsUntilNext
			w.SecondsUntilNext = &s
		}
		return &w, nil
	}
	return &models.RateLimitWindow{RemainingAttempts: 5, MaxAttempts: 5}, nil
}

func (f *fakeAPI) AvailableWitnesses(ctx context.Context, cnr string) (*models.AvailableWitnessesResponse, error) {
	f.record("AvailableWitnesses")
	if f.witnessesResp != nil {
		return f.witnessesResp, nil
	}
	return &models.AvailableWitnessesResponse{Witnesses: []models.WitnessInfo{}}, nil
}

func (f *fakeAPI) CurrentWitness(ctx context.Context, cnr string) (*models.CurrentWitnessResponse, error) {
	f.record("CurrentWitness")
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.currentResp != nil {
		resp := *f.currentResp
		return &resp, nil
	}
	return &models.CurrentWitnessResponse{HasWitness: false, CaseStatus: models.CaseStatusActive}, nil
}

func (f *fakeAPI) setCurrentWitness(resp *models.CurrentWitnessResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentResp = resp
}

func (f *fakeAPI) CallWitness(ctx context.Context, cnr, witnessID, role string) (*models.CallWitnessResponse, error) {
	f.record("CallWitness")
	if f.callErr != nil {
		return nil, f.callErr
	}
	if f.callResp != nil {
		return f.callResp, nil
	}
	return &models.CallWitnessResponse{WitnessID: witnessID, WitnessName: "Ravi Kumar"}, nil
}

func (f *fakeAPI) ExamineWitness(ctx context.Context, cnr, role, question string) (*models.ExaminationResponse, error) {
	f.record("ExamineWitness")
	if f.examineErr != nil {
		return nil, f.examineErr
	}
	if f.examineResp != nil {
		return f.examineResp, nil
	}
	return &models.ExaminationResponse{
		ExaminationID: fmt.Sprintf("exam-%d", f.callCount("ExamineWitness")),
		Question:      question,
		Answer:        "I was at the warehouse that night",
		Timestamp:     primitive.NewDateTimeFromTime(time.Now()),
	}, nil
}

func (f *fakeAPI) AICrossExamine(ctx context.Context, cnr string) error {
	f.record("AICrossExamine")
	return f.crossErr
}

func (f *fakeAPI) ConcludeWitness(ctx context.Context, cnr string) (*models.ConcludeWitnessResponse, error) {
	f.record("ConcludeWitness")
	if f.concludeErr != nil {
		return nil, f.concludeErr
	}
	if f.concludeResp != nil {
		return f.concludeResp, nil
	}
	return &models.ConcludeWitnessResponse{Message: "witness dismissed"}, nil
}

func TestSessionAssignRole(t *testing.T) {
	api := newFakeAPI()
	s := courtroom.NewSession(api, "CNR-1")

	role, err := s.AssignRole(context.Background(), models.RolePlaintiff)
	assert.NoError(t, err)
	assert.Equal(t, models.RolePlaintiff, role)
	assert.Equal(t, models.RolePlaintiff, s.Role())
	assert.False(t, s.Locked())
}

func TestSessionAssignRoleInvalid(t *testing.T) {
	api := newFakeAPI()
	s := courtroom.NewSession(api, "CNR-1")

	_, err := s.AssignRole(context.Background(), "judge")
	assert.ErrorIs(t, err, courtroom.ErrValidation)
	assert.Equal(t, 0, api.callCount("AssignRole"))
}

func TestSessionEstablishedRoleWinsSilently(t *testing.T) {
	api := newFakeAPI()
	api.caseResp = &models.Case{
		CNR:        "CNR-1",
		Status:     models.CaseStatusActive,
		UserRole:   models.RoleDefendant,
		AIRole:     models.RolePlaintiff,
		RoleLocked: true,
	}
	s := courtroom.NewSession(api, "CNR-1")
	assert.NoError(t, s.Load(context.Background()))
	assert.True(t, s.Locked())

	// Requesting the other role is not an error; the established role is
	// returned and no network call is made
	role, err := s.AssignRole(context.Background(), models.RolePlaintiff)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleDefendant, role)
	assert.Equal(t, 0, api.callCount("AssignRole"))
}

func TestSessionRoleLockInferredFromHistory(t *testing.T) {
	// Records written before the explicit lock flag existed carry only
	// the user-authored entries
	api := newFakeAPI()
	api.caseResp = &models.Case{
		CNR:    "CNR-1",
		Status: models.CaseStatusActive,
		PlaintiffArguments: []models.Argument{
			{Type: models.ArgumentTypeUser, Content: "my client is innocent", UserID: "u1", Branch: models.RolePlaintiff},
		},
	}
	s := courtroom.NewSession(api, "CNR-1")
	assert.NoError(t, s.Load(context.Background()))

	assert.True(t, s.Locked())
	assert.Equal(t, models.RolePlaintiff, s.Role())
}
