package courtroom_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ParthRana1023/AI-Courtroom-sub001/courtroom"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

func newPipeline(t *testing.T, api *fakeAPI, role string) (*courtroom.Pipeline, *courtroom.Session) {
	t.Helper()
	s := courtroom.NewSession(api, "CNR-1")
	if role != "" {
		_, err := s.AssignRole(context.Background(), role)
		assert.NoError(t, err)
	}
	p := courtroom.NewPipeline(api, s, nil, nil)
	return p, s
}

func TestSubmitArgumentRejectsEmptyTextLocally(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RolePlaintiff)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := p.SubmitArgument(context.Background(), text)
		assert.ErrorIs(t, err, courtroom.ErrValidation)
	}
	assert.Equal(t, 0, api.callCount("SubmitArgument"))
}

func TestSubmitArgumentRequiresRole(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, "")

	_, err := p.SubmitArgument(context.Background(), "your honor, I object")
	assert.ErrorIs(t, err, courtroom.ErrAuthorization)
	assert.Equal(t, 0, api.callCount("SubmitArgument"))
}

func TestSubmitArgumentAppendsUserAndAIEntries(t *testing.T) {
	api := newFakeAPI()
	api.argResp = &models.ArgumentResponse{
		AIOpeningStatement: "the defense will show",
		AIOpeningRole:      models.RoleDefendant,
		AICounterArgument:  "that claim is baseless",
		AICounterRole:      models.RoleDefendant,
	}
	p, s := newPipeline(t, api, models.RolePlaintiff)

	_, err := p.SubmitArgument(context.Background(), "the contract was breached")
	assert.NoError(t, err)

	transcript := p.Transcript()
	assert.Len(t, transcript, 3)

	// fixed order: user entry, AI opening one second later, AI counter
	// two seconds later
	assert.Equal(t, models.ArgumentTypeUser, transcript[0].Type)
	assert.Equal(t, models.RolePlaintiff, transcript[0].Branch)
	assert.Equal(t, models.ArgumentTypeOpening, transcript[1].Type)
	assert.Equal(t, models.RoleDefendant, transcript[1].Branch)
	assert.Equal(t, models.ArgumentTypeCounter, transcript[2].Type)
	assert.True(t, transcript[0].Timestamp < transcript[1].Timestamp)
	assert.True(t, transcript[1].Timestamp < transcript[2].Timestamp)

	// a successful submission locks the role
	assert.True(t, s.Locked())
}

func TestSubmitArgumentFailureLeavesTranscriptUnmodified(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RolePlaintiff)

	_, err := p.SubmitArgument(context.Background(), "first point")
	assert.NoError(t, err)
	before := len(p.Transcript())

	api.argErr = fmt.Errorf("%w: generation backend unavailable", courtroom.ErrService)
	_, err = p.SubmitArgument(context.Background(), "second point")
	assert.ErrorIs(t, err, courtroom.ErrService)
	assert.Len(t, p.Transcript(), before)
}

func TestUserEntryCountTracksSubmissions(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RoleDefendant)

	for i := 1; i <= 4; i++ {
		_, err := p.SubmitArgument(context.Background(), fmt.Sprintf("point %d", i))
		assert.NoError(t, err)
		assert.Equal(t, i, p.UserEntryCount())
	}
}

func TestClosingEligibilityFlipsAtThreshold(t *testing.T) {
	api := newFakeAPI()
	// first exchange returns the user's entry as an opening, so seed past
	// it with plain counters
	p, _ := newPipeline(t, api, models.RolePlaintiff)

	assert.False(t, p.ClosingEligible())
	for i := 1; i <= 3; i++ {
		_, err := p.SubmitArgument(context.Background(), fmt.Sprintf("point %d", i))
		assert.NoError(t, err)
		assert.Equal(t, i >= 3, p.ClosingEligible(), "after %d submissions", i)
	}
}

func TestClosingBlockedBeforeThreshold(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RolePlaintiff)

	_, err := p.SubmitArgument(context.Background(), "only one point")
	assert.NoError(t, err)

	_, err = p.SubmitClosing(context.Background(), "the plaintiff rests")
	assert.ErrorIs(t, err, courtroom.ErrStateConflict)
	assert.Equal(t, 0, api.callCount("SubmitClosingStatement"))
}

func TestClosingResolvesCaseAndStoresVerdict(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RolePlaintiff)

	for i := 1; i <= 3; i++ {
		_, err := p.SubmitArgument(context.Background(), fmt.Sprintf("point %d", i))
		assert.NoError(t, err)
	}

	resp, err := p.SubmitClosing(context.Background(), "the plaintiff rests")
	assert.NoError(t, err)
	assert.Equal(t, "judgment for the plaintiff", resp.Verdict)
	assert.Equal(t, "judgment for the plaintiff", p.Verdict())
	assert.Equal(t, models.CaseStatusResolved, p.Status())

	// nothing further may be submitted on a resolved case
	_, err = p.SubmitArgument(context.Background(), "one more thing")
	assert.ErrorIs(t, err, courtroom.ErrStateConflict)
}

func TestCustomClosingThreshold(t *testing.T) {
	api := newFakeAPI()
	p, _ := newPipeline(t, api, models.RoleDefendant)
	p.ClosingThreshold = 1

	_, err := p.SubmitArgument(context.Background(), "single decisive point")
	assert.NoError(t, err)
	assert.True(t, p.ClosingEligible())
}

func TestSubmitBlockedByRateLimitMirror(t *testing.T) {
	api := newFakeAPI()
	wait := 120
	api.windowResp = &models.RateLimitWindow{
		RemainingAttempts: 0,
		MaxAttempts:       5,
		SecondsUntilNext:  &wait,
	}

	s := courtroom.NewSession(api, "CNR-1")
	_, err := s.AssignRole(context.Background(), models.RolePlaintiff)
	assert.NoError(t, err)

	mirror := courtroom.NewRateLimitMirror(api)
	assert.NoError(t, mirror.Refresh(context.Background()))

	p := courtroom.NewPipeline(api, s, mirror, nil)
	_, err = p.SubmitArgument(context.Background(), "overruled")
	assert.ErrorIs(t, err, courtroom.ErrRateLimited)
	assert.Equal(t, 0, api.callCount("SubmitArgument"))
}

func TestSubmitRefreshesMirror(t *testing.T) {
	api := newFakeAPI()
	s := courtroom.NewSession(api, "CNR-1")
	_, err := s.AssignRole(context.Background(), models.RolePlaintiff)
	assert.NoError(t, err)

	mirror := courtroom.NewRateLimitMirror(api)
	assert.NoError(t, mirror.Refresh(context.Background()))
	fetches := api.callCount("ArgumentRateLimit")

	p := courtroom.NewPipeline(api, s, mirror, nil)
	_, err = p.SubmitArgument(context.Background(), "exhibit A")
	assert.NoError(t, err)
	assert.Equal(t, fetches+1, api.callCount("ArgumentRateLimit"))
}
