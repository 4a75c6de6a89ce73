package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api/handlers"
	mocksdb "github.com/ParthRana1023/AI-Courtroom-sub001/databases/mocks"
	mocksllm "github.com/ParthRana1023/AI-Courtroom-sub001/llm/mocks"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

func TestCaseHandlerNotFound(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(nil, mongo.ErrNoDocuments)

	ca := handlers.Case{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/CNR-404", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-404"})
	w := httptest.NewRecorder()
	ca.CaseHandler(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCaseHistory(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		CNR:     "CNR-30",
		Status:  models.CaseStatusResolved,
		Verdict: "judgment for the defendant",
		PlaintiffArguments: []models.Argument{
			{Type: models.ArgumentTypeOpening, Content: "opening", Branch: models.RolePlaintiff},
		},
	}, nil)

	ca := handlers.Case{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/CNR-30/history", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-30"})
	w := httptest.NewRecorder()
	ca.CaseHistoryHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CaseHistory
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.PlaintiffArguments, 1)
	assert.NotNil(t, resp.DefendantArguments)
	assert.Equal(t, "judgment for the defendant", resp.Verdict)
}

func TestUpdateCaseRolesAssigns(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		CNR:    "CNR-31",
		Status: models.CaseStatusNotStarted,
	}, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ca := handlers.Case{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cases/CNR-31/roles", strings.NewReader(`{"role":"defendant"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-31"})
	w := httptest.NewRecorder()
	ca.UpdateCaseRolesHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CaseRolesResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.RoleDefendant, resp.UserRole)
	assert.Equal(t, models.RolePlaintiff, resp.AIRole)
	assert.False(t, resp.RoleLocked)
}

func TestUpdateCaseRolesSilentOverrideWhenLocked(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(&models.Case{
		CNR:        "CNR-32",
		Status:     models.CaseStatusActive,
		UserRole:   models.RolePlaintiff,
		AIRole:     models.RoleDefendant,
		RoleLocked: true,
	}, nil)

	ca := handlers.Case{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cases/CNR-32/roles", strings.NewReader(`{"role":"defendant"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-32"})
	w := httptest.NewRecorder()
	ca.UpdateCaseRolesHandler(w, req)

	// not an error: the established roles come back unchanged
	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CaseRolesResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, models.RolePlaintiff, resp.UserRole)
	assert.True(t, resp.RoleLocked)
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCaseRolesInvalidRole(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	ca := handlers.Case{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPut, "/api/v1/cases/CNR-33/roles", strings.NewReader(`{"role":"judge"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-33"})
	w := httptest.NewRecorder()
	ca.UpdateCaseRolesHandler(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	caseDB.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestGenerateCase(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	rlDB := &mocksdb.RateLimitDatabase{}
	generator := &mocksllm.Generator{}

	generator.On("GenerateCase", mock.Anything, []string{"theft"}, []string{"378"}).Return(&models.Case{
		Title:   "State v. Kumar",
		Details: "alleged theft of industrial equipment",
		PartiesInvolved: []models.Party{
			{ID: "w1", Name: "Ravi Kumar", Role: models.PartyRoleApplicant},
		},
	}, nil)
	caseDB.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	allowAndRecord(rlDB, 0)

	ca := handlers.Case{DB: caseDB, LLM: generator, RL: newRateLimit(rlDB)}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/generate", strings.NewReader(`{"sections_involved":["theft"],"section_numbers":["378"]}`))
	w := httptest.NewRecorder()
	ca.GenerateCaseHandler(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.Case
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "State v. Kumar", resp.Title)
	assert.NotEmpty(t, resp.CNR)
	assert.Equal(t, models.CaseStatusNotStarted, resp.Status)
}
