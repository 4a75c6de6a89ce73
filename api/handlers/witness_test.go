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
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api/handlers"
	mocksdb "github.com/ParthRana1023/AI-Courtroom-sub001/databases/mocks"
	"github.com/ParthRana1023/AI-Courtroom-sub001/llm"
	mocksllm "github.com/ParthRana1023/AI-Courtroom-sub001/llm/mocks"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

func witnessCase() *models.Case {
	return &models.Case{
		CNR:      "CNR-20",
		Status:   models.CaseStatusActive,
		UserRole: models.RolePlaintiff,
		AIRole:   models.RoleDefendant,
		PartiesInvolved: []models.Party{
			{ID: "w1", Name: "Ravi Kumar", Role: models.PartyRoleApplicant},
			{ID: "w2", Name: "Meera Shah", Role: models.PartyRoleNonApplicant},
		},
	}
}

func TestAvailableWitnesses(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.WitnessTestimonies = []models.WitnessTestimony{
		{ID: "t1", WitnessID: "w1", EndedAt: primitive.DateTime(1)},
	}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/CNR-20/witnesses", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.AvailableWitnessesHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.AvailableWitnessesResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Witnesses, 2)
	assert.True(t, resp.Witnesses[0].HasTestified)
	assert.False(t, resp.Witnesses[1].HasTestified)
}

func TestCallWitness(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(witnessCase(), nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/w1/call", strings.NewReader(`{"role":"plaintiff"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20", "witnessId": "w1"})
	w := httptest.NewRecorder()
	wit.CallWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CallWitnessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "w1", resp.WitnessID)
	assert.Equal(t, "Ravi Kumar", resp.WitnessName)
}

func TestCallWitnessWhileStandOccupied(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.CurrentWitnessID = "w2"
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/w1/call", strings.NewReader(`{"role":"plaintiff"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20", "witnessId": "w1"})
	w := httptest.NewRecorder()
	wit.CallWitnessHandler(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallWitnessAlreadyTestified(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.WitnessTestimonies = []models.WitnessTestimony{
		{ID: "t1", WitnessID: "w1", EndedAt: primitive.DateTime(1)},
	}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/w1/call", strings.NewReader(`{"role":"plaintiff"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20", "witnessId": "w1"})
	w := httptest.NewRecorder()
	wit.CallWitnessHandler(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestExamineWitness(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	generator := &mocksllm.Generator{}
	c := witnessCase()
	c.CurrentWitnessID = "w1"
	c.WitnessTestimonies = []models.WitnessTestimony{
		{ID: "t1", WitnessID: "w1", WitnessName: "Ravi Kumar", CalledBy: models.RolePlaintiff},
	}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	generator.On("ExamineWitness", mock.Anything, mock.MatchedBy(func(wc llm.WitnessContext) bool {
		return wc.WitnessName == "Ravi Kumar" && wc.Question == "where were you?"
	})).Return("I was at the warehouse", nil)

	wit := handlers.Witness{DB: caseDB, LLM: generator}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/examine", strings.NewReader(`{"role":"plaintiff","question":"where were you?"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.ExamineWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ExaminationResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "where were you?", resp.Question)
	assert.Equal(t, "I was at the warehouse", resp.Answer)
	assert.NotEmpty(t, resp.ExaminationID)
}

func TestExamineWitnessBlockedDuringAIExamination(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.CurrentWitnessID = "w1"
	c.IsAIExamining = true
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/examine", strings.NewReader(`{"role":"plaintiff","question":"a question"}`))
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.ExamineWitnessHandler(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAIExamineDeclinesWhenServiceSaysNo(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	generator := &mocksllm.Generator{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(witnessCase(), nil)
	generator.On("ShouldCallWitness", mock.Anything, models.RoleDefendant, mock.Anything, mock.Anything, mock.Anything).
		Return("", nil)

	wit := handlers.Witness{DB: caseDB, LLM: generator}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/ai-examine", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.AIExamineOwnWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, false, resp["should_call"])
	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAIExamineCallsServiceChosenWitness(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	generator := &mocksllm.Generator{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(witnessCase(), nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	generator.On("ShouldCallWitness", mock.Anything, models.RoleDefendant, mock.Anything, mock.Anything, mock.MatchedBy(func(available []models.WitnessInfo) bool {
		return len(available) == 2
	})).Return("w2", nil)

	wit := handlers.Witness{DB: caseDB, LLM: generator}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/ai-examine", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.AIExamineOwnWitnessHandler(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp models.CallWitnessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "w2", resp.WitnessID)
	assert.Equal(t, "Meera Shah", resp.WitnessName)
}

func TestConcludeWitness(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.CurrentWitnessID = "w1"
	c.WitnessTestimonies = []models.WitnessTestimony{
		{
			ID: "t1", WitnessID: "w1", WitnessName: "Ravi Kumar", CalledBy: models.RolePlaintiff,
			Examination: []models.ExaminationItem{{ID: "e1"}, {ID: "e2"}},
		},
	}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/CNR-20/witnesses/conclude", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.ConcludeWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.ConcludeWitnessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "w1", resp.WitnessID)
	assert.Equal(t, 2, resp.TotalQuestionsAsked)
}

func TestCurrentWitness(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	c := witnessCase()
	c.CurrentWitnessID = "w2"
	c.IsAIExamining = true
	c.WitnessTestimonies = []models.WitnessTestimony{
		{
			ID: "t1", WitnessID: "w2", WitnessName: "Meera Shah", CalledBy: models.RoleDefendant,
			Examination: []models.ExaminationItem{{ID: "e1", Examiner: models.RoleDefendant}},
		},
	}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(c, nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/CNR-20/witnesses/current", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.CurrentWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CurrentWitnessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.HasWitness)
	assert.True(t, resp.IsAIExamining)
	assert.Equal(t, "w2", resp.WitnessID)
	assert.Equal(t, models.RoleDefendant, resp.CalledBy)
	assert.Len(t, resp.ExaminationHistory, 1)
}

func TestCurrentWitnessEmptyStand(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	caseDB.On("FindOne", mock.Anything, mock.Anything).Return(witnessCase(), nil)

	wit := handlers.Witness{DB: caseDB, LLM: &mocksllm.Generator{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cases/CNR-20/witnesses/current", nil)
	req = mux.SetURLVars(req, map[string]string{"cnr": "CNR-20"})
	w := httptest.NewRecorder()
	wit.CurrentWitnessHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.CurrentWitnessResponse
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.False(t, resp.HasWitness)
	assert.Empty(t, resp.WitnessID)
}
