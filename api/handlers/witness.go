package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
	"github.com/ParthRana1023/AI-Courtroom-sub001/llm"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// Witness exported for testing purposes
type Witness struct {
	DB  databases.CaseDatabase
	LLM llm.Generator
	Hub *Hub

	// QuestionDelay paces AI-driven examinations so transcripts read as a
	// back-and-forth rather than arriving in one burst. Zero in tests.
	QuestionDelay time.Duration
	// MaxAIQuestions caps a single AI examination; the generation service
	// may stop earlier
	MaxAIQuestions int
}

type callWitnessRequest struct {
	Role string `json:"role"`
}

type examineWitnessRequest struct {
	Role     string `json:"role"`
	Question string `json:"question"`
}

func (wit Witness) maxQuestions() int {
	if wit.MaxAIQuestions > 0 {
		return wit.MaxAIQuestions
	}
	return 4
}

// AvailableWitnessesHandler lists the parties of a case along with whether
// each has already testified
func (wit Witness) AvailableWitnessesHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	resp := models.AvailableWitnessesResponse{
		Witnesses:        []models.WitnessInfo{},
		CurrentWitnessID: c.CurrentWitnessID,
	}
	for _, p := range c.PartiesInvolved {
		resp.Witnesses = append(resp.Witnesses, models.WitnessInfo{
			ID:           p.ID,
			Name:         p.Name,
			Role:         p.Role,
			HasTestified: hasTestified(c, p.ID),
		})
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// CallWitnessHandler puts a witness on the stand for the requesting party.
// Only one witness may be on the stand at a time.
func (wit Witness) CallWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]
	witnessID := mux.Vars(r)["witnessId"]

	var req callWitnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Role != models.RolePlaintiff && req.Role != models.RoleDefendant {
		config.ErrorStatus("invalid role specified", http.StatusBadRequest, w, fmt.Errorf("role must be 'plaintiff' or 'defendant', got %q", req.Role))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.Status == models.CaseStatusResolved {
		config.ErrorStatus("case is already resolved", http.StatusConflict, w, fmt.Errorf("case %s is resolved", cnr))
		return
	}
	if c.CurrentWitnessID != "" {
		config.ErrorStatus("a witness is already on the stand", http.StatusConflict, w, fmt.Errorf("witness %s is currently testifying", c.CurrentWitnessID))
		return
	}

	party := findParty(c, witnessID)
	if party == nil {
		config.ErrorStatus("witness not found", http.StatusNotFound, w, fmt.Errorf("no party %s in case %s", witnessID, cnr))
		return
	}
	if hasTestified(c, witnessID) {
		config.ErrorStatus("witness has already testified", http.StatusConflict, w, fmt.Errorf("witness %s was already examined", witnessID))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	c.WitnessTestimonies = append(c.WitnessTestimonies, models.WitnessTestimony{
		ID:          uuid.New().String(),
		WitnessID:   party.ID,
		WitnessName: party.Name,
		CalledBy:    req.Role,
		Examination: []models.ExaminationItem{},
		StartedAt:   now,
	})

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"witnessTestimonies": c.WitnessTestimonies,
		"currentWitnessID":   party.ID,
		"updatedAt":          now,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.CallWitnessResponse{
		WitnessID:   party.ID,
		WitnessName: party.Name,
		WitnessRole: party.Role,
		Message:     fmt.Sprintf("%s has been called to the stand", party.Name),
	})
}

// ExamineWitnessHandler answers a single user question through the witness
// on the stand
func (wit Witness) ExamineWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	var req examineWitnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		config.ErrorStatus("question must not be empty", http.StatusBadRequest, w, fmt.Errorf("empty question"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.CurrentWitnessID == "" {
		config.ErrorStatus("no witness is on the stand", http.StatusConflict, w, fmt.Errorf("case %s has no current witness", cnr))
		return
	}
	if c.IsAIExamining {
		config.ErrorStatus("opposing counsel is examining the witness", http.StatusConflict, w, fmt.Errorf("AI examination in progress on case %s", cnr))
		return
	}

	testimony := openTestimony(c)
	if testimony == nil {
		config.ErrorStatus("no open testimony for current witness", http.StatusConflict, w, fmt.Errorf("case %s witness state is inconsistent", cnr))
		return
	}
	party := findParty(c, testimony.WitnessID)
	if party == nil {
		config.ErrorStatus("witness not found", http.StatusNotFound, w, fmt.Errorf("no party %s in case %s", testimony.WitnessID, cnr))
		return
	}

	answer, err := wit.LLM.ExamineWitness(r.Context(), llm.WitnessContext{
		WitnessName: party.Name,
		WitnessRole: party.Role,
		WitnessBio:  party.Bio,
		LawyerRole:  req.Role,
		CaseDetails: c.Details,
		Testimony:   testimony.Examination,
		Question:    req.Question,
	})
	if err != nil {
		config.ErrorStatus("failed to generate witness answer", http.StatusBadGateway, w, err)
		return
	}

	item := models.ExaminationItem{
		ID:        uuid.New().String(),
		Examiner:  req.Role,
		Question:  req.Question,
		Answer:    answer,
		Timestamp: primitive.NewDateTimeFromTime(time.Now()),
	}
	testimony.Examination = append(testimony.Examination, item)

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"witnessTestimonies": c.WitnessTestimonies,
		"updatedAt":          item.Timestamp,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.ExaminationResponse{
		ExaminationID: item.ID,
		WitnessID:     testimony.WitnessID,
		Question:      item.Question,
		Answer:        item.Answer,
		Timestamp:     item.Timestamp,
	})
}

// AICrossExamineHandler hands the current witness over to the AI for
// cross-examination. The questioning runs in the background; clients track
// progress through the current-witness endpoint or the notifications
// socket.
func (wit Witness) AICrossExamineHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.CurrentWitnessID == "" {
		config.ErrorStatus("no witness is on the stand", http.StatusConflict, w, fmt.Errorf("case %s has no current witness", cnr))
		return
	}
	if c.IsAIExamining {
		config.ErrorStatus("cross-examination already in progress", http.StatusConflict, w, fmt.Errorf("AI examination in progress on case %s", cnr))
		return
	}

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"isAIExamining": true,
		"updatedAt":     primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	go wit.runAIExamination(cnr, c.UserID, c.CurrentWitnessID, c.AIRole)

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "cross-examination started"})
}

// AIExamineOwnWitnessHandler lets the AI lawyer decide whether to call one
// of its remaining witnesses; the choice of witness, including declining
// altogether, belongs to the generation service. A call starts a
// background examination. Responds with conflict when no witness is
// available or the stand is occupied.
func (wit Witness) AIExamineOwnWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.CurrentWitnessID != "" {
		config.ErrorStatus("a witness is already on the stand", http.StatusConflict, w, fmt.Errorf("witness %s is currently testifying", c.CurrentWitnessID))
		return
	}

	available := []models.WitnessInfo{}
	for _, p := range c.PartiesInvolved {
		if !hasTestified(c, p.ID) {
			available = append(available, models.WitnessInfo{ID: p.ID, Name: p.Name, Role: p.Role})
		}
	}
	if len(available) == 0 {
		config.ErrorStatus("no witnesses left to call", http.StatusConflict, w, fmt.Errorf("all parties in case %s have testified", cnr))
		return
	}

	witnessID, err := wit.LLM.ShouldCallWitness(r.Context(), c.AIRole, c.Details, historyText(c), available)
	if err != nil {
		config.ErrorStatus("failed to evaluate witness strategy", http.StatusBadGateway, w, err)
		return
	}
	if witnessID == "" {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"should_call": false,
			"reason":      "opposing counsel declines to call a witness at this time",
		})
		return
	}

	next := findParty(c, witnessID)
	if next == nil || hasTestified(c, next.ID) {
		// service named a witness outside the pool, fall back to the first
		// one still available
		next = findParty(c, available[0].ID)
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	c.WitnessTestimonies = append(c.WitnessTestimonies, models.WitnessTestimony{
		ID:          uuid.New().String(),
		WitnessID:   next.ID,
		WitnessName: next.Name,
		CalledBy:    c.AIRole,
		Examination: []models.ExaminationItem{},
		StartedAt:   now,
	})

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"witnessTestimonies": c.WitnessTestimonies,
		"currentWitnessID":   next.ID,
		"isAIExamining":      true,
		"updatedAt":          now,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	go wit.runAIExamination(cnr, c.UserID, next.ID, c.AIRole)

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(models.CallWitnessResponse{
		WitnessID:   next.ID,
		WitnessName: next.Name,
		WitnessRole: next.Role,
		Message:     fmt.Sprintf("%s has been called to the stand by opposing counsel", next.Name),
	})
}

// runAIExamination generates question/answer pairs until the generation
// service declines to continue or the cap is reached. Every iteration
// re-reads the case and stops if the examination flag was cleared or the
// witness changed underneath it.
func (wit Witness) runAIExamination(cnr, caseUserID, witnessID, examinerRole string) {
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
		defer cancel()
		err := wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
			"isAIExamining": false,
			"updatedAt":     primitive.NewDateTimeFromTime(time.Now()),
		}})
		if err != nil {
			zap.S().Errorw("failed to clear examination flag", "cnr", cnr, "error", err)
		}
		wit.Hub.Push(caseUserID, EventCrossExaminationComplete, map[string]string{
			"cnr":        cnr,
			"witness_id": witnessID,
		})
	}()

	max := wit.maxQuestions()
	for asked := 0; asked < max; asked++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
		if err != nil {
			cancel()
			zap.S().Errorw("examination aborted, case fetch failed", "cnr", cnr, "error", err)
			return
		}
		if !c.IsAIExamining || c.CurrentWitnessID != witnessID {
			cancel()
			return
		}
		testimony := openTestimony(c)
		party := findParty(c, witnessID)
		if testimony == nil || party == nil {
			cancel()
			return
		}

		wc := llm.WitnessContext{
			WitnessName: party.Name,
			WitnessRole: party.Role,
			WitnessBio:  party.Bio,
			LawyerRole:  examinerRole,
			CaseDetails: c.Details,
			Testimony:   testimony.Examination,
			Arguments:   historyText(c),
		}

		question, err := wit.LLM.CrossExaminationQuestion(ctx, wc)
		if err != nil {
			cancel()
			zap.S().Errorw("failed to generate examination question", "cnr", cnr, "error", err)
			return
		}
		wc.Question = question
		answer, err := wit.LLM.ExamineWitness(ctx, wc)
		if err != nil {
			cancel()
			zap.S().Errorw("failed to generate witness answer", "cnr", cnr, "error", err)
			return
		}

		item := models.ExaminationItem{
			ID:        uuid.New().String(),
			Examiner:  examinerRole,
			Question:  question,
			Answer:    answer,
			Timestamp: primitive.NewDateTimeFromTime(time.Now()),
		}
		testimony.Examination = append(testimony.Examination, item)

		err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
			"witnessTestimonies": c.WitnessTestimonies,
			"updatedAt":          item.Timestamp,
		}})
		if err != nil {
			cancel()
			zap.S().Errorw("failed to save examination exchange", "cnr", cnr, "error", err)
			return
		}

		cont, err := wit.LLM.ShouldContinueCrossExamination(ctx, wc, asked+1, max)
		cancel()
		if err != nil || !cont {
			return
		}
		time.Sleep(wit.QuestionDelay)
	}
}

// ConcludeWitnessHandler dismisses the witness on the stand and closes its
// testimony
func (wit Witness) ConcludeWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.CurrentWitnessID == "" {
		config.ErrorStatus("no witness is on the stand", http.StatusConflict, w, fmt.Errorf("case %s has no current witness", cnr))
		return
	}
	testimony := openTestimony(c)
	if testimony == nil {
		config.ErrorStatus("no open testimony for current witness", http.StatusConflict, w, fmt.Errorf("case %s witness state is inconsistent", cnr))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	testimony.EndedAt = now

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"witnessTestimonies": c.WitnessTestimonies,
		"currentWitnessID":   "",
		"isAIExamining":      false,
		"updatedAt":          now,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.ConcludeWitnessResponse{
		WitnessID:           testimony.WitnessID,
		WitnessName:         testimony.WitnessName,
		TotalQuestionsAsked: len(testimony.Examination),
		Message:             fmt.Sprintf("%s has been dismissed from the stand", testimony.WitnessName),
	})
}

// DismissWitnessHandler force-clears the stand, abandoning any AI
// examination in progress. Unlike conclude it is legal whenever a witness
// is present; recorded history is kept.
func (wit Witness) DismissWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if c.CurrentWitnessID == "" {
		config.ErrorStatus("no witness is on the stand", http.StatusConflict, w, fmt.Errorf("case %s has no current witness", cnr))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	name := c.CurrentWitnessID
	questions := 0
	if testimony := openTestimony(c); testimony != nil {
		testimony.EndedAt = now
		name = testimony.WitnessName
		questions = len(testimony.Examination)
	}

	err = wit.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"witnessTestimonies": c.WitnessTestimonies,
		"currentWitnessID":   "",
		"isAIExamining":      false,
		"updatedAt":          now,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.ConcludeWitnessResponse{
		WitnessID:           c.CurrentWitnessID,
		WitnessName:         name,
		TotalQuestionsAsked: questions,
		Message:             fmt.Sprintf("%s has been dismissed from the stand", name),
	})
}

// CurrentWitnessHandler is the poll target for examination state
func (wit Witness) CurrentWitnessHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	resp := models.CurrentWitnessResponse{
		CaseStatus:         c.Status,
		IsAIExamining:      c.IsAIExamining,
		ExaminationHistory: []models.ExaminationItem{},
	}
	if c.CurrentWitnessID != "" {
		resp.HasWitness = true
		resp.WitnessID = c.CurrentWitnessID
		if party := findParty(c, c.CurrentWitnessID); party != nil {
			resp.WitnessName = party.Name
			resp.WitnessRole = party.Role
		}
		if testimony := openTestimony(c); testimony != nil {
			resp.CalledBy = testimony.CalledBy
			resp.ExaminationHistory = testimony.Examination
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// WitnessTestimoniesHandler returns every testimony recorded for a case
func (wit Witness) WitnessTestimoniesHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := wit.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	testimonies := c.WitnessTestimonies
	if testimonies == nil {
		testimonies = []models.WitnessTestimony{}
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(testimonies)
}

func findParty(c *models.Case, id string) *models.Party {
	for i := range c.PartiesInvolved {
		if c.PartiesInvolved[i].ID == id {
			return &c.PartiesInvolved[i]
		}
	}
	return nil
}

// openTestimony returns the testimony still in progress, if any
func openTestimony(c *models.Case) *models.WitnessTestimony {
	for i := range c.WitnessTestimonies {
		if c.WitnessTestimonies[i].EndedAt == 0 {
			return &c.WitnessTestimonies[i]
		}
	}
	return nil
}

func hasTestified(c *models.Case, witnessID string) bool {
	for _, t := range c.WitnessTestimonies {
		if t.WitnessID == witnessID && t.EndedAt != 0 {
			return true
		}
	}
	return false
}
