package handlers

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
	"github.com/ParthRana1023/AI-Courtroom-sub001/llm"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// Case exported for testing purposes
type Case struct {
	DB  databases.CaseDatabase
	LLM llm.Generator
	RL  RateLimit
}

type updateRolesRequest struct {
	Role string `json:"role"`
}

type generateCaseRequest struct {
	SectionsInvolved []string `json:"sections_involved"`
	SectionNumbers   []string `json:"section_numbers"`
}

// CasesHandler lists the authenticated user's cases, newest first.
// Supports ?page and ?limit query params.
func (ca Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	userID := api.RequestUserID(r)

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	cases, err := ca.DB.Find(ctx, bson.M{"userID": userID}, opts)
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}

	total, err := ca.DB.CountDocuments(ctx, bson.M{"userID": userID})
	if err != nil {
		config.ErrorStatus("failed to count cases", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cases": cases,
		"page":  page,
		"limit": limit,
		"total": total,
	})
}

// CaseHandler returns a single case by CNR
func (ca Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := ca.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	userID := api.RequestUserID(r)
	if userID != "" && c.UserID != "" && c.UserID != userID {
		config.ErrorStatus("you don't have permission to access this case", http.StatusForbidden, w, fmt.Errorf("case %s belongs to another user", cnr))
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c)
}

// CaseHistoryHandler returns both argument branches and the verdict
func (ca Case) CaseHistoryHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := ca.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	history := models.CaseHistory{
		PlaintiffArguments: c.PlaintiffArguments,
		DefendantArguments: c.DefendantArguments,
		Verdict:            c.Verdict,
	}
	if history.PlaintiffArguments == nil {
		history.PlaintiffArguments = []models.Argument{}
	}
	if history.DefendantArguments == nil {
		history.DefendantArguments = []models.Argument{}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(history)
}

// UpdateCaseRolesHandler assigns the user's role for a case. Once a role
// is established it cannot change: a request for a different role is not
// an error, the response simply carries the roles still in effect.
func (ca Case) UpdateCaseRolesHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	var req updateRolesRequest
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

	c, err := ca.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}

	if c.RoleLocked {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(models.CaseRolesResponse{
			UserRole:   c.UserRole,
			AIRole:     c.AIRole,
			RoleLocked: true,
		})
		return
	}

	aiRole := models.OpposingRole(req.Role)
	err = ca.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"userRole":  req.Role,
		"aiRole":    aiRole,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.CaseRolesResponse{
		UserRole:   req.Role,
		AIRole:     aiRole,
		RoleLocked: false,
	})
}

// GenerateCaseHandler creates a new case through the generation service
func (ca Case) GenerateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var req generateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if len(req.SectionsInvolved) == 0 && len(req.SectionNumbers) == 0 {
		config.ErrorStatus("at least one section is required", http.StatusBadRequest, w, fmt.Errorf("empty sections"))
		return
	}

	userID := api.RequestUserID(r)
	allowed, err := ca.RL.Allow(r, userID, models.RateLimiterCaseGeneration)
	if err != nil {
		config.ErrorStatus("failed to check rate limit", http.StatusInternalServerError, w, err)
		return
	}
	if !allowed {
		config.ErrorStatus("too many requests", http.StatusTooManyRequests, w, fmt.Errorf("case generation quota exhausted"))
		return
	}

	c, err := ca.LLM.GenerateCase(r.Context(), req.SectionsInvolved, req.SectionNumbers)
	if err != nil {
		config.ErrorStatus("failed to generate case", http.StatusBadGateway, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	c.ID = primitive.NewObjectID()
	c.CNR = newCNR()
	c.UserID = userID
	c.Status = models.CaseStatusNotStarted
	c.PlaintiffArguments = []models.Argument{}
	c.DefendantArguments = []models.Argument{}
	c.WitnessTestimonies = []models.WitnessTestimony{}
	c.CreatedAt = now
	c.UpdatedAt = now

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := ca.DB.InsertOne(ctx, c); err != nil {
		config.ErrorStatus("failed to insert case", http.StatusInternalServerError, w, err)
		return
	}

	if err := ca.RL.Record(r, userID, models.RateLimiterCaseGeneration); err != nil {
		zap.S().Warnw("failed to record rate limit entry", "cnr", c.CNR, "error", err)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(c)
}

// PlaintiffOpeningHandler generates the AI plaintiff's opening statement
// for a case whose user argues as defendant and has not taken a turn yet.
// The opening is appended to the plaintiff branch so the defendant sees
// it before writing their own.
func (ca Case) PlaintiffOpeningHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := ca.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if len(c.PlaintiffArguments) > 0 || len(c.DefendantArguments) > 0 {
		config.ErrorStatus("case already has arguments", http.StatusConflict, w, fmt.Errorf("case %s is past its first exchange", cnr))
		return
	}

	opening, err := ca.LLM.OpeningStatement(r.Context(), models.RolePlaintiff, c.Details, models.RoleDefendant)
	if err != nil {
		config.ErrorStatus("failed to generate opening statement", http.StatusBadGateway, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	entry := models.Argument{
		Type:      models.ArgumentTypeOpening,
		Content:   opening,
		Branch:    models.RolePlaintiff,
		Timestamp: now,
	}
	err = ca.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"plaintiffArguments": append(c.PlaintiffArguments, entry),
		"status":             models.CaseStatusActive,
		"updatedAt":          now,
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.ArgumentResponse{
		AIOpeningStatement: opening,
		AIOpeningRole:      models.RolePlaintiff,
	})
}

// DeleteCaseHandler removes a case owned by the authenticated user
func (ca Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := ca.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	userID := api.RequestUserID(r)
	if userID != "" && c.UserID != "" && c.UserID != userID {
		config.ErrorStatus("you don't have permission to access this case", http.StatusForbidden, w, fmt.Errorf("case %s belongs to another user", cnr))
		return
	}

	if err := ca.DB.DeleteOne(ctx, bson.M{"cnr": cnr}); err != nil {
		config.ErrorStatus("failed to delete case", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"deleted": cnr})
}

// newCNR builds a case reference in the court registry format:
// state code, district code, 6 digit serial, filing year.
func newCNR() string {
	return fmt.Sprintf("DLCT01-%06d-%d", rand.Intn(1000000), time.Now().Year())
}
