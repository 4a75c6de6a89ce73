package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

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

// Argument exported for testing purposes
type Argument struct {
	DB  databases.CaseDatabase
	LLM llm.Generator
	RL  RateLimit
	Hub *Hub

	// ClosingThreshold is the number of user-authored entries across both
	// branches after which a party may end the argument phase
	ClosingThreshold int
}

type submitArgumentRequest struct {
	Role     string `json:"role"`
	Argument string `json:"argument"`
}

type submitClosingRequest struct {
	Role      string `json:"role"`
	Statement string `json:"statement"`
}

// SubmitArgumentHandler records a user argument and the AI entries the
// exchange produces (opening and/or counter). Nothing is persisted until
// every needed AI text has been generated, so a generation failure leaves
// the transcript unmodified.
func (a Argument) SubmitArgumentHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	var req submitArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Role != models.RolePlaintiff && req.Role != models.RoleDefendant {
		config.ErrorStatus("invalid role specified", http.StatusBadRequest, w, fmt.Errorf("role must be 'plaintiff' or 'defendant', got %q", req.Role))
		return
	}
	if strings.TrimSpace(req.Argument) == "" {
		config.ErrorStatus("argument must not be empty", http.StatusBadRequest, w, fmt.Errorf("empty argument"))
		return
	}

	userID := api.RequestUserID(r)
	allowed, err := a.RL.Allow(r, userID, models.RateLimiterArgument)
	if err != nil {
		config.ErrorStatus("failed to check rate limit", http.StatusInternalServerError, w, err)
		return
	}
	if !allowed {
		config.ErrorStatus("too many requests", http.StatusTooManyRequests, w, fmt.Errorf("argument submission quota exhausted"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := a.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if userID != "" && c.UserID != "" && c.UserID != userID {
		config.ErrorStatus("you don't have permission to access this case", http.StatusForbidden, w, fmt.Errorf("case %s belongs to another user", cnr))
		return
	}
	if c.Status == models.CaseStatusResolved {
		config.ErrorStatus("case is already resolved", http.StatusConflict, w, fmt.Errorf("case %s is resolved", cnr))
		return
	}
	// A previously-established role always wins once it exists
	if c.RoleLocked && c.UserRole != req.Role {
		config.ErrorStatus("cannot switch roles", http.StatusForbidden, w, fmt.Errorf("assigned role in this case is %s", c.UserRole))
		return
	}

	aiRole := models.OpposingRole(req.Role)
	now := time.Now()
	var resp models.ArgumentResponse

	firstExchange := len(c.PlaintiffArguments) == 0 && len(c.DefendantArguments) == 0
	switch {
	case firstExchange && req.Role == models.RoleDefendant:
		// The plaintiff always opens: generate the AI plaintiff opening,
		// record the user's statement as the defendant opening, then let
		// the AI plaintiff counter it.
		opening, err := a.LLM.OpeningStatement(r.Context(), models.RolePlaintiff, c.Details, req.Role)
		if err != nil {
			config.ErrorStatus("failed to generate opening statement", http.StatusBadGateway, w, err)
			return
		}
		appendArgument(c, models.RolePlaintiff, models.Argument{
			Type: models.ArgumentTypeOpening, Content: opening,
			Branch: models.RolePlaintiff, Timestamp: primitive.NewDateTimeFromTime(now),
		})
		appendArgument(c, models.RoleDefendant, models.Argument{
			Type: models.ArgumentTypeOpening, Content: req.Argument, UserID: userID,
			Branch: models.RoleDefendant, Timestamp: primitive.NewDateTimeFromTime(now.Add(time.Second)),
		})

		counter, err := a.LLM.CounterArgument(r.Context(), historyText(c), req.Argument, models.RolePlaintiff, req.Role, c.Details)
		if err != nil {
			config.ErrorStatus("failed to generate counter argument", http.StatusBadGateway, w, err)
			return
		}
		appendArgument(c, models.RolePlaintiff, models.Argument{
			Type: models.ArgumentTypeCounter, Content: counter,
			Branch: models.RolePlaintiff, Timestamp: primitive.NewDateTimeFromTime(now.Add(2 * time.Second)),
		})
		resp = models.ArgumentResponse{
			AIOpeningStatement: opening,
			AIOpeningRole:      models.RolePlaintiff,
			AICounterArgument:  counter,
			AICounterRole:      models.RolePlaintiff,
		}

	case firstExchange && req.Role == models.RolePlaintiff:
		appendArgument(c, models.RolePlaintiff, models.Argument{
			Type: models.ArgumentTypeOpening, Content: req.Argument, UserID: userID,
			Branch: models.RolePlaintiff, Timestamp: primitive.NewDateTimeFromTime(now),
		})
		opening, err := a.LLM.OpeningStatement(r.Context(), models.RoleDefendant, c.Details, req.Role)
		if err != nil {
			config.ErrorStatus("failed to generate opening statement", http.StatusBadGateway, w, err)
			return
		}
		appendArgument(c, models.RoleDefendant, models.Argument{
			Type: models.ArgumentTypeOpening, Content: opening,
			Branch: models.RoleDefendant, Timestamp: primitive.NewDateTimeFromTime(now.Add(time.Second)),
		})
		resp = models.ArgumentResponse{
			AIOpeningStatement: opening,
			AIOpeningRole:      models.RoleDefendant,
		}

	default:
		appendArgument(c, req.Role, models.Argument{
			Type: models.ArgumentTypeUser, Content: req.Argument, UserID: userID,
			Branch: req.Role, Timestamp: primitive.NewDateTimeFromTime(now),
		})
		counter, err := a.LLM.CounterArgument(r.Context(), historyText(c), req.Argument, aiRole, req.Role, c.Details)
		if err != nil {
			config.ErrorStatus("failed to generate counter argument", http.StatusBadGateway, w, err)
			return
		}
		appendArgument(c, aiRole, models.Argument{
			Type: models.ArgumentTypeCounter, Content: counter,
			Branch: aiRole, Timestamp: primitive.NewDateTimeFromTime(now.Add(2 * time.Second)),
		})
		resp = models.ArgumentResponse{
			AICounterArgument: counter,
			AICounterRole:     aiRole,
		}
	}

	status := c.Status
	if status == models.CaseStatusNotStarted {
		status = models.CaseStatusActive
	}

	err = a.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"plaintiffArguments": c.PlaintiffArguments,
		"defendantArguments": c.DefendantArguments,
		"userRole":           req.Role,
		"aiRole":             aiRole,
		"roleLocked":         true,
		"status":             status,
		"updatedAt":          primitive.NewDateTimeFromTime(now),
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	if err := a.RL.Record(r, userID, models.RateLimiterArgument); err != nil {
		zap.S().Warnw("failed to record rate limit entry", "cnr", cnr, "error", err)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// SubmitClosingStatementHandler records the user's closing statement, the
// AI closing, and the verdict, resolving the case
func (a Argument) SubmitClosingStatementHandler(w http.ResponseWriter, r *http.Request) {
	cnr := mux.Vars(r)["cnr"]

	var req submitClosingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Role != models.RolePlaintiff && req.Role != models.RoleDefendant {
		config.ErrorStatus("invalid role specified", http.StatusBadRequest, w, fmt.Errorf("role must be 'plaintiff' or 'defendant', got %q", req.Role))
		return
	}
	if strings.TrimSpace(req.Statement) == "" {
		config.ErrorStatus("statement must not be empty", http.StatusBadRequest, w, fmt.Errorf("empty statement"))
		return
	}

	userID := api.RequestUserID(r)
	allowed, err := a.RL.Allow(r, userID, models.RateLimiterArgument)
	if err != nil {
		config.ErrorStatus("failed to check rate limit", http.StatusInternalServerError, w, err)
		return
	}
	if !allowed {
		config.ErrorStatus("too many requests", http.StatusTooManyRequests, w, fmt.Errorf("argument submission quota exhausted"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	c, err := a.DB.FindOne(ctx, bson.M{"cnr": cnr})
	if err != nil {
		config.ErrorStatus("case not found", http.StatusNotFound, w, err)
		return
	}
	if userID != "" && c.UserID != "" && c.UserID != userID {
		config.ErrorStatus("you don't have permission to access this case", http.StatusForbidden, w, fmt.Errorf("case %s belongs to another user", cnr))
		return
	}
	if c.Status == models.CaseStatusResolved {
		config.ErrorStatus("case is already resolved", http.StatusConflict, w, fmt.Errorf("case %s is resolved", cnr))
		return
	}
	if c.RoleLocked && c.UserRole != req.Role {
		config.ErrorStatus("cannot switch roles", http.StatusForbidden, w, fmt.Errorf("assigned role in this case is %s", c.UserRole))
		return
	}
	if userEntryCount(c) < a.ClosingThreshold {
		config.ErrorStatus("closing statement not yet available", http.StatusConflict, w,
			fmt.Errorf("requires %d user arguments, case has %d", a.ClosingThreshold, userEntryCount(c)))
		return
	}

	aiRole := models.OpposingRole(req.Role)
	now := time.Now()

	appendArgument(c, req.Role, models.Argument{
		Type: models.ArgumentTypeClosing, Content: req.Statement, UserID: userID,
		Branch: req.Role, Timestamp: primitive.NewDateTimeFromTime(now),
	})

	aiClosing, err := a.LLM.ClosingStatement(r.Context(), historyText(c), aiRole, req.Role)
	if err != nil {
		config.ErrorStatus("failed to generate closing statement", http.StatusBadGateway, w, err)
		return
	}
	appendArgument(c, aiRole, models.Argument{
		Type: models.ArgumentTypeClosing, Content: aiClosing,
		Branch: aiRole, Timestamp: primitive.NewDateTimeFromTime(now.Add(time.Second)),
	})

	verdict, err := a.LLM.Verdict(r.Context(), sideArguments(c, models.RolePlaintiff), sideArguments(c, models.RoleDefendant), c.Details, c.Title)
	if err != nil {
		config.ErrorStatus("failed to generate verdict", http.StatusBadGateway, w, err)
		return
	}

	err = a.DB.UpdateOne(ctx, bson.M{"cnr": cnr}, bson.M{"$set": bson.M{
		"plaintiffArguments": c.PlaintiffArguments,
		"defendantArguments": c.DefendantArguments,
		"verdict":            verdict,
		"verdictNotified":    false,
		"status":             models.CaseStatusResolved,
		"updatedAt":          primitive.NewDateTimeFromTime(now),
	}})
	if err != nil {
		config.ErrorStatus("failed to save case", http.StatusInternalServerError, w, err)
		return
	}

	if err := a.RL.Record(r, userID, models.RateLimiterArgument); err != nil {
		zap.S().Warnw("failed to record rate limit entry", "cnr", cnr, "error", err)
	}

	a.Hub.Push(c.UserID, EventVerdictDelivered, map[string]string{"cnr": cnr})

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.ClosingResponse{
		Verdict:            verdict,
		AIClosingStatement: aiClosing,
		AIClosingRole:      aiRole,
	})
}

func appendArgument(c *models.Case, branch string, arg models.Argument) {
	if branch == models.RolePlaintiff {
		c.PlaintiffArguments = append(c.PlaintiffArguments, arg)
	} else {
		c.DefendantArguments = append(c.DefendantArguments, arg)
	}
}

// historyText flattens both branches into the plain-text history the
// generation service expects
func historyText(c *models.Case) string {
	var b strings.Builder
	for _, arg := range c.PlaintiffArguments {
		b.WriteString("Plaintiff: " + arg.Content + "\n")
	}
	for _, arg := range c.DefendantArguments {
		b.WriteString("Defendant: " + arg.Content + "\n")
	}
	return b.String()
}

// sideArguments collects all content argued on behalf of one side,
// regardless of which branch array stores it
func sideArguments(c *models.Case, branch string) []string {
	var out []string
	for _, arg := range c.PlaintiffArguments {
		if arg.Branch == branch {
			out = append(out, arg.Content)
		}
	}
	for _, arg := range c.DefendantArguments {
		if arg.Branch == branch {
			out = append(out, arg.Content)
		}
	}
	return out
}

func userEntryCount(c *models.Case) int {
	n := 0
	for _, arg := range c.PlaintiffArguments {
		if arg.Type == models.ArgumentTypeUser {
			n++
		}
	}
	for _, arg := range c.DefendantArguments {
		if arg.Type == models.ArgumentTypeUser {
			n++
		}
	}
	return n
}
