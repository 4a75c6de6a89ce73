package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ArgumentResponse is returned by the submit-argument endpoint. The AI
// fields are only present when the external service produced them for
// this exchange.
type ArgumentResponse struct {
	AIOpeningStatement string `json:"ai_opening_statement,omitempty"`
	AIOpeningRole      string `json:"ai_opening_role,omitempty"`
	AICounterArgument  string `json:"ai_counter_argument,omitempty"`
	AICounterRole      string `json:"ai_counter_role,omitempty"`
}

// ClosingResponse is returned by the closing-statement endpoint
type ClosingResponse struct {
	Verdict            string `json:"verdict,omitempty"`
	AIClosingStatement string `json:"ai_closing_statement,omitempty"`
	AIClosingRole      string `json:"ai_closing_role,omitempty"`
}

// CaseRolesResponse echoes the roles in effect after an assignment
// request. When the case is role-locked the established roles are
// returned unchanged regardless of what was requested.
type CaseRolesResponse struct {
	UserRole   string `json:"user_role"`
	AIRole     string `json:"ai_role"`
	RoleLocked bool   `json:"role_locked"`
}

// WitnessInfo describes one callable witness
type WitnessInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	HasTestified bool   `json:"has_testified"`
}

// AvailableWitnessesResponse lists the witness pool for a case
type AvailableWitnessesResponse struct {
	Witnesses        []WitnessInfo `json:"witnesses"`
	CurrentWitnessID string        `json:"current_witness_id,omitempty"`
}

// CurrentWitnessResponse is the poll target for the examination state
// machine: it carries everything needed to detect AI-initiated calls and
// cross-examination completion.
type CurrentWitnessResponse struct {
	HasWitness         bool              `json:"has_witness"`
	WitnessID          string            `json:"witness_id,omitempty"`
	WitnessName        string            `json:"witness_name,omitempty"`
	WitnessRole        string            `json:"witness_role,omitempty"`
	CalledBy           string            `json:"called_by,omitempty"`
	IsAIExamining      bool              `json:"is_ai_examining"`
	CaseStatus         string            `json:"case_status"`
	ExaminationHistory []ExaminationItem `json:"examination_history"`
}

// CallWitnessResponse confirms a witness was called to the stand
type CallWitnessResponse struct {
	WitnessID   string `json:"witness_id"`
	WitnessName string `json:"witness_name"`
	WitnessRole string `json:"witness_role"`
	Message     string `json:"message"`
}

// ExaminationResponse is returned for a single user question
type ExaminationResponse struct {
	ExaminationID string             `json:"examination_id"`
	WitnessID     string             `json:"witness_id"`
	Question      string             `json:"question"`
	Answer        string             `json:"answer"`
	Timestamp     primitive.DateTime `json:"timestamp"`
}

// ConcludeWitnessResponse confirms the witness was dismissed
type ConcludeWitnessResponse struct {
	WitnessID           string `json:"witness_id"`
	WitnessName         string `json:"witness_name"`
	TotalQuestionsAsked int    `json:"total_questions_asked"`
	Message             string `json:"message"`
}

// HealthCheckResponse is returned by the health endpoint
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
