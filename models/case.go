package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Case status values
const (
	CaseStatusNotStarted = "not_started"
	CaseStatusActive     = "active"
	CaseStatusAdjourned  = "adjourned"
	CaseStatusResolved   = "resolved"
)

// Party roles in a case
const (
	RolePlaintiff = "plaintiff"
	RoleDefendant = "defendant"
)

// OpposingRole returns the other side of the courtroom
func OpposingRole(role string) string {
	if role == RolePlaintiff {
		return RoleDefendant
	}
	return RolePlaintiff
}

// Argument entry types
const (
	ArgumentTypeOpening = "opening"
	ArgumentTypeUser    = "user"
	ArgumentTypeCounter = "counter"
	ArgumentTypeClosing = "closing"
)

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	CNR     string             `json:"cnr" bson:"cnr"`
	Title   string             `json:"title" bson:"title"`
	Details string             `json:"details" bson:"details"`
	Status  string             `json:"status" bson:"status"`
	UserID  string             `json:"userID" bson:"userID"`

	// Role assignment. Once RoleLocked is set the roles are immutable;
	// the lock is persisted explicitly rather than inferred by scanning
	// the argument branches for user-authored entries.
	UserRole   string `json:"userRole" bson:"userRole"`
	AIRole     string `json:"aiRole" bson:"aiRole"`
	RoleLocked bool   `json:"roleLocked" bson:"roleLocked"`

	// The two append-only argument branches
	PlaintiffArguments []Argument `json:"plaintiff_arguments" bson:"plaintiffArguments"`
	DefendantArguments []Argument `json:"defendant_arguments" bson:"defendantArguments"`

	Verdict         string `json:"verdict,omitempty" bson:"verdict,omitempty"`
	VerdictNotified bool   `json:"-" bson:"verdictNotified"`

	// Witness examination state
	PartiesInvolved    []Party            `json:"parties_involved" bson:"partiesInvolved"`
	WitnessTestimonies []WitnessTestimony `json:"witness_testimonies" bson:"witnessTestimonies"`
	CurrentWitnessID   string             `json:"current_witness_id,omitempty" bson:"currentWitnessID"`
	IsAIExamining      bool               `json:"is_ai_examining" bson:"isAIExamining"`

	CreatedAt primitive.DateTime `json:"created_at" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updated_at" bson:"updatedAt"`
}

// Argument is a single entry in one of the two case branches. Branch is
// recorded at creation time so display layers never have to re-derive it
// by matching timestamps against the source arrays.
type Argument struct {
	Type      string             `json:"type" bson:"type"`
	Content   string             `json:"content" bson:"content"`
	UserID    string             `json:"user_id,omitempty" bson:"userID,omitempty"` // empty for AI-authored entries
	Branch    string             `json:"branch" bson:"branch"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// Witness roles
const (
	PartyRoleApplicant    = "applicant"
	PartyRoleNonApplicant = "non_applicant"
)

// Party is a person involved in the case who can be called as a witness
type Party struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Role string `json:"role" bson:"role"`
	Bio  string `json:"bio,omitempty" bson:"bio,omitempty"`
}

// WitnessTestimony is one examination session for a single witness. A
// testimony is open while EndedAt is zero; at most one testimony per case
// may be open at a time.
type WitnessTestimony struct {
	ID          string             `json:"id" bson:"id"`
	WitnessID   string             `json:"witness_id" bson:"witnessID"`
	WitnessName string             `json:"witness_name" bson:"witnessName"`
	CalledBy    string             `json:"called_by" bson:"calledBy"`
	Examination []ExaminationItem  `json:"examination" bson:"examination"`
	StartedAt   primitive.DateTime `json:"started_at" bson:"startedAt"`
	EndedAt     primitive.DateTime `json:"ended_at,omitempty" bson:"endedAt,omitempty"`
}

// ExaminationItem is a single question/answer exchange
type ExaminationItem struct {
	ID        string             `json:"id" bson:"id"`
	Examiner  string             `json:"examiner" bson:"examiner"`
	Question  string             `json:"question" bson:"question"`
	Answer    string             `json:"answer" bson:"answer"`
	Timestamp primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// CaseHistory is the read-side view of both branches plus the verdict
type CaseHistory struct {
	PlaintiffArguments []Argument `json:"plaintiff_arguments"`
	DefendantArguments []Argument `json:"defendant_arguments"`
	Verdict            string     `json:"verdict,omitempty"`
}
