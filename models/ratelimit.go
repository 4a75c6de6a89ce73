package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Rate limiter types
const (
	RateLimiterArgument       = "argument"
	RateLimiterCaseGeneration = "case_generation"
)

// RateLimitEntry is a single consumed attempt inside the sliding window.
// The set of entries newer than (now - window) is the server-side quota.
type RateLimitEntry struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	UserID      string             `json:"userID" bson:"userID"`
	LimiterType string             `json:"limiterType" bson:"limiterType"`
	Timestamp   primitive.DateTime `json:"timestamp" bson:"timestamp"`
}

// RateLimitWindow is the client-facing view of the quota.
// SecondsUntilNext is nil while attempts remain.
type RateLimitWindow struct {
	RemainingAttempts int  `json:"remaining_attempts"`
	MaxAttempts       int  `json:"max_attempts"`
	SecondsUntilNext  *int `json:"seconds_until_next"`
}
