package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// RateLimit enforces the sliding-window submission quota and serves the
// mirror endpoint clients poll. The window is the set of entries newer
// than (now - Window); the server stays the sole source of truth.
type RateLimit struct {
	DB          databases.RateLimitDatabase
	MaxAttempts int
	Window      time.Duration
}

func (rl RateLimit) windowFilter(userID, limiterType string) bson.M {
	start := primitive.NewDateTimeFromTime(time.Now().Add(-rl.Window))
	return bson.M{
		"userID":      userID,
		"limiterType": limiterType,
		"timestamp":   bson.M{"$gt": start},
	}
}

// Allow reports whether the user has attempts left in the current window
func (rl RateLimit) Allow(r *http.Request, userID, limiterType string) (bool, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := rl.DB.CountDocuments(ctx, rl.windowFilter(userID, limiterType))
	if err != nil {
		return false, err
	}
	return count < int64(rl.MaxAttempts), nil
}

// Record consumes one attempt
func (rl RateLimit) Record(r *http.Request, userID, limiterType string) error {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := rl.DB.InsertOne(ctx, models.RateLimitEntry{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		LimiterType: limiterType,
		Timestamp:   primitive.NewDateTimeFromTime(time.Now()),
	})
	return err
}

// CurrentWindow builds the client-facing view of the quota.
// SecondsUntilNext is nil while attempts remain; otherwise it is the time
// until the oldest consumed attempt slides out of the window.
func (rl RateLimit) CurrentWindow(r *http.Request, userID, limiterType string) (*models.RateLimitWindow, error) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := rl.windowFilter(userID, limiterType)
	count, err := rl.DB.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	window := &models.RateLimitWindow{
		RemainingAttempts: rl.MaxAttempts - int(count),
		MaxAttempts:       rl.MaxAttempts,
	}
	if window.RemainingAttempts < 0 {
		window.RemainingAttempts = 0
	}
	if window.RemainingAttempts > 0 {
		return window, nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	oldest, err := rl.DB.FindOne(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	seconds := int(time.Until(oldest.Timestamp.Time().Add(rl.Window)).Seconds())
	if seconds < 0 {
		seconds = 0
	}
	window.SecondsUntilNext = &seconds
	return window, nil
}

// ArgumentRateLimitHandler returns the remaining argument submissions and
// the time until the next attempt frees up for the current user
func (rl RateLimit) ArgumentRateLimitHandler(w http.ResponseWriter, r *http.Request) {
	userID := api.RequestUserID(r)

	window, err := rl.CurrentWindow(r, userID, models.RateLimiterArgument)
	if err != nil {
		config.ErrorStatus("failed to get rate limit window", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(window)
}
