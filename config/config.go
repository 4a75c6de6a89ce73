package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// Config holds the project config values
type Config struct {
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string
	LLMURL       string
	JWTSecret    string

	// Argument submission quota: MaxAttempts per RateWindow, enforced
	// server-side and mirrored by clients
	ArgumentMaxAttempts int
	ArgumentRateWindow  time.Duration

	// ClosingThreshold is how many user arguments a case needs before a
	// closing statement is accepted
	ClosingThreshold int

	// SendgridAPIKey and FromEmail drive verdict notification mail; mail
	// is skipped when the key is empty
	SendgridAPIKey string
	FromEmail      string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                 os.Getenv("DB_URI"),
		DatabaseName:        os.Getenv("DB_NAME"),
		BaseURL:             os.Getenv("BASE_URL"),
		Port:                os.Getenv("PORT"),
		LLMURL:              os.Getenv("LLM_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		ArgumentMaxAttempts: envInt("ARGUMENT_MAX_ATTEMPTS", 5),
		ArgumentRateWindow:  time.Duration(envInt("ARGUMENT_RATE_WINDOW_SECONDS", 3600)) * time.Second,
		ClosingThreshold:    envInt("CLOSING_THRESHOLD", 3),
		SendgridAPIKey:      os.Getenv("SENDGRID_API_KEY"),
		FromEmail:           os.Getenv("FROM_EMAIL"),
	}

}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.S().Warnw("invalid integer in environment, using fallback",
			"key", key,
			"value", v,
		)
		return fallback
	}
	return n
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}
