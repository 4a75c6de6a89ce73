// Package scheduler runs the periodic maintenance jobs: purging expired
// rate limit entries, adjourning abandoned cases and mailing verdicts.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// staleAfter is how long an active case can go without activity before it
// is adjourned
const staleAfter = 7 * 24 * time.Hour

// Scheduler owns the cron instance and the collections the jobs touch
type Scheduler struct {
	Cases     databases.CaseDatabase
	Users     databases.UserDatabase
	RateLimit databases.RateLimitDatabase
	Config    *config.Config

	cron *cron.Cron
}

// New builds a scheduler with all jobs registered
func New(cases databases.CaseDatabase, users databases.UserDatabase, rateLimit databases.RateLimitDatabase, conf *config.Config) (*Scheduler, error) {
	s := &Scheduler{
		Cases:     cases,
		Users:     users,
		RateLimit: rateLimit,
		Config:    conf,
		cron:      cron.New(cron.WithLocation(time.UTC)),
	}

	if _, err := s.cron.AddFunc("@every 5m", s.PurgeExpiredRateLimitEntries); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("@hourly", s.AdjournStaleCases); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("@every 1m", s.SendVerdictEmails); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	zap.S().Info("scheduler started")
}

// Stop halts the cron loop, waiting for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PurgeExpiredRateLimitEntries deletes entries that slid out of the
// window. The limiter filters them at read time; deleting keeps the
// collection small.
func (s *Scheduler) PurgeExpiredRateLimitEntries() {
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-s.Config.ArgumentRateWindow))
	deleted, err := s.RateLimit.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		zap.S().Errorw("failed to purge rate limit entries", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Debugw("purged expired rate limit entries", "count", deleted)
	}
}

// AdjournStaleCases moves long-inactive active cases to adjourned
func (s *Scheduler) AdjournStaleCases() {
	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-staleAfter))
	stale, err := s.Cases.Find(ctx, bson.M{
		"status":    models.CaseStatusActive,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		zap.S().Errorw("failed to find stale cases", "error", err)
		return
	}

	for _, c := range stale {
		err := s.Cases.UpdateOne(ctx, bson.M{"cnr": c.CNR}, bson.M{"$set": bson.M{
			"status":    models.CaseStatusAdjourned,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		}})
		if err != nil {
			zap.S().Errorw("failed to adjourn case", "cnr", c.CNR, "error", err)
			continue
		}
		zap.S().Infow("case adjourned for inactivity", "cnr", c.CNR)
	}
}

// SendVerdictEmails mails the verdict for resolved cases that have not
// been notified yet, then marks them notified
func (s *Scheduler) SendVerdictEmails() {
	if s.Config.SendgridAPIKey == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), api.QueryTimeout)
	defer cancel()

	resolved, err := s.Cases.Find(ctx, bson.M{
		"status":          models.CaseStatusResolved,
		"verdictNotified": false,
		"verdict":         bson.M{"$ne": ""},
	})
	if err != nil {
		zap.S().Errorw("failed to find resolved cases", "error", err)
		return
	}

	for _, c := range resolved {
		user, err := s.Users.FindOne(ctx, bson.M{"_id": c.UserID})
		if err != nil {
			zap.S().Errorw("failed to find case owner", "cnr", c.CNR, "error", err)
			continue
		}
		if err := s.mailVerdict(user.Details.Email, &c); err != nil {
			zap.S().Errorw("failed to send verdict email", "cnr", c.CNR, "error", err)
			continue
		}
		err = s.Cases.UpdateOne(ctx, bson.M{"cnr": c.CNR}, bson.M{"$set": bson.M{
			"verdictNotified": true,
		}})
		if err != nil {
			zap.S().Errorw("failed to mark verdict as notified", "cnr", c.CNR, "error", err)
		}
	}
}

func (s *Scheduler) mailVerdict(email string, c *models.Case) error {
	from := mail.NewEmail("AI Courtroom", s.Config.FromEmail)
	to := mail.NewEmail("", email)
	subject := fmt.Sprintf("Verdict delivered in %s", c.Title)
	plain := fmt.Sprintf("The court has reached a verdict in case %s.\n\n%s\n", c.CNR, c.Verdict)
	html := fmt.Sprintf("<p>The court has reached a verdict in case %s.</p><p>%s</p>", c.CNR, c.Verdict)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(s.Config.SendgridAPIKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
