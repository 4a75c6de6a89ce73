package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api/handlers"
	"github.com/ParthRana1023/AI-Courtroom-sub001/api/scheduler"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
)

func main() {
	conf := config.New()

	a := handlers.App{Config: conf}
	if err := a.Initialize(); err != nil {
		zap.S().Fatalw("failed to initialize app", "error", err)
	}

	sched, err := scheduler.New(
		databases.NewCaseDatabase(a.DB),
		databases.NewUserDatabase(a.DB),
		databases.NewRateLimitDatabase(a.DB),
		conf,
	)
	if err != nil {
		zap.S().Fatalw("failed to build scheduler", "error", err)
	}
	sched.Start()
	defer sched.Stop()

	port := conf.Port
	if port == "" {
		port = "8080"
	}
	zap.S().Infow("listening", "port", port)
	zap.S().Fatal(http.ListenAndServe(":"+port, a.Router))
}
