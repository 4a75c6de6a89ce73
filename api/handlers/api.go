package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ParthRana1023/AI-Courtroom-sub001/api"
	"github.com/ParthRana1023/AI-Courtroom-sub001/config"
	"github.com/ParthRana1023/AI-Courtroom-sub001/databases"
	"github.com/ParthRana1023/AI-Courtroom-sub001/llm"
	"github.com/ParthRana1023/AI-Courtroom-sub001/models"
)

// App stores the router and db connection so it can be reused
type App struct {
	Router *mux.Router
	DB     databases.DatabaseHelper
	Config *config.Config
	Hub    *Hub
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	if a.Hub == nil {
		a.Hub = NewHub()
	}

	caseDB := databases.NewCaseDatabase(a.DB)
	userDB := databases.NewUserDatabase(a.DB)
	rateLimitDB := databases.NewRateLimitDatabase(a.DB)

	generator := llm.New(a.Config.LLMURL)
	rl := RateLimit{
		DB:          rateLimitDB,
		MaxAttempts: a.Config.ArgumentMaxAttempts,
		Window:      a.Config.ArgumentRateWindow,
	}

	c := Case{DB: caseDB, LLM: generator, RL: rl}
	arg := Argument{DB: caseDB, LLM: generator, RL: rl, Hub: a.Hub, ClosingThreshold: a.Config.ClosingThreshold}
	wit := Witness{DB: caseDB, LLM: generator, Hub: a.Hub, QuestionDelay: 2 * time.Second}

	m := api.MiddlewareDB{DB: userDB, JWTSecret: a.Config.JWTSecret}
	m.SetupGoGuardian()

	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/ws/notifications", a.Hub.HandleWebSocket)

	// login and token management
	r.HandleFunc("/api/v1/auth/token", m.CreateToken).Methods(http.MethodPost)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.Middleware)

	apiCreate.HandleFunc("/auth/logout", api.RevokeToken).Methods(http.MethodPost)

	// cases
	apiCreate.HandleFunc("/cases", c.CasesHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/generate", c.GenerateCaseHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}", c.CaseHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/{cnr}", c.DeleteCaseHandler).Methods(http.MethodDelete)
	apiCreate.HandleFunc("/cases/{cnr}/history", c.CaseHistoryHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/{cnr}/roles", c.UpdateCaseRolesHandler).Methods(http.MethodPut)
	apiCreate.HandleFunc("/cases/{cnr}/opening/plaintiff", c.PlaintiffOpeningHandler).Methods(http.MethodPost)

	// arguments
	apiCreate.HandleFunc("/cases/{cnr}/arguments", arg.SubmitArgumentHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/arguments/closing", arg.SubmitClosingStatementHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/rate-limit/arguments", rl.ArgumentRateLimitHandler).Methods(http.MethodGet)

	// witness examination
	apiCreate.HandleFunc("/cases/{cnr}/witnesses", wit.AvailableWitnessesHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/current", wit.CurrentWitnessHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/testimonies", wit.WitnessTestimoniesHandler).Methods(http.MethodGet)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/examine", wit.ExamineWitnessHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/cross-examine", wit.AICrossExamineHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/ai-examine", wit.AIExamineOwnWitnessHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/conclude", wit.ConcludeWitnessHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/dismiss", wit.DismissWitnessHandler).Methods(http.MethodPost)
	apiCreate.HandleFunc("/cases/{cnr}/witnesses/{witnessId}/call", wit.CallWitnessHandler).Methods(http.MethodPost)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {
	client, err := databases.NewClient(a.Config)
	if err != nil {
		return err
	}
	a.DB = databases.NewDatabase(a.Config, client)
	err = client.Connect()
	if err != nil {
		return err
	}
	a.Router = a.New()
	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.HealthCheckResponse{Alive: true})
}
