package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ilmhub/quizhub/internal/auth"
	"github.com/ilmhub/quizhub/internal/eventlog"
	"github.com/ilmhub/quizhub/internal/leaderboard"
	"github.com/ilmhub/quizhub/internal/materials"
	"github.com/ilmhub/quizhub/internal/quiz"
	"github.com/ilmhub/quizhub/internal/rbac"
)

// Deps bundles everything the API surface needs.
type Deps struct {
	DB          *sql.DB
	Auth        *auth.Service
	Quiz        *quiz.Service
	QuizStore   quiz.Store
	Leaderboard *leaderboard.Service
	Materials   *materials.Service
	Events      *eventlog.Repo
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", SignupHandler(d.Auth))
		api.Post("/auth/login", LoginHandler(d.Auth))

		api.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth.Tokens()))
			pr.Use(auth.AttachRoleFromDB(d.DB))

			pr.Get("/auth/me", MeHandler(d.Auth))
			pr.With(rbac.Require("profile:update")).
				Put("/auth/profile", UpdateProfileHandler(d.Auth))
			pr.With(rbac.Require("profile:update")).
				Post("/auth/change-password", ChangePasswordHandler(d.Auth))

			// Participant surface
			pr.With(rbac.Require("module:view")).
				Get("/modules", ListModulesHandler(d.Quiz, false))
			pr.With(rbac.Require("material:view")).
				Get("/modules/materials", ListLatestMaterialsHandler(d.Materials))
			pr.With(rbac.Require("material:download")).
				Get("/modules/materials/{materialID}/download", DownloadMaterialHandler(d.Materials))
			pr.With(rbac.Require("material:view")).
				Get("/modules/{moduleID}/materials", ListModuleMaterialsHandler(d.Materials))
			pr.With(rbac.Require("quiz:take")).
				Get("/quiz-days/all", ListPublishedQuizDaysHandler(d.Quiz))
			pr.With(rbac.Require("quiz:take")).
				Get("/quiz-days/module/{moduleID}", ListPublishedQuizDaysHandler(d.Quiz))
			pr.With(rbac.Require("quiz:take")).
				Get("/quiz", FetchQuizHandler(d.Quiz))
			pr.With(rbac.Require("quiz:submit")).
				Post("/quiz/submit", SubmitQuizHandler(d.Quiz))
			pr.With(rbac.Require("submission:view-own")).
				Get("/me/submissions", MySubmissionsHandler(d.Quiz))

			// Admin surface
			pr.Route("/admin", func(ar chi.Router) {
				ar.With(rbac.Require("module:manage")).Post("/modules", CreateModuleHandler(d.Quiz))
				ar.With(rbac.Require("module:manage")).Get("/modules", ListModulesHandler(d.Quiz, true))
				ar.With(rbac.Require("module:manage")).Get("/modules/{moduleID}", GetModuleHandler(d.Quiz))
				ar.With(rbac.Require("module:manage")).Put("/modules/{moduleID}", UpdateModuleHandler(d.Quiz))
				ar.With(rbac.Require("module:manage")).Delete("/modules/{moduleID}", DeleteModuleHandler(d.Quiz))
				ar.With(rbac.Require("leaderboard:view")).
					Get("/modules/{moduleID}/evaluation", ModuleEvaluationHandler(d.Leaderboard, d.QuizStore))
				ar.With(rbac.Require("material:manage")).
					Post("/modules/{moduleID}/materials", AddMaterialHandler(d.Materials))
				ar.With(rbac.Require("material:manage")).
					Post("/upload-reference", UploadReferenceHandler(d.Materials))
				ar.With(rbac.Require("material:manage")).
					Delete("/materials/{materialID}", DeleteMaterialHandler(d.Materials))

				ar.With(rbac.Require("quizday:manage")).Post("/quiz-days", UpsertQuizDayHandler(d.Quiz))
				ar.With(rbac.Require("quizday:manage")).Get("/quiz-days", ListQuizDaysHandler(d.Quiz))
				ar.With(rbac.Require("quizday:manage")).
					Put("/quiz-days/{quizDayID}/publish", SetQuizDayFlagHandler(d.Quiz, quiz.FlagPublished, "isPublished"))
				ar.With(rbac.Require("quizday:manage")).
					Put("/quiz-days/{quizDayID}/responses", SetQuizDayFlagHandler(d.Quiz, quiz.FlagResponsesOpen, "responsesOpen"))
				ar.With(rbac.Require("quizday:manage")).
					Put("/quiz-days/{quizDayID}/publish-results", SetQuizDayFlagHandler(d.Quiz, quiz.FlagResultsPublished, "resultsPublished"))
				ar.With(rbac.Require("question:manage")).Post("/questions", CreateQuestionHandler(d.Quiz))
				ar.With(rbac.Require("question:manage")).
					Get("/quiz-days/{quizDayID}/questions", ListQuestionsHandler(d.QuizStore))

				ar.With(rbac.Require("leaderboard:view")).Get("/leaderboard/all", GlobalLeaderboardHandler(d.Leaderboard))
				ar.With(rbac.Require("leaderboard:view")).Get("/leaderboard/{moduleID}", ModuleLeaderboardHandler(d.Leaderboard))
				ar.With(rbac.Require("participant:view")).Get("/participants", ListParticipantsHandler(d.Auth))
				ar.With(rbac.Require("participant:view")).
					Get("/participants/{quizDayID}", ParticipantsByDayHandler(d.Leaderboard))
				ar.With(rbac.Require("participant:view")).
					Get("/participant-profile/{userID}", ParticipantProfileHandler(d.Auth, d.Quiz))
				ar.With(rbac.Require("audit:view")).Get("/events", RecentEventsHandler(d.Events))
			})
		})
	})

	return r
}
