package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/compliance"
	"github.com/dosewell/dosewell/internal/email"
	"github.com/dosewell/dosewell/internal/handler"
	"github.com/dosewell/dosewell/internal/media"
	"github.com/dosewell/dosewell/internal/middleware"
	"github.com/dosewell/dosewell/internal/reward"
	"github.com/dosewell/dosewell/internal/store"
	ws "github.com/dosewell/dosewell/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	userH         *handler.UserHandler
	supplementH   *handler.SupplementHandler
	mediaH        *handler.MediaHandler
	complianceH   *handler.ComplianceHandler
	rewardH       *handler.RewardHandler
	subscriptionH *handler.SubscriptionHandler
	adminH        *handler.AdminHandler
	tokenStore    *store.TokenStore
	issuer        *auth.TokenIssuer
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, issuer *auth.TokenIssuer, storage media.Storage, maxUpload int64, mailer *email.Client, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	memberStore := store.NewFamilyMemberStore(db)
	supplementStore := store.NewSupplementStore(db)
	intakeStore := store.NewIntakeStore(db)
	reminderStore := store.NewReminderStore(db)
	rewardStore := store.NewRewardStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)
	tokenStore := store.NewTokenStore(db)
	adminStore := store.NewAdminStore(db)

	ledger := reward.NewLedger(rewardStore)
	calculator := compliance.NewCalculator(reminderStore, intakeStore, supplementStore)

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, tokenStore, issuer, mailer, logger.With("component", "auth")),
		userH:         handler.NewUserHandler(userStore, memberStore, mailer, logger.With("component", "user")),
		supplementH:   handler.NewSupplementHandler(supplementStore, intakeStore, reminderStore, memberStore, ledger, hub, logger.With("component", "supplement")),
		mediaH:        handler.NewMediaHandler(storage, supplementStore, intakeStore, maxUpload, logger.With("component", "media")),
		complianceH:   handler.NewComplianceHandler(calculator, userStore, memberStore, logger.With("component", "compliance")),
		rewardH:       handler.NewRewardHandler(ledger, logger.With("component", "reward")),
		subscriptionH: handler.NewSubscriptionHandler(subscriptionStore, supplementStore, memberStore, logger.With("component", "subscription")),
		adminH:        handler.NewAdminHandler(db, userStore, adminStore, hub, logger.With("component", "admin")),
		tokenStore:    tokenStore,
		issuer:        issuer,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// TokenStore returns the token store for cleanup tasks.
func (s *Server) TokenStore() *store.TokenStore {
	return s.tokenStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/refresh", s.rateLimitedHandler(s.authH.Refresh))
	outerMux.HandleFunc("POST /api/auth/forgot-password", s.rateLimitedHandler(s.authH.ForgotPassword))
	outerMux.HandleFunc("POST /api/auth/reset-password", s.rateLimitedHandler(s.authH.ResetPassword))
	outerMux.HandleFunc("GET /media/{key...}", s.mediaH.Serve)
	outerMux.HandleFunc("GET /health", s.adminH.Health)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.issuer, s.tokenStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("POST /api/auth/verify-email", s.authH.VerifyEmail)

	// Profile
	mux.HandleFunc("GET /api/users/me", s.userH.Me)
	mux.HandleFunc("PUT /api/users/me", s.userH.UpdateProfile)

	// Family members
	mux.HandleFunc("POST /api/family-members", s.userH.CreateFamilyMember)
	mux.HandleFunc("GET /api/family-members", s.userH.ListFamilyMembers)
	mux.HandleFunc("GET /api/family-members/{id}", s.userH.GetFamilyMember)
	mux.HandleFunc("POST /api/family-members/{id}/accept", s.userH.AcceptInvitation)
	mux.HandleFunc("GET /api/family-members/{id}/subscriptions", s.subscriptionH.ListByMember)

	// Supplements
	mux.HandleFunc("POST /api/supplements", s.supplementH.Create)
	mux.HandleFunc("GET /api/supplements", s.supplementH.List)
	mux.HandleFunc("GET /api/supplements/low-stock", s.supplementH.LowStock)
	mux.HandleFunc("GET /api/supplements/today", s.supplementH.Today)
	mux.HandleFunc("GET /api/supplements/{id}", s.supplementH.Get)
	mux.HandleFunc("PUT /api/supplements/{id}", s.supplementH.Update)
	mux.HandleFunc("DELETE /api/supplements/{id}", s.supplementH.Delete)
	mux.HandleFunc("POST /api/supplements/{id}/intakes", s.supplementH.LogIntake)
	mux.HandleFunc("GET /api/supplements/{id}/stats", s.supplementH.Stats)
	mux.HandleFunc("PUT /api/supplements/{id}/reminder", s.supplementH.SetReminder)
	mux.HandleFunc("GET /api/supplements/{id}/reminders", s.supplementH.ListReminders)
	mux.HandleFunc("POST /api/supplements/{id}/image", s.mediaH.UploadSupplementImage)

	// Intakes + reminders
	mux.HandleFunc("GET /api/intakes", s.supplementH.History)
	mux.HandleFunc("POST /api/intakes/{id}/photo", s.mediaH.UploadIntakePhoto)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.supplementH.DisableReminder)

	// Compliance
	mux.HandleFunc("GET /api/compliance/daily", s.complianceH.Daily)
	mux.HandleFunc("GET /api/compliance/weekly", s.complianceH.Weekly)
	mux.HandleFunc("GET /api/compliance/monthly", s.complianceH.Monthly)
	mux.HandleFunc("GET /api/compliance/missed-doses", s.complianceH.MissedDoses)
	mux.HandleFunc("GET /api/compliance/leaderboard", s.complianceH.Leaderboard)
	mux.HandleFunc("GET /api/compliance/export", s.complianceH.Export)

	// Rewards
	mux.HandleFunc("GET /api/rewards/balance", s.rewardH.Balance)
	mux.HandleFunc("GET /api/rewards/history", s.rewardH.History)
	mux.HandleFunc("POST /api/rewards/earn", s.rewardH.Earn)
	mux.HandleFunc("POST /api/rewards/spend", s.rewardH.Spend)
	mux.HandleFunc("GET /api/rewards/challenges", s.rewardH.Challenges)
	mux.HandleFunc("POST /api/rewards/challenges/{id}/claim", s.rewardH.ClaimChallenge)
	mux.HandleFunc("POST /api/rewards/referrals", s.rewardH.Refer)
	mux.HandleFunc("GET /api/rewards/referrals", s.rewardH.Referrals)

	// Subscriptions
	mux.HandleFunc("GET /api/subscriptions/tiers", s.subscriptionH.Tiers)
	mux.HandleFunc("POST /api/subscriptions", s.subscriptionH.Create)
	mux.HandleFunc("GET /api/subscriptions/{id}", s.subscriptionH.Get)
	mux.HandleFunc("POST /api/subscriptions/{id}/pause", s.subscriptionH.Pause)
	mux.HandleFunc("POST /api/subscriptions/{id}/resume", s.subscriptionH.Resume)
	mux.HandleFunc("PUT /api/subscriptions/{id}/tier", s.subscriptionH.UpdateTier)
	mux.HandleFunc("POST /api/subscriptions/{id}/items", s.subscriptionH.AddItem)
	mux.HandleFunc("GET /api/subscriptions/{id}/items", s.subscriptionH.ListItems)

	// Admin
	mux.Handle("GET /api/admin/users", middleware.RequireAdmin(http.HandlerFunc(s.adminH.ListUsers)))
	mux.Handle("GET /api/admin/users/{id}", middleware.RequireAdmin(http.HandlerFunc(s.adminH.GetUser)))
	mux.Handle("PUT /api/admin/users/{id}/role", middleware.RequireAdmin(http.HandlerFunc(s.adminH.SetRole)))
	mux.Handle("GET /api/admin/reports", middleware.RequireAdmin(http.HandlerFunc(s.adminH.Reports)))
	mux.Handle("POST /api/admin/broadcast", middleware.RequireAdmin(http.HandlerFunc(s.adminH.Broadcast)))
	mux.Handle("GET /api/admin/health", middleware.RequireAdmin(http.HandlerFunc(s.adminH.Health)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
