package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"groupauth/internal/config"
	"groupauth/internal/observability/logging"
	"groupauth/internal/observability/metrics"
	"groupauth/internal/service/impl"
	"groupauth/internal/store"
	httpx "groupauth/internal/transport/http"
	"groupauth/pkg/db"

	"github.com/joho/godotenv"
)

const serviceName = "groupauth"

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: serviceName,
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	metrics.MustRegister(serviceName)

	rp, err := impl.NewRelyingParty(impl.RelyingPartyConfig{
		Name:         cfg.RPName,
		ID:           cfg.RPID,
		Origin:       cfg.Origin,
		ChallengeTTL: cfg.ChallengeTTL,
	})
	if err != nil {
		logger.Error("relying party config", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)
	groups := st.Groups()
	challenges := st.Challenges()
	sessions := st.Sessions()

	registration := impl.NewRegistrationService(groups, challenges, rp, cfg.ChallengeTTL, logger)
	authentication := impl.NewAuthenticationService(groups, challenges, sessions, rp, cfg.ChallengeTTL, cfg.SessionTTL, logger)
	sessionSvc := impl.NewSessionService(groups, sessions, logger)

	codec := httpx.NewCookieCodec(cfg.SigningKey, cfg.CookieDomain, cfg.SessionCookie, cfg.GroupCookie, cfg.SessionTTL)
	handler := httpx.NewHandler(registration, authentication, sessionSvc, codec, cfg.TrustProxy, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", srv.Addr, "rp_id", cfg.RPID, "origin", cfg.Origin)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
