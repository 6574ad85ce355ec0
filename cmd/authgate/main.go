// authgate: servicio de autenticación por sesión con segundo factor opcional.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authgate/internal/auth"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/email"
	httpx "github.com/dropDatabas3/authgate/internal/http"
	"github.com/dropDatabas3/authgate/internal/http/router"
	"github.com/dropDatabas3/authgate/internal/jwtauth"
	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store/core"
	storemem "github.com/dropDatabas3/authgate/internal/store/memory"
	storepg "github.com/dropDatabas3/authgate/internal/store/pg"

	"go.uber.org/zap"
)

// Principal es la identidad que viaja en sesión y se expone a los handlers.
// Nunca incluye el hash de password.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func main() {
	var (
		cfgPath string
		envFile string
	)

	root := &cobra.Command{
		Use:          "authgate",
		Short:        "Session authentication gate with optional MFA",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "ruta del YAML de configuración")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "archivo .env opcional")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env es opcional: si no existe, seguimos con el entorno real.
			_ = godotenv.Load(envFile)

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.AddCommand(serve)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Logging.Level,
		ServiceName: "authgate",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	// Store de sesiones
	store, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer store.Close()

	// Repositorio de usuarios
	users, err := buildUsers(ctx, cfg)
	if err != nil {
		return err
	}
	defer users.Close()

	// Factor MFA
	var factor multifactor.Factor
	if cfg.MFA.Enabled {
		var sender multifactor.CodeSender
		switch cfg.MFA.Sender {
		case "smtp":
			sender = email.NewSMTPSender(email.SMTPConfig{
				Host:               cfg.SMTP.Host,
				Port:               cfg.SMTP.Port,
				From:               cfg.SMTP.From,
				User:               cfg.SMTP.Username,
				Pass:               cfg.SMTP.Password,
				TLSMode:            cfg.SMTP.TLS,
				InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
			}, email.SessionRecipient())
		default:
			sender = email.LogSender{}
		}
		mfa := multifactor.NewMfaRandomCode(
			multifactor.NumericCodeGenerator(cfg.MFA.CodeLength, cfg.MFACodeTTL()),
			sender,
		)
		mfa.MaxAttempts = cfg.MFA.MaxAttempts
		factor = mfa
	}

	// Provider + matcher
	var provider auth.AuthenticationProvider[Principal]
	switch cfg.Auth.Provider {
	case "bearer":
		if cfg.JWT.Secret == "" {
			return fmt.Errorf("auth.provider=bearer requiere jwt.secret")
		}
		provider = jwtauth.New[Principal]([]byte(cfg.JWT.Secret), cfg.JWT.Issuer)
	default:
		provider = session.NewAuthProvider[Principal]()
	}
	matcher := auth.NewPathMatcher(cfg.Gate.Patterns, cfg.Gate.Invert)

	manager := session.NewManager(store, session.Config{
		CookieName: cfg.Session.CookieName,
		Domain:     cfg.Session.Domain,
		Secure:     cfg.Session.Secure,
		SameSite:   cfg.Session.SameSite,
		TTL:        cfg.SessionTTL(),
	})

	handler := router.New(router.Deps[Principal]{
		SessionManager: manager,
		SessionStore:   store,
		Provider:       provider,
		Matcher:        matcher,
		Factor:         factor,
		Users:          users,
		Principal: func(u *core.User) Principal {
			return Principal{ID: u.ID, Email: u.Email, Name: u.Name}
		},
	})

	log.Info("starting server",
		zap.String("addr", cfg.Server.Addr),
		zap.Bool("mfa", cfg.MFA.Enabled),
		zap.String("auth_provider", cfg.Auth.Provider),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpx.Serve(gctx, cfg.Server.Addr, handler)
	})
	return g.Wait()
}

func buildUsers(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		repo, err := storepg.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
		return repo, nil
	default:
		repo := storemem.New()
		for i, su := range cfg.Storage.Seed {
			hash, err := password.Hash(password.Default, su.Password)
			if err != nil {
				return nil, fmt.Errorf("seed user %q: %w", su.Email, err)
			}
			repo.Seed(core.User{
				ID:           fmt.Sprintf("seed-%d", i+1),
				Email:        su.Email,
				Name:         su.Name,
				PasswordHash: hash,
			})
		}
		return repo, nil
	}
}
