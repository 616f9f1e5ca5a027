// Package app assembles the service from configuration: identity provider,
// document store, model gateway, rate limiter, services, and the HTTP router.
// It also runs the HTTP server until its context is canceled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/tbourn/go-companion-backend/internal/auth"
	"github.com/tbourn/go-companion-backend/internal/config"
	httpapi "github.com/tbourn/go-companion-backend/internal/http"
	"github.com/tbourn/go-companion-backend/internal/http/handlers"
	"github.com/tbourn/go-companion-backend/internal/http/middleware"
	"github.com/tbourn/go-companion-backend/internal/llm"
	"github.com/tbourn/go-companion-backend/internal/repo"
	"github.com/tbourn/go-companion-backend/internal/services"
)

// journalMaxRunes caps journal entries sent to the model.
const journalMaxRunes = 10000

// shutdownTimeout bounds graceful shutdown; open chat streams get this long to finish.
const shutdownTimeout = 30 * time.Second

// App is a fully wired service.
type App struct {
	Config  config.Config
	Handler http.Handler

	closers []func() error
}

// Close releases the store and limiter connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build creates every dependency from cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	fb, err := newFirebase(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}
	authClient, err := fb.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg, fb)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	gateway, err := llm.New(ctx, modelOptions(cfg.Model))
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	limiter, closeLimiter := newLimiter(ctx, cfg)
	a.closers = append(a.closers, closeLimiter)

	a.Handler = newRouter(cfg, httpapi.Deps{
		Verifier: auth.NewFirebaseVerifier(authClient),
		Limiter:  limiter,
		Chat:     services.NewChatService(store, gateway),
		Journal:  &services.JournalService{Model: gateway, MaxContentRunes: journalMaxRunes},
		Mood:     &services.MoodService{Store: store, Model: gateway},
		Voice:    gateway,
	})

	log.Info().
		Str("store", cfg.StoreDriver).
		Str("model", cfg.Model.Name).
		Str("voice_tokens", cfg.Model.VoiceTokenMode).
		Bool("redis_limiter", cfg.RedisAddr != "").
		Msg("application wired")
	return a, nil
}

// Run serves HTTP until ctx is canceled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := NewServer(a.Config, a.Handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", a.Config.AppEnv).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

// NewServer applies the configured timeouts to an http.Server.
func NewServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           h,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

func newRouter(cfg config.Config, deps httpapi.Deps) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)
	return r
}

func newFirebase(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}
	fb, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase: %w", err)
	}
	return fb, nil
}

// openStore selects the document store driver.
func openStore(ctx context.Context, cfg config.Config, fb *firebase.App) (repo.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		db, err := repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		if err := repo.AutoMigrate(db); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		log.Warn().Str("path", cfg.DBPath).Msg("using local sqlite store")
		return repo.NewGormStore(db), sqlDB.Close, nil
	default:
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("init firestore: %w", err)
		}
		return repo.NewFirestoreStore(client), client.Close, nil
	}
}

// newLimiter uses Redis when configured so limits hold across replicas.
// An unreachable Redis is logged; RateLimit fails open per request.
func newLimiter(ctx context.Context, cfg config.Config) (middleware.Limiter, func() error) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryLimiter(cfg.RateRPS, cfg.RateBurst), func() error { return nil }
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; rate limits will fail open")
	}
	return middleware.NewRedisLimiter(client, cfg.RateRPS, cfg.RateBurst), client.Close
}

func modelOptions(m config.ModelConfig) llm.Options {
	return llm.Options{
		APIKey:    m.APIKey,
		Model:     m.Name,
		LiveModel: m.LiveModel,
		Prompts: llm.Prompts{
			ChatSystem:     m.ChatSystemPrompt,
			JournalInsight: m.JournalInsightPrompt,
			MoodAnalysis:   m.MoodAnalysisPrompt,
		},
		VoiceTokenTTL:   m.VoiceTokenTTL,
		MintVoiceTokens: m.VoiceTokenMode == config.VoiceTokenMint,
	}
}

var _ handlers.VoiceService = (*llm.Gateway)(nil)
