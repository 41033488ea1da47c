package main

import (
	"errors"
	"fmt"

	"github.com/pbaille/moodlog/internal/api"
	"github.com/pbaille/moodlog/internal/auth"
	"github.com/pbaille/moodlog/internal/config"
	"github.com/pbaille/moodlog/internal/journal"
	"github.com/pbaille/moodlog/internal/logging"
	"github.com/pbaille/moodlog/internal/store"
	"go.uber.org/zap"
)

// runtime is everything a command needs, built from the config file
type runtime struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	provider *auth.Provider
	tokens   *auth.TokenSource
	client   *api.Client
	cache    *store.Store
}

// setup loads config and wires the stack. console mirrors logs to stderr,
// which must stay off while the TUI owns the terminal.
func setup(console bool) (*runtime, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogPath(),
		Console: console,
	})
	if err != nil {
		return nil, err
	}

	provider := auth.NewProvider(cfg.Identity.APIKey, cfg.Identity.AccountsURL, cfg.Identity.TokenURL)
	tokens := auth.NewTokenSource(cfg, provider, log)
	client := api.New(cfg.BackendURL, tokens, log, api.WithRateLimit(cfg.RateLimit, cfg.RateBurst))

	rt := &runtime{
		cfg:      cfg,
		log:      log,
		provider: provider,
		tokens:   tokens,
		client:   client,
	}

	cache, err := store.New(cfg.DatabasePath())
	if err != nil {
		log.Warnw("entry cache unavailable", "path", cfg.DatabasePath(), "error", err)
	} else {
		rt.cache = cache
	}

	log.Debugw("runtime ready", "backend", cfg.BackendURL, "config", cfg.Path())
	return rt, nil
}

// session builds a journal session that writes every load to the cache
func (r *runtime) session() *journal.Session {
	var opts []journal.SessionOption
	if r.cache != nil {
		opts = append(opts, journal.WithEntryCache(r.cache))
	}
	return journal.NewSession(r.client, r.tokens, r.log, opts...)
}

// requireIdentityKey fails early when the identity provider is not configured
func (r *runtime) requireIdentityKey() error {
	if r.cfg.Identity.APIKey == "" {
		return fmt.Errorf("identity.api_key is not set: add it to %s or set MOODLOG_IDENTITY_API_KEY", r.cfg.Path())
	}
	return nil
}

// userID is the signed-in user, needed to read the offline cache
func (r *runtime) userID() (string, error) {
	id, err := r.tokens.Identity()
	if err != nil {
		return "", err
	}
	if id.UID == "" {
		return "", errors.New("stored session has no user id, sign in again")
	}
	return id.UID, nil
}

func (r *runtime) Close() {
	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.log.Warnw("close cache", "error", err)
		}
	}
	_ = r.log.Sync()
}
