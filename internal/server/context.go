package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/schedwise/schedwise/internal/calendar"
	"github.com/schedwise/schedwise/internal/dialogue"
	"github.com/schedwise/schedwise/internal/directory"
	"github.com/schedwise/schedwise/internal/google"
	"github.com/schedwise/schedwise/internal/instrumentation"
	"github.com/schedwise/schedwise/internal/mailer"
	"github.com/schedwise/schedwise/internal/schedule"
	"github.com/schedwise/schedwise/internal/search"
)

// Config carries the shared dependencies every account reuses.
type Config struct {
	Extractor schedule.Extractor
	Store     *search.Store
	Manager   *dialogue.Manager
	Logger    *slog.Logger
}

// ServerContext holds the context for the MCP server. Google clients are
// per-account and lazily created; the extractor, search store and
// conversation manager are shared.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	extractor schedule.Extractor
	store     *search.Store
	manager   *dialogue.Manager
	logger    *slog.Logger

	calendarClients  map[string]*calendar.Client  // Maps account name to Calendar client
	directoryClients map[string]*directory.Client // Maps account name to People client
	mailerClients    map[string]*mailer.Client    // Maps account name to Gmail send client
	controllers      map[string]*dialogue.Controller

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context
func NewServerContext(ctx context.Context, cfg Config) (*ServerContext, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Manager == nil {
		cfg.Manager = dialogue.NewManager(dialogue.DefaultIdleTTL)
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:              shutdownCtx,
		cancel:           cancel,
		extractor:        cfg.Extractor,
		store:            cfg.Store,
		manager:          cfg.Manager,
		logger:           cfg.Logger,
		calendarClients:  make(map[string]*calendar.Client),
		directoryClients: make(map[string]*directory.Client),
		mailerClients:    make(map[string]*mailer.Client),
		controllers:      make(map[string]*dialogue.Controller),
	}

	// Try to create the default Calendar client, but don't fail if the
	// token is missing. Clients are lazily initialized when first needed.
	if calendar.HasToken() {
		client, err := calendar.NewClientForAccount(shutdownCtx, google.DefaultAccount)
		if err != nil {
			cfg.Logger.Warn("failed to create Calendar client for default account", "error", err)
		} else {
			sc.calendarClients[google.DefaultAccount] = client
		}
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Manager returns the shared conversation manager.
func (sc *ServerContext) Manager() *dialogue.Manager {
	return sc.manager
}

// Store returns the shared search store, which may be nil when
// persistence is disabled.
func (sc *ServerContext) Store() *search.Store {
	return sc.store
}

// Extractor returns the shared language-model extractor, which may be
// nil when none is configured.
func (sc *ServerContext) Extractor() schedule.Extractor {
	return sc.extractor
}

// CalendarClientForAccount returns the Calendar client for a specific
// account. Creates and caches the client if it doesn't exist yet.
// Returns nil if the account has no token.
func (sc *ServerContext) CalendarClientForAccount(account string) *calendar.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.calendarClientLocked(account)
}

func (sc *ServerContext) calendarClientLocked(account string) *calendar.Client {
	if client, ok := sc.calendarClients[account]; ok {
		return client
	}

	if !calendar.HasTokenForAccount(account) {
		return nil
	}

	client, err := calendar.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create Calendar client", "account", account, "error", err)
		return nil
	}

	sc.calendarClients[account] = client
	return client
}

// CalendarClient returns the Calendar client for the default account
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.CalendarClientForAccount(google.DefaultAccount)
}

// SetCalendarClientForAccount sets the Calendar client for a specific account
func (sc *ServerContext) SetCalendarClientForAccount(account string, client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClients[account] = client
}

// DirectoryClientForAccount returns the People client for a specific
// account, creating and caching it on first use. Returns nil if the
// account has no token.
func (sc *ServerContext) DirectoryClientForAccount(account string) *directory.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.directoryClientLocked(account)
}

func (sc *ServerContext) directoryClientLocked(account string) *directory.Client {
	if client, ok := sc.directoryClients[account]; ok {
		return client
	}

	if !directory.HasTokenForAccount(account) {
		return nil
	}

	client, err := directory.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create People client", "account", account, "error", err)
		return nil
	}

	sc.directoryClients[account] = client
	return client
}

// MailerClientForAccount returns the Gmail send client for a specific
// account, creating and caching it on first use. Returns nil if the
// account has no token.
func (sc *ServerContext) MailerClientForAccount(account string) *mailer.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.mailerClientLocked(account)
}

func (sc *ServerContext) mailerClientLocked(account string) *mailer.Client {
	if client, ok := sc.mailerClients[account]; ok {
		return client
	}

	if !mailer.HasTokenForAccount(account) {
		return nil
	}

	client, err := mailer.NewClientForAccount(sc.ctx, account)
	if err != nil {
		sc.logger.Warn("failed to create Gmail client", "account", account, "error", err)
		return nil
	}

	sc.mailerClients[account] = client
	return client
}

// ControllerFor returns the dialogue controller serving one skill for one
// account, assembling and caching the per-account pipeline on first use.
func (sc *ServerContext) ControllerFor(account string, skill schedule.Skill) (*dialogue.Controller, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	key := account + "/" + string(skill)
	if ctrl, ok := sc.controllers[key]; ok {
		return ctrl, nil
	}

	if sc.extractor == nil {
		return nil, fmt.Errorf("server: no extractor configured")
	}

	calClient := sc.calendarClientLocked(account)
	if calClient == nil {
		return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
	}

	deps := schedule.Deps{
		Provider:  calendar.NewProvider(calClient, ""),
		Extractor: sc.extractor,
		Logger:    sc.logger,
	}
	if sc.store != nil {
		deps.Store = sc.store
	}
	if dirClient := sc.directoryClientLocked(account); dirClient != nil {
		deps.Directory = directory.NewResolver(dirClient)
	}
	if mailClient := sc.mailerClientLocked(account); mailClient != nil {
		deps.Mailer = mailer.NewSender(mailClient)
	}

	orc, err := schedule.NewOrchestrator(skill, deps)
	if err != nil {
		return nil, err
	}

	ctrl := dialogue.NewController(orc, sc.logger)
	sc.controllers[key] = ctrl
	return ctrl, nil
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers.
// The active-conversation gauge must also drop when the manager prunes idle
// conversations, so the pruning hook is wired here.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	if m != nil && sc.manager != nil {
		sc.manager.OnEvict(func(evicted int) {
			for i := 0; i < evicted; i++ {
				m.DecrementActiveConversations(sc.ctx)
			}
		})
	}
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers.
func (sc *ServerContext) SetAuditLogger(a *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = a
}

// AuditLogger returns the audit logger, or nil when audit logging is
// disabled.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
