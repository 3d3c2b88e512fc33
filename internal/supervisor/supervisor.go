// Package supervisor boots every process-shared resource once, launches one
// MCP host per tenant in the static registry, and enforces fail-fast
// lifecycle semantics (C12): if any tenant host crashes, every other tenant
// is cancelled and the process exits non-zero so the container orchestrator
// restarts it. Graceful shutdown (SIGINT/SIGTERM) takes the opposite path —
// every tenant is cancelled and the process exits cleanly. Grounded on the
// source's main_v2.py "fail-fast supervisor" and the teacher's
// cmd/nightowl/main.go signal.NotifyContext idiom.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/ai2b-pro/toolfleet/internal/adminserver"
	"github.com/ai2b-pro/toolfleet/internal/config"
	"github.com/ai2b-pro/toolfleet/internal/httpclient"
	"github.com/ai2b-pro/toolfleet/internal/platform"
	"github.com/ai2b-pro/toolfleet/internal/telemetry"
	"github.com/ai2b-pro/toolfleet/pkg/availability"
	"github.com/ai2b-pro/toolfleet/pkg/catalogue"
	"github.com/ai2b-pro/toolfleet/pkg/choicelog"
	"github.com/ai2b-pro/toolfleet/pkg/crm"
	"github.com/ai2b-pro/toolfleet/pkg/retriever"
	"github.com/ai2b-pro/toolfleet/pkg/retriever/embed"
	"github.com/ai2b-pro/toolfleet/pkg/tenants"
	"github.com/ai2b-pro/toolfleet/pkg/toolhost"
)

// Run executes the full supervisor lifecycle and returns only on clean
// shutdown; any tenant crash is reported via the returned error so main can
// os.Exit(1).
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := platform.NewPostgresPool(ctx, postgresOptions(cfg))
	if err != nil {
		return fmt.Errorf("building postgres pool: %w", err)
	}
	defer pool.Close()

	probeTimeout := time.Duration(cfg.PGQueryTimeoutS) * time.Second
	if err := platform.CheckAlive(ctx, pool, probeTimeout); err != nil {
		return fmt.Errorf("postgres liveness probe failed at startup: %w", err)
	}
	logger.Info("postgres pool ready")

	cache, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("building redis client: %w", err)
	}
	defer func() { _ = cache.Close() }()

	httpClient := httpclient.New(httpclient.DefaultOptions())
	defer httpclient.Close(httpClient)

	crmClient := crm.NewClient(httpClient, crm.Config{
		BaseURL:       cfg.CRMBaseURL,
		Timeout:       time.Duration(cfg.CRMHTTPTimeoutS * float64(time.Second)),
		Retries:       cfg.CRMHTTPRetries,
		RetryMinDelay: time.Duration(cfg.CRMRetryMinDelayS * float64(time.Second)),
		RetryMaxDelay: time.Duration(cfg.CRMRetryMaxDelayS * float64(time.Second)),
	})

	catalogueStore := catalogue.NewStore(pool, cache)
	availabilityEngine := availability.NewEngine(crmClient, catalogueStore)

	embedClient := embed.New(httpClient, embed.Config{
		BaseURL: openAIBaseURL(cfg.OpenAIProxyURL),
		APIKey:  cfg.OpenAIAPIKey,
		Model:   "text-embedding-ada-002",
	})
	qdrantRetriever := retriever.New(httpClient, retriever.Config{BaseURL: cfg.QdrantURL}, embedClient)

	choiceLog := choicelog.NewWriter(pool, logger)
	choiceLog.OnMetrics(telemetry.ToolChoicesRecordedTotal.Inc, telemetry.ToolChoicesDroppedTotal.Inc)
	choiceLog.Start(ctx)
	defer choiceLog.Close()

	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(telemetry.All()...)
	toolMetrics := telemetry.ToolMetrics{}

	deps := tenants.Deps{
		CRM:          crmClient,
		Availability: availabilityEngine,
		Catalogue:    catalogueStore,
		Retriever:    qdrantRetriever,
		ChoiceLog:    choiceLog,
		Collections: tenants.QdrantCollections{
			FAQ:      cfg.QdrantCollectionFAQ,
			Services: cfg.QdrantCollectionService,
			Products: cfg.QdrantCollectionProduct,
		},
	}

	admin := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", cfg.AdminPort),
		Handler: adminserver.New(pool, cache, metricsRegistry, logger),
	}
	go func() {
		if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server stopped unexpectedly", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = admin.Shutdown(shutdownCtx)
	}()

	servers, err := buildTenantServers(ctx, cfg, deps, logger, toolMetrics)
	if err != nil {
		return err
	}

	return runTenants(ctx, servers, logger)
}

type tenantServer struct {
	name   string
	server *http.Server
}

// buildTenantServers resolves each registry entry's port/branch list from
// the environment (fail-fast, mirroring the source's require_int_env) and
// composes its tool registry and MCP host.
func buildTenantServers(ctx context.Context, cfg *config.Config, deps tenants.Deps, logger *slog.Logger, metrics toolhost.Metrics) ([]tenantServer, error) {
	specs := tenants.Registry()
	servers := make([]tenantServer, 0, len(specs))

	for _, spec := range specs {
		port, err := requireIntEnv(spec.PortEnv)
		if err != nil {
			return nil, err
		}

		channelIDs, err := parseChannelIDs(os.Getenv(spec.ChannelsEnv))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.ChannelsEnv, err)
		}

		registry, err := spec.Build(ctx, deps, spec.Name, channelIDs)
		if err != nil {
			return nil, fmt.Errorf("building tenant %q: %w", spec.Name, err)
		}

		handler, err := toolhost.Build(spec.Name, registry, metrics, logger)
		if err != nil {
			return nil, fmt.Errorf("hosting tenant %q: %w", spec.Name, err)
		}

		servers = append(servers, tenantServer{
			name: spec.Name,
			server: &http.Server{
				Addr:    fmt.Sprintf("0.0.0.0:%d", port),
				Handler: handler,
			},
		})
	}
	return servers, nil
}

// runTenants starts one goroutine per tenant server and waits for the first
// of two outcomes: ctx is cancelled (graceful shutdown, e.g. SIGINT/SIGTERM
// via signal.NotifyContext in main) or any tenant server exits on its own —
// which, for a long-running http.Server, only ever means it crashed. The
// errgroup runs in fail-fast mode: the first tenant error cancels the
// group's context, which is NOT the same context the other tenants were
// started with, so cancellation here is driven by a sibling's exit, not the
// caller's ctx.
func runTenants(ctx context.Context, servers []tenantServer, logger *slog.Logger) error {
	group, groupCtx := errgroup.WithContext(ctx)

	for _, ts := range servers {
		ts := ts
		group.Go(func() error {
			logger.Info("starting tenant MCP host", "tenant", ts.name, "addr", ts.server.Addr)
			err := ts.server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("tenant MCP host shut down", "tenant", ts.name)
				return nil
			}
			if err != nil {
				logger.Error("tenant MCP host crashed", "tenant", ts.name, "error", err)
				return fmt.Errorf("tenant %q crashed: %w", ts.name, err)
			}
			return nil
		})
	}

	// Whichever fires first — ctx cancellation (graceful) or groupCtx
	// cancellation (a tenant crashed) — triggers the same shutdown path:
	// every server is asked to stop, and we wait for all goroutines to
	// return before deciding whether this was a clean or a failed exit.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping all tenant hosts")
	case <-groupCtx.Done():
		logger.Error("a tenant host crashed, stopping all others (fail-fast)")
	}

	for _, ts := range servers {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = ts.server.Shutdown(shutdownCtx)
		cancel()
	}

	if err := group.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func postgresOptions(cfg *config.Config) platform.PostgresOptions {
	return platform.PostgresOptions{
		Host:               cfg.PostgresHost,
		Port:               cfg.PostgresPort,
		Database:           cfg.PostgresDB,
		User:               cfg.PostgresUser,
		Password:           cfg.PostgresPassword,
		PoolMin:            int32(cfg.PGPoolMin),
		PoolMax:            int32(cfg.PGPoolMax),
		ConnectTimeout:     time.Duration(cfg.PGConnectTimeoutS) * time.Second,
		StatementTimeoutMs: cfg.PGStatementTimeoutMs,
	}
}

func openAIBaseURL(proxyURL string) string {
	if strings.TrimSpace(proxyURL) != "" {
		return proxyURL
	}
	return "https://api.openai.com"
}

// requireIntEnv mirrors the source's require_int_env: missing or
// non-numeric values fail the whole process at startup rather than
// surfacing as a runtime error once traffic arrives.
func requireIntEnv(name string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, fmt.Errorf("missing required environment variable %s", name)
	}
	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s=%q", name, raw)
	}
	return port, nil
}

// parseChannelIDs parses a CSV list of branch channel IDs, preserving
// configured order and dropping duplicates, per spec §3's Branch ID
// ordering rule.
func parseChannelIDs(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("missing required channel id list")
	}

	seen := make(map[int]struct{})
	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid channel id %q", part)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("channel id list is empty")
	}
	return ids, nil
}
