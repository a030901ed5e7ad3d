package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/core"
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/event"
	"github.com/auto-dns/docker-hosts-sync/internal/hostsfile"
	"github.com/auto-dns/docker-hosts-sync/internal/lock"
	"github.com/auto-dns/docker-hosts-sync/internal/metrics"
	"github.com/auto-dns/docker-hosts-sync/internal/snapshot"
	"github.com/auto-dns/docker-hosts-sync/internal/state"
	"github.com/auto-dns/docker-hosts-sync/internal/trigger"
	dockerCli "github.com/docker/docker/client"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
	"golang.org/x/sync/errgroup"
)

const pingTimeout = 10 * time.Second

type App struct {
	cfg          *config.Config
	dockerClient *dockerCli.Client
	etcdClient   *clientv3.Client
	locker       lock.Locker
	reader       pinger
	engine       cleaner
	trigger      trigger.Trigger
	watcher      runner
	metrics      runner
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// Docker CLI
	opts := []dockerCli.Opt{dockerCli.FromEnv, dockerCli.WithAPIVersionNegotiation()}
	if cfg.Docker.Endpoint != "" {
		opts = append(opts, dockerCli.WithHost(cfg.Docker.Endpoint))
	}
	dockerClient, err := dockerCli.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: creating docker client: %v", domain.ErrRegistryUnavailable, err)
	}
	a.dockerClient = dockerClient

	tm, err := domain.ParseTerminationMap(cfg.App.TerminationMap)
	if err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				logger.Warn().Err(e).Msg("Ignoring termination map entry")
			}
		} else {
			logger.Warn().Err(err).Msg("Ignoring termination map entries")
		}
	}

	locker, err := a.newLocker()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.locker = locker

	var recorder core.Recorder
	if cfg.Metrics.ListenAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.New(reg)
		a.metrics = metrics.NewServer(cfg.Metrics.ListenAddr, reg, logger)
	}

	reconciler := hostsfile.NewReconciler(hostsfile.Options{
		Path:       cfg.Hosts.Path,
		Tag:        domain.NewOwnershipTag(cfg.Hosts.Session),
		Annotation: cfg.Hosts.Annotation,
		WriteMode:  cfg.Hosts.WriteMode,
	}, locker, logger)

	reader := snapshot.NewDockerReader(dockerClient, cfg.Docker.RetrySteps, cfg.Docker.DNSNames, logger)
	scope := domain.ParseNetworkScope(cfg.App.Network)
	engine := core.NewEngine(reader, reconciler, state.NewMemoryState(), scope, tm, recorder, logger)
	a.reader = reader
	a.engine = engine

	switch cfg.App.Mode {
	case config.ModeEvents:
		gen := event.NewDockerGenerator(dockerClient, logger)
		a.trigger = trigger.NewEventTrigger(engine, gen, seconds(cfg.App.ResyncInterval), logger)
	default:
		a.trigger = trigger.NewPoller(engine, seconds(cfg.App.PollInterval), seconds(cfg.App.PollDelay), logger)
	}
	if cfg.Hosts.Watch {
		a.watcher = trigger.NewFileWatcher(cfg.Hosts.Path, reconciler, engine, logger)
	}

	logger.Info().
		Str("hosts_path", cfg.Hosts.Path).
		Str("network", scope.String()).
		Str("mode", cfg.App.Mode).
		Str("tag", string(domain.NewOwnershipTag(cfg.Hosts.Session))).
		Int("termination_map_entries", len(tm)).
		Msg("Configured")

	return a, nil
}

func (a *App) newLocker() (lock.Locker, error) {
	if a.cfg.Lock.Backend != config.LockBackendEtcd {
		return lock.NewLocalLocker(), nil
	}

	// etcd CLI
	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   a.cfg.Etcd.Endpoints,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	a.etcdClient = etcdClient

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	return lock.NewEtcdLocker(etcdClient, &a.cfg.Etcd, hostname, a.logger), nil
}

// Run checks the Docker Engine is reachable, then runs the trigger, the drift watcher and
// the metrics server until ctx is cancelled. Owned lines are removed before returning.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.reader.Ping(pingCtx)
	cancel()
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("endpoint", a.reader.Endpoint()).
			Msg("Cannot reach the Docker Engine; set --docker-endpoint or DOCKER_ENDPOINT to change it")
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.trigger.Run(gctx) })
	if a.watcher != nil {
		g.Go(func() error {
			if err := a.watcher.Run(gctx); err != nil {
				// The file may live where it cannot be watched; reconciliation still works.
				a.logger.Warn().Err(err).Msg("Drift watcher stopped")
			}
			return nil
		})
	}
	if a.metrics != nil {
		g.Go(func() error { return a.metrics.Run(gctx) })
	}
	runErr := g.Wait()

	a.logger.Info().Msg("Removing owned hosts entries")
	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), seconds(a.cfg.App.CleanupTimeout))
	defer cleanupCancel()
	if err := a.engine.Cleanup(cleanupCtx); err != nil {
		// Nothing of ours is left in a file that does not exist.
		if !errors.Is(err, domain.ErrFileMissing) {
			runErr = multierror.Append(runErr, fmt.Errorf("cleanup: %w", err)).ErrorOrNil()
		}
	}
	return runErr
}

func (a *App) Close() error {
	var errs *multierror.Error
	if a.locker != nil {
		if err := a.locker.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close locker: %w", err))
		}
	} else if a.etcdClient != nil {
		if err := a.etcdClient.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close etcd client: %w", err))
		}
	}
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("close docker client: %w", err))
		}
	}
	return errs.ErrorOrNil()
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
