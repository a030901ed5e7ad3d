package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/docker-hosts-sync/internal/app"
	"github.com/auto-dns/docker-hosts-sync/internal/config"
	"github.com/auto-dns/docker-hosts-sync/internal/domain"
	"github.com/auto-dns/docker-hosts-sync/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

const (
	exitOK                  = 0
	exitFailure             = 1
	exitInvalidConfig       = 2
	exitRegistryUnavailable = 3
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "docker-hosts-sync",
	Short: "Synchronize Docker container names into a hosts file",
	Long: "A tool that keeps the hosts file in sync with the hostnames and network aliases of " +
		"running Docker containers, so they resolve from the host.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := config.InitConfig(v, configFile); err != nil {
			return err
		}
		cfg, err := config.Load(v)
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		instance, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		var application application = instance
		defer func() {
			if err := application.Close(); err != nil {
				logInstance.Warn().Err(err).Msg("Error closing application")
			}
		}()

		// Create a context with cancellation for graceful shutdown.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Listen for OS signals.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			select {
			case sig := <-sigCh:
				logInstance.Info().Msgf("Received signal: %v", sig)
				cancel()
			case <-ctx.Done():
			}
		}()

		// Run the application. When context is canceled, Run returns after cleanup.
		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		logInstance.Info().Msg("Shut down cleanly")
		return nil
	},
}

var flagKeys = []struct {
	flag string
	key  string
}{
	{"log-level", "log.log_level"},
	{"verbose", "log.verbose"},
	{"silent", "log.silent"},
	{"docker-endpoint", "docker.endpoint"},
	{"network", "app.network"},
	{"termination-map", "app.termination_map"},
	{"mode", "app.mode"},
	{"poll-interval", "app.poll_interval"},
	{"hosts-path", "hosts.path"},
	{"session", "hosts.session"},
	{"annotation", "hosts.annotation"},
	{"write-mode", "hosts.write_mode"},
	{"watch", "hosts.watch"},
	{"lock-backend", "lock.backend"},
	{"metrics-addr", "metrics.listen_addr"},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is config.yaml)")
	flags.String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.Bool("silent", false, "only log warnings and errors")
	flags.String("docker-endpoint", "", "Docker Engine endpoint (default DOCKER_HOST or the platform socket)")
	flags.String("network", "", "network whose containers are published, or \"any\"")
	flags.String("termination-map", "", "name redirects, e.g. \"src1,src2:dest|src3:dest2\"")
	flags.String("mode", config.ModePoll, "trigger mode: poll or events")
	flags.Int("poll-interval", 5, "seconds between passes in poll mode")
	flags.String("hosts-path", "", "hosts file to manage")
	flags.String("session", "", "session suffix for the ownership tag")
	flags.String("annotation", "", "text written into the comment of every owned line")
	flags.String("write-mode", config.WriteModeTruncate, "truncate or atomic")
	flags.Bool("watch", true, "restore owned lines when the file is edited externally")
	flags.String("lock-backend", config.LockBackendLocal, "local or etcd")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	for _, fk := range flagKeys {
		if err := v.BindPFlag(fk.key, flags.Lookup(fk.flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", fk.flag, err))
		}
	}
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	var invalid *config.InvalidError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &invalid), errors.Is(err, domain.ErrConfigMalformed):
		return exitInvalidConfig
	case errors.Is(err, domain.ErrRegistryUnavailable):
		return exitRegistryUnavailable
	default:
		return exitFailure
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
