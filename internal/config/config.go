package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	ModePoll   = "poll"
	ModeEvents = "events"

	WriteModeTruncate = "truncate"
	WriteModeAtomic   = "atomic"

	LockBackendLocal = "local"
	LockBackendEtcd  = "etcd"
)

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Network        string `mapstructure:"network"`
	TerminationMap string `mapstructure:"termination_map"`
	Mode           string `mapstructure:"mode"`
	PollInterval   int    `mapstructure:"poll_interval"`
	PollDelay      int    `mapstructure:"poll_delay"`
	ResyncInterval int    `mapstructure:"resync_interval"`
	CleanupTimeout int    `mapstructure:"cleanup_timeout"`
}

// HostsConfig describes the target file and how owned lines are tagged.
type HostsConfig struct {
	Path       string `mapstructure:"path"`
	Session    string `mapstructure:"session"`
	Annotation string `mapstructure:"annotation"`
	WriteMode  string `mapstructure:"write_mode"`
	Watch      bool   `mapstructure:"watch"`
}

// DockerConfig holds container runtime connection settings.
type DockerConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	RetrySteps int    `mapstructure:"retry_steps"`
	// DNSNames also publishes the names Docker's embedded DNS answers to (container name,
	// short id) alongside the network aliases.
	DNSNames   bool   `mapstructure:"dns_names"`
}

// LoggingConfig holds the logging-related configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"log_level"`
	Verbose bool   `mapstructure:"verbose"`
	Silent  bool   `mapstructure:"silent"`
}

type LockConfig struct {
	Backend string `mapstructure:"backend"`
}

// EtcdConfig holds etcd-related configuration.
type EtcdConfig struct {
	Endpoints         []string `mapstructure:"endpoints"`
	PathPrefix        string   `mapstructure:"etcd_path_prefix"`
	LockTTL           float64  `mapstructure:"etcd_lock_ttl"`
	LockTimeout       float64  `mapstructure:"etcd_lock_timeout"`
	LockRetryInterval float64  `mapstructure:"etcd_lock_retry_interval"`
}

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// Config is the top-level configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Hosts   HostsConfig   `mapstructure:"hosts"`
	Docker  DockerConfig  `mapstructure:"docker"`
	Logging LoggingConfig `mapstructure:"log"`
	Lock    LockConfig    `mapstructure:"lock"`
	Etcd    EtcdConfig    `mapstructure:"etcd"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

func defaultHostsPath() string {
	if runtime.GOOS == "windows" {
		return `c:\driversetc\hosts`
	}
	return "/etc/hosts"
}

func defaultNetwork() string {
	if runtime.GOOS == "windows" {
		return "nat"
	}
	return "bridge"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.network", defaultNetwork())
	v.SetDefault("app.termination_map", "")
	v.SetDefault("app.mode", ModePoll)
	v.SetDefault("app.poll_interval", 5)
	v.SetDefault("app.poll_delay", 1)
	v.SetDefault("app.resync_interval", 60)
	v.SetDefault("app.cleanup_timeout", 10)
	v.SetDefault("hosts.path", defaultHostsPath())
	v.SetDefault("hosts.session", "")
	v.SetDefault("hosts.annotation", "")
	v.SetDefault("hosts.write_mode", WriteModeTruncate)
	v.SetDefault("hosts.watch", true)
	v.SetDefault("docker.endpoint", "")
	v.SetDefault("docker.retry_steps", 3)
	v.SetDefault("docker.dns_names", false)
	v.SetDefault("log.log_level", "INFO")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.silent", false)
	v.SetDefault("lock.backend", LockBackendLocal)
	v.SetDefault("etcd.endpoints", []string{"localhost:2379"})
	v.SetDefault("etcd.etcd_path_prefix", "/docker-hosts-sync")
	v.SetDefault("etcd.etcd_lock_ttl", 5.0)
	v.SetDefault("etcd.etcd_lock_timeout", 2.0)
	v.SetDefault("etcd.etcd_lock_retry_interval", 0.1)
	v.SetDefault("metrics.listen_addr", "")
}

var legacyEnv = map[string]string{
	"app.network":     "network",
	"hosts.path":      "hosts_path",
	"docker.endpoint": "endpoint",
	"log.silent":      "silent",
}

// InitConfig performs the initial configuration: setting defaults, specifying the config file, and reading it.
func InitConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	// Specify the config file details.
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config") // Looks for config.yaml
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Read the config file if available.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// If the file is not found, just continue with defaults and env vars.
	}

	// Enable automatic environment variable binding.
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Environment names understood by earlier releases.
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	return nil
}

// Load unmarshals the configuration into the Config struct.
func Load(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.App.Mode {
	case ModePoll, ModeEvents:
	default:
		return &InvalidError{Key: "app.mode", Value: c.App.Mode}
	}
	switch c.Hosts.WriteMode {
	case WriteModeTruncate, WriteModeAtomic:
	default:
		return &InvalidError{Key: "hosts.write_mode", Value: c.Hosts.WriteMode}
	}
	switch c.Lock.Backend {
	case LockBackendLocal, LockBackendEtcd:
	default:
		return &InvalidError{Key: "lock.backend", Value: c.Lock.Backend}
	}
	if c.App.PollInterval <= 0 {
		return &InvalidError{Key: "app.poll_interval", Value: fmt.Sprint(c.App.PollInterval)}
	}
	if c.Hosts.Path == "" {
		return &InvalidError{Key: "hosts.path", Value: ""}
	}
	return nil
}

// InvalidError reports a configuration value outside its allowed set.
type InvalidError struct {
	Key   string
	Value string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Key)
}
