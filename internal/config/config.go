// Package config loads createtaxdb settings from defaults, an optional YAML
// file and CREATETAXDB_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/me/createtaxdb/internal/cmdline"
	"github.com/me/createtaxdb/internal/execution"
	"github.com/me/createtaxdb/internal/logupload"
	"github.com/me/createtaxdb/internal/platform"
	"github.com/me/createtaxdb/internal/stage"
)

// EnvPrefix prefixes every environment override, e.g. CREATETAXDB_LOGS_BASE.
// List settings such as CREATETAXDB_STAGE_EXCLUDE take names separated by
// commas or whitespace.
const EnvPrefix = "CREATETAXDB"

// Config is the complete createtaxdb configuration.
type Config struct {
	Platform  PlatformConfig  `mapstructure:"platform"`
	Provision ProvisionConfig `mapstructure:"provision"`
	Runner    RunnerConfig    `mapstructure:"runner"`
	Stage     StageConfig     `mapstructure:"stage"`
	Logs      LogsConfig      `mapstructure:"logs"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	DBPath    string          `mapstructure:"db_path"` // run history; ":memory:" for testing
}

// PlatformConfig addresses the platform's internal services.
type PlatformConfig struct {
	DispatcherURL string        `mapstructure:"dispatcher_url"`
	GraphQLURL    string        `mapstructure:"graphql_url"`
	DataURL       string        `mapstructure:"data_url"`
	TokenEnv      string        `mapstructure:"token_env"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type ProvisionConfig struct {
	StorageGiB int `mapstructure:"storage_gib"`
}

// RunnerConfig fixes the Nextflow invocation.
type RunnerConfig struct {
	Executable         string `mapstructure:"executable"`
	Entry              string `mapstructure:"entry"`
	Profile            string `mapstructure:"profile"`
	ConfigFile         string `mapstructure:"config_file"`
	Home               string `mapstructure:"home"`
	Opts               string `mapstructure:"opts"`
	DisableCheckLatest bool   `mapstructure:"disable_check_latest"`
}

type StageConfig struct {
	Source  string   `mapstructure:"source"`
	Dest    string   `mapstructure:"dest"`
	Exclude []string `mapstructure:"exclude"`
}

// LogsConfig controls where the Nextflow log is shipped.
type LogsConfig struct {
	Base        string                      `mapstructure:"base"`
	PipelineID  string                      `mapstructure:"pipeline_id"`
	File        string                      `mapstructure:"file"`
	RemoteName  string                      `mapstructure:"remote_name"`
	Timeout     time.Duration               `mapstructure:"timeout"`
	ObjectStore logupload.ObjectStoreConfig `mapstructure:"object_store"`
	S3          logupload.S3Config          `mapstructure:"s3"`
}

// LogConfig configures the process's own logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Default returns the in-cluster defaults.
func Default() Config {
	pc := platform.DefaultConfig()
	rc := cmdline.DefaultRunnerConfig()
	ec := execution.DefaultConfig()
	return Config{
		Platform: PlatformConfig{
			DispatcherURL: pc.DispatcherURL,
			GraphQLURL:    pc.GraphQLURL,
			DataURL:       pc.DataURL,
			TokenEnv:      pc.TokenEnv,
			Timeout:       pc.Timeout,
		},
		Provision: ProvisionConfig{StorageGiB: 100},
		Runner: RunnerConfig{
			Executable:         rc.Executable,
			Entry:              rc.Entry,
			Profile:            rc.Profile,
			ConfigFile:         rc.ConfigFile,
			Home:               rc.Home,
			Opts:               rc.Opts,
			DisableCheckLatest: rc.DisableCheckLatest,
		},
		Stage: StageConfig{
			Source:  ec.SourceDir,
			Dest:    ec.WorkDir,
			Exclude: append([]string(nil), stage.DefaultExclude...),
		},
		Logs: LogsConfig{
			Base:       ec.Logs.Base,
			PipelineID: ec.Logs.PipelineID,
			File:       ec.Logs.LocalFile,
			RemoteName: ec.Logs.RemoteName,
			Timeout:    ec.Logs.Timeout,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080"},
		DBPath: DefaultDBPath(),
	}
}

// DefaultDBPath returns ~/.createtaxdb/runs.db, or a relative path when the
// home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".createtaxdb", "runs.db")
	}
	return filepath.Join(home, ".createtaxdb", "runs.db")
}

// Load layers defaults, the YAML file at path (skipped when path is empty)
// and environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		splitListHook,
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitListHook decodes a string into a string slice by splitting on commas
// and whitespace, dropping empty names.
func splitListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Slice || to.Elem().Kind() != reflect.String {
		return data, nil
	}
	return strings.FieldsFunc(data.(string), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}), nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("platform.dispatcher_url", d.Platform.DispatcherURL)
	v.SetDefault("platform.graphql_url", d.Platform.GraphQLURL)
	v.SetDefault("platform.data_url", d.Platform.DataURL)
	v.SetDefault("platform.token_env", d.Platform.TokenEnv)
	v.SetDefault("platform.timeout", d.Platform.Timeout)

	v.SetDefault("provision.storage_gib", d.Provision.StorageGiB)

	v.SetDefault("runner.executable", d.Runner.Executable)
	v.SetDefault("runner.entry", d.Runner.Entry)
	v.SetDefault("runner.profile", d.Runner.Profile)
	v.SetDefault("runner.config_file", d.Runner.ConfigFile)
	v.SetDefault("runner.home", d.Runner.Home)
	v.SetDefault("runner.opts", d.Runner.Opts)
	v.SetDefault("runner.disable_check_latest", d.Runner.DisableCheckLatest)

	v.SetDefault("stage.source", d.Stage.Source)
	v.SetDefault("stage.dest", d.Stage.Dest)
	v.SetDefault("stage.exclude", d.Stage.Exclude)

	v.SetDefault("logs.base", d.Logs.Base)
	v.SetDefault("logs.pipeline_id", d.Logs.PipelineID)
	v.SetDefault("logs.file", d.Logs.File)
	v.SetDefault("logs.remote_name", d.Logs.RemoteName)
	v.SetDefault("logs.timeout", d.Logs.Timeout)
	v.SetDefault("logs.object_store.endpoint", d.Logs.ObjectStore.Endpoint)
	v.SetDefault("logs.object_store.access_key", d.Logs.ObjectStore.AccessKey)
	v.SetDefault("logs.object_store.secret_key", d.Logs.ObjectStore.SecretKey)
	v.SetDefault("logs.object_store.use_ssl", d.Logs.ObjectStore.UseSSL)
	v.SetDefault("logs.object_store.region", d.Logs.ObjectStore.Region)
	v.SetDefault("logs.object_store.bucket", d.Logs.ObjectStore.Bucket)
	v.SetDefault("logs.s3.region", d.Logs.S3.Region)
	v.SetDefault("logs.s3.endpoint", d.Logs.S3.Endpoint)
	v.SetDefault("logs.s3.use_path_style", d.Logs.S3.UsePathStyle)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("db_path", d.DBPath)
}

// Validate rejects settings no run could succeed with.
func (c Config) Validate() error {
	if c.Provision.StorageGiB <= 0 {
		return fmt.Errorf("provision.storage_gib must be positive, got %d", c.Provision.StorageGiB)
	}
	if c.Runner.Executable == "" {
		return fmt.Errorf("runner.executable is required")
	}
	if c.Stage.Dest == "" {
		return fmt.Errorf("stage.dest is required")
	}
	if c.Platform.TokenEnv == "" {
		return fmt.Errorf("platform.token_env is required")
	}
	switch scheme, _ := logupload.ParseLocation(c.Logs.Base); scheme {
	case "", logupload.SchemeFile, logupload.SchemeS3:
	case logupload.SchemeLatch:
		if !c.Logs.ObjectStore.Enabled() && c.Platform.DataURL == "" {
			return fmt.Errorf("logs.base %s needs platform.data_url or logs.object_store", c.Logs.Base)
		}
	default:
		return fmt.Errorf("logs.base %s: unsupported scheme %q", c.Logs.Base, scheme)
	}
	return nil
}

// PlatformClient returns the platform client settings.
func (c Config) PlatformClient() platform.Config {
	return platform.Config{
		DispatcherURL: c.Platform.DispatcherURL,
		GraphQLURL:    c.Platform.GraphQLURL,
		DataURL:       c.Platform.DataURL,
		TokenEnv:      c.Platform.TokenEnv,
		Timeout:       c.Platform.Timeout,
	}
}

// RunnerInvocation returns the fixed runner invocation settings.
func (c Config) RunnerInvocation() cmdline.RunnerConfig {
	return cmdline.RunnerConfig(c.Runner)
}

// Launcher returns the launcher layout and log settings.
func (c Config) Launcher() execution.Config {
	return execution.Config{
		SourceDir: c.Stage.Source,
		WorkDir:   c.Stage.Dest,
		Logs: execution.LogConfig{
			Base:       c.Logs.Base,
			PipelineID: c.Logs.PipelineID,
			LocalFile:  c.Logs.File,
			RemoteName: c.Logs.RemoteName,
			Timeout:    c.Logs.Timeout,
		},
	}
}
