package store

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Backend selects where the active pair lives.
type Backend string

const (
	// BackendDisk keeps the active record next to the catalog and notifies
	// through the filesystem.
	BackendDisk Backend = "disk"
	// BackendRemote talks to a `lowerthird docstore` server.
	BackendRemote Backend = "remote"
)

type Config interface {
	BasePath() string
	Backend() Backend
	RemoteURL() string
	DisplayAddr() string
	DisplayScale() float64
	LogLevel() string
	LogFile() string
}

func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.lowerthird.db")
	viper.SetDefault("backend", string(BackendDisk))
	viper.SetDefault("remote", "http://127.0.0.1:4456")
	viper.SetDefault("display.addr", "127.0.0.1:4455")
	viper.SetDefault("display.scale", 1.0)
	viper.SetDefault("log.level", "info")
	viper.SetConfigName(".lowerthird") // .yaml is implicit
	viper.SetEnvPrefix("LOWERTHIRD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("LOWERTHIRD_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	backend := Backend(strings.ToLower(viper.GetString("backend")))
	switch backend {
	case BackendDisk, BackendRemote:
	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}

	return &fileConfig{
		Path:   path,
		Store:  backend,
		Remote: viper.GetString("remote"),
		Addr:   viper.GetString("display.addr"),
		Scale:  viper.GetFloat64("display.scale"),
		Level:  viper.GetString("log.level"),
		File:   viper.GetString("log.file"),
	}, nil
}

type fileConfig struct {
	Path   string  `json:"path"`
	Store  Backend `json:"backend"`
	Remote string  `json:"remote"`
	Addr   string  `json:"displayAddr"`
	Scale  float64 `json:"displayScale"`
	Level  string  `json:"logLevel"`
	File   string  `json:"logFile"`
}

func (f *fileConfig) BasePath() string      { return f.Path }
func (f *fileConfig) Backend() Backend      { return f.Store }
func (f *fileConfig) RemoteURL() string     { return f.Remote }
func (f *fileConfig) DisplayAddr() string   { return f.Addr }
func (f *fileConfig) DisplayScale() float64 { return f.Scale }
func (f *fileConfig) LogLevel() string      { return f.Level }
func (f *fileConfig) LogFile() string       { return f.File }

// StaticConfig is a Config with fixed values, for tests and embedding.
type StaticConfig struct {
	Path   string
	Store  Backend
	Remote string
	Addr   string
	Scale  float64
}

func (s StaticConfig) BasePath() string { return s.Path }

func (s StaticConfig) Backend() Backend {
	if s.Store == "" {
		return BackendDisk
	}
	return s.Store
}

func (s StaticConfig) RemoteURL() string   { return s.Remote }
func (s StaticConfig) DisplayAddr() string { return s.Addr }

func (s StaticConfig) DisplayScale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s StaticConfig) LogLevel() string { return "info" }
func (s StaticConfig) LogFile() string  { return "" }
