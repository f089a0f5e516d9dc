package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/encoding/ini"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const FileName = ".dcachecfg"

type Config struct {
	Default DefaultConfig `mapstructure:"default"`
	Sync    SyncConfig    `mapstructure:"sync"`

	// File is the configuration file that was read, empty if none was found.
	File string `mapstructure:"-"`
}

// DefaultConfig holds the connection settings of the [default] section.
type DefaultConfig struct {
	URL                string `mapstructure:"url"`
	Timeout            int    `mapstructure:"timeout"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	Certificate        string `mapstructure:"certificate"`
	PrivateKey         string `mapstructure:"key"`
	X509Proxy          string `mapstructure:"x509_proxy"`
	CACertificate      string `mapstructure:"ca_certificate"`
	CADirectory        string `mapstructure:"ca_directory"`
	NoCheckCertificate bool   `mapstructure:"no_check_certificate"`
	AccessToken        string `mapstructure:"access_token"`
	OIDCAgentAccount   string `mapstructure:"oidc-agent-account"`
}

// SyncConfig holds the settings of the [sync] section.
type SyncConfig struct {
	Workers        int           `mapstructure:"workers"`
	Resubscribe    string        `mapstructure:"resubscribe"`
	StatusPort     int           `mapstructure:"status_port"`
	HistoryDB      string        `mapstructure:"history_db"`
	ProbeAttempts  int           `mapstructure:"probe_attempts"`
	ProbeBackoff   time.Duration `mapstructure:"probe_backoff"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	CloseAbandoned bool          `mapstructure:"close_abandoned"`
	Ignore         []string      `mapstructure:"ignore"`
}

var Default = Config{
	Default: DefaultConfig{
		URL:         "https://localhost:3880",
		CADirectory: "/etc/grid-security/certificates/",
	},
	Sync: SyncConfig{
		Workers:        1,
		Resubscribe:    "all",
		ProbeAttempts:  10,
		ProbeBackoff:   100 * time.Millisecond,
		ReconnectDelay: time.Second,
		CloseAbandoned: true,
	},
}

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"url":                  "default.url",
	"timeout":              "default.timeout",
	"user":                 "default.username",
	"password":             "default.password",
	"certificate":          "default.certificate",
	"private-key":          "default.key",
	"x509_proxy":           "default.x509_proxy",
	"ca-certificate":       "default.ca_certificate",
	"ca-directory":         "default.ca_directory",
	"no-check-certificate": "default.no_check_certificate",
	"access-token":         "default.access_token",
	"oidc-agent-account":   "default.oidc-agent-account",
	"workers":              "sync.workers",
	"resubscribe":          "sync.resubscribe",
	"status-port":          "sync.status_port",
	"history-db":           "sync.history_db",
	"close-abandoned":      "sync.close_abandoned",
	"ignore":               "sync.ignore",
}

// SearchPaths returns the directories probed for the configuration file,
// in order of precedence.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	paths = append(paths, "/etc/dcache")
	if dir := os.Getenv("DCACHE_CONF"); dir != "" {
		paths = append(paths, dir)
	}
	return paths
}

// Find returns the first configuration file present in dirs.
func Find(dirs []string) string {
	for _, dir := range dirs {
		p := filepath.Join(dir, FileName)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads the configuration. Values set on flags win over the
// environment, which wins over the configuration file and the defaults.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return LoadFrom(SearchPaths(), flags)
}

func LoadFrom(dirs []string, flags *pflag.FlagSet) (*Config, error) {
	codecs := viper.NewCodecRegistry()
	if err := codecs.RegisterCodec("ini", ini.Codec{}); err != nil {
		return nil, fmt.Errorf("failed to register ini codec: %w", err)
	}
	v := viper.NewWithOptions(viper.WithCodecRegistry(codecs))

	v.SetDefault("default.url", Default.Default.URL)
	v.SetDefault("default.timeout", Default.Default.Timeout)
	v.SetDefault("default.username", "")
	v.SetDefault("default.password", "")
	v.SetDefault("default.certificate", "")
	v.SetDefault("default.key", "")
	v.SetDefault("default.x509_proxy", "")
	v.SetDefault("default.ca_certificate", "")
	v.SetDefault("default.ca_directory", Default.Default.CADirectory)
	v.SetDefault("default.no_check_certificate", false)
	v.SetDefault("default.access_token", "")
	v.SetDefault("default.oidc-agent-account", "")
	v.SetDefault("sync.workers", Default.Sync.Workers)
	v.SetDefault("sync.resubscribe", Default.Sync.Resubscribe)
	v.SetDefault("sync.status_port", Default.Sync.StatusPort)
	v.SetDefault("sync.history_db", Default.Sync.HistoryDB)
	v.SetDefault("sync.probe_attempts", Default.Sync.ProbeAttempts)
	v.SetDefault("sync.probe_backoff", Default.Sync.ProbeBackoff)
	v.SetDefault("sync.reconnect_delay", Default.Sync.ReconnectDelay)
	v.SetDefault("sync.close_abandoned", Default.Sync.CloseAbandoned)
	v.SetDefault("sync.ignore", []string{})

	v.SetEnvPrefix("DCACHE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	file := Find(dirs)
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("ini")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = file

	return &cfg, nil
}
