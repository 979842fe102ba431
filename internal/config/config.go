package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Store     Store     `yaml:"store"`
	Ledger    Ledger    `yaml:"ledger"`
	Auth      Auth      `yaml:"auth"`
	Notify    Notify    `yaml:"notify"`
	Reconcile Reconcile `yaml:"reconcile"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Store struct {
	BaseURL         string `yaml:"baseURL"`
	Secret          string `yaml:"secret"`
	TimeoutSeconds  int    `yaml:"timeoutSeconds"`
	CacheTTLSeconds int    `yaml:"cacheTTLSeconds"`
}

type Ledger struct {
	RPCURL                string `yaml:"rpcURL"`
	ContractAddress       string `yaml:"contractAddress"`
	PrivateKey            string `yaml:"privateKey"`
	GasLimit              uint64 `yaml:"gasLimit"`
	ConfirmTimeoutSeconds int    `yaml:"confirmTimeoutSeconds"`
}

type Auth struct {
	LowBadgeID       string   `yaml:"lowBadgeID"`
	LowPasswordHash  string   `yaml:"lowPasswordHash"`
	HighBadgeID      string   `yaml:"highBadgeID"`
	HighPasswordHash string   `yaml:"highPasswordHash"`
	AdminEmail       string   `yaml:"adminEmail"`
	JWTSecret        string   `yaml:"jwtSecret"`
	TokenTTLMinutes  int      `yaml:"tokenTTLMinutes"`
	OTPTTLSeconds    int      `yaml:"otpTTLSeconds"`
	SensitiveFields  []string `yaml:"sensitiveFields"`
}

type Notify struct {
	SMTPHost     string `yaml:"smtpHost"`
	SMTPPort     int    `yaml:"smtpPort"`
	SMTPUser     string `yaml:"smtpUser"`
	SMTPPassword string `yaml:"smtpPassword"`
	From         string `yaml:"from"`
}

type Reconcile struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"intervalSeconds"`
}

// Load reads a YAML config file, expanding ${VAR} references first so that
// secrets come from the environment rather than the file itself.
func Load(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(buf))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":3000"
	}
	if c.Store.TimeoutSeconds <= 0 {
		c.Store.TimeoutSeconds = 10
	}
	if c.Store.CacheTTLSeconds <= 0 {
		c.Store.CacheTTLSeconds = 5
	}
	if c.Ledger.GasLimit == 0 {
		c.Ledger.GasLimit = 500000
	}
	if c.Ledger.ConfirmTimeoutSeconds <= 0 {
		c.Ledger.ConfirmTimeoutSeconds = 60
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		c.Auth.TokenTTLMinutes = 60
	}
	if c.Auth.OTPTTLSeconds <= 0 {
		c.Auth.OTPTTLSeconds = 300
	}
	if c.Reconcile.IntervalSeconds <= 0 {
		c.Reconcile.IntervalSeconds = 60
	}
}

func (c *Config) validate() error {
	if c.Store.BaseURL == "" {
		return fmt.Errorf("store.baseURL is required")
	}
	if c.Ledger.RPCURL == "" {
		return fmt.Errorf("ledger.rpcURL is required")
	}
	if c.Ledger.ContractAddress == "" {
		return fmt.Errorf("ledger.contractAddress is required")
	}
	if c.Ledger.PrivateKey == "" {
		return fmt.Errorf("ledger.privateKey is required (inject via environment)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret is required (inject via environment)")
	}
	return nil
}
