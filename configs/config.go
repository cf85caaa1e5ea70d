package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// SeedConfig is one registry entry as it appears in config or a seed file.
type SeedConfig struct {
	Service     string `koanf:"service" yaml:"service"`
	Key         string `koanf:"key" yaml:"key"`
	Provider    string `koanf:"provider" yaml:"provider"`
	Description string `koanf:"description" yaml:"description"`
}

// ClientConfig is one API client allowed to call the key service.
type ClientConfig struct {
	ID      string   `koanf:"id"`
	Secret  string   `koanf:"secret"`
	Perms   []string `koanf:"perms"`
	Enabled bool     `koanf:"enabled"`
}

// CryptoConfig carries the sealing material. PEM fields accept inline PEM or
// a file path.
type CryptoConfig struct {
	KeyID     string `koanf:"key_id"`
	AES256B64 string `koanf:"aes256_b64url"`
	RSAPubPEM string `koanf:"rsa_pub_pem"`
	RSAPriPEM string `koanf:"rsa_pri_pem"`
}

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	// Registry seed source. "static" uses the built-in demo records; "inline"
	// reads registry.seeds; "file" reads a YAML seed file; "sealed" reads an
	// encrypted envelope produced by keyseal; "vault" reads a KV v2 secret.
	Registry struct {
		Source string       `koanf:"source"`
		File   string       `koanf:"file"`
		Seeds  []SeedConfig `koanf:"seeds"`
		Vault  struct {
			Addr  string `koanf:"addr"`
			Token string `koanf:"token"`
			Mount string `koanf:"mount"`
			Path  string `koanf:"path"`
		} `koanf:"vault"`
	} `koanf:"registry"`

	Security struct {
		JWTSecret     string         `koanf:"jwt_secret"`
		Issuer        string         `koanf:"issuer"`
		Audience      string         `koanf:"audience"`
		TokenTTL      time.Duration  `koanf:"token_ttl"`
		SealResponses bool           `koanf:"seal_responses"`
		Clients       []ClientConfig `koanf:"clients"`
	} `koanf:"security"`

	Crypto CryptoConfig `koanf:"crypto"`

	RateLimit struct {
		Enabled           bool `koanf:"enabled"`
		RequestsPerMinute int  `koanf:"requests_per_minute"`
		Burst             int  `koanf:"burst"`
	} `koanf:"rate_limit"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Rabbit struct {
		URL        string `koanf:"url"`
		Exchange   string `koanf:"exchange"`
		RoutingKey string `koanf:"routing_key"`
		Queue      string `koanf:"queue"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers []string `koanf:"brokers"`
		Topic   string   `koanf:"topic"`
		GroupID string   `koanf:"group_id"`
	} `koanf:"kafka"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix KEYSVC_, nested with __)
	// e.g. KEYSVC_REGISTRY__VAULT__TOKEN, KEYSVC_SECURITY__JWT_SECRET
	if err := k.Load(env.Provider("KEYSVC_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "KEYSVC_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	switch c.Registry.Source {
	case "", "static", "inline", "file", "sealed", "vault":
	default:
		return fmt.Errorf("registry.source %q unknown (static|inline|file|sealed|vault)", c.Registry.Source)
	}
	if c.Registry.Source == "file" || c.Registry.Source == "sealed" {
		if c.Registry.File == "" {
			return fmt.Errorf("registry.file required for source %q", c.Registry.Source)
		}
	}
	if c.Registry.Source == "vault" && c.Registry.Vault.Addr == "" {
		return fmt.Errorf("registry.vault.addr required for source vault")
	}
	return nil
}
