// Package config carga la configuración del servicio desde variables de
// entorno. Un .env en el directorio actual se aplica primero si existe.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"idhealth/internal/adapters/model"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendSolid    = "solid"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"

	CacheMemory = "memory"
	CacheRedis  = "redis"

	AuthDev = "dev"
	AuthJWT = "jwt"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	AppName   string `env:"APP_NAME"   envDefault:"idhealth"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Auth    AuthConfig
	Storage StorageConfig
	Cache   CacheConfig
	Model   ModelConfig
	Tracing TracingConfig

	// ChartRefresh es el período de `podctl chart watch`.
	ChartRefresh time.Duration `env:"IDHEALTH_CHART_REFRESH" envDefault:"60s"`
}

type AuthConfig struct {
	// Mode "dev" acepta X-Debug-User-ID sin verificar nada.
	Mode      string        `env:"IDHEALTH_AUTH_MODE"      envDefault:"dev"`
	JWTSecret string        `env:"IDHEALTH_JWT_SECRET"`
	PublicKey string        `env:"IDHEALTH_JWT_PUBLIC_KEY"`
	Issuer    string        `env:"IDHEALTH_JWT_ISSUER"`
	Audience  string        `env:"IDHEALTH_JWT_AUDIENCE"`
	Leeway    time.Duration `env:"IDHEALTH_JWT_LEEWAY"     envDefault:"30s"`
}

type StorageConfig struct {
	Backend string        `env:"IDHEALTH_STORAGE_BACKEND" envDefault:"solid"`
	Timeout time.Duration `env:"IDHEALTH_POD_TIMEOUT"     envDefault:"10s"`

	// Override reemplaza el pim:storage leído del perfil.
	Override string `env:"IDHEALTH_STORAGE_OVERRIDE"`

	DSN       string `env:"IDHEALTH_DB_DSN"`
	LegacyDSN string `env:"DB_DSN"`

	// DoctorPodHosts son los hosts (host[:puerto]) de pods que un doctor
	// puede leer. Vacío deshabilita la lectura por doctores.
	DoctorPodHosts []string `env:"IDHEALTH_DOCTOR_POD_HOSTS" envSeparator:","`

	// DevProfiles se siembran al arrancar, como "rol=WebID".
	DevProfiles []string `env:"IDHEALTH_DEV_PROFILES" envSeparator:","`
}

type CacheConfig struct {
	Backend       string        `env:"IDHEALTH_PROFILE_CACHE" envDefault:"memory"`
	SessionTTL    time.Duration `env:"IDHEALTH_SESSION_TTL"   envDefault:"8h"`
	RedisAddr     string        `env:"IDHEALTH_REDIS_ADDR"    envDefault:"localhost:6379"`
	RedisPassword string        `env:"IDHEALTH_REDIS_PASSWORD"`
	RedisDB       int           `env:"IDHEALTH_REDIS_DB"      envDefault:"0"`
}

type ModelConfig struct {
	PredictURL string        `env:"IDHEALTH_PREDICT_URL"     envDefault:"http://localhost:5001"`
	TrainURL   string        `env:"IDHEALTH_TRAIN_URL"       envDefault:"http://localhost:5000"`
	APIKey     string        `env:"IDHEALTH_MODEL_API_KEY"`
	Timeout    time.Duration `env:"IDHEALTH_MODEL_TIMEOUT"   envDefault:"15s"`
}

type TracingConfig struct {
	Enabled  bool   `env:"IDHEALTH_OTEL_ENABLED"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load aplica .env (si existe) y parsea el entorno del proceso.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// FromMap parsea solo las variables dadas.
func FromMap(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if strings.TrimSpace(c.Storage.DSN) == "" {
		c.Storage.DSN = strings.TrimSpace(c.Storage.LegacyDSN)
	}
	if o := strings.TrimSpace(c.Storage.Override); o != "" && !strings.HasSuffix(o, "/") {
		c.Storage.Override = o + "/"
	}
	hosts := make([]string, 0, len(c.Storage.DoctorPodHosts))
	for _, h := range c.Storage.DoctorPodHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	c.Storage.DoctorPodHosts = hosts
}

// Validate junta todos los problemas en un solo error.
func (c Config) Validate() error {
	var errs []error

	switch c.Auth.Mode {
	case AuthDev:
	case AuthJWT:
		if strings.TrimSpace(c.Auth.JWTSecret) == "" && strings.TrimSpace(c.Auth.PublicKey) == "" {
			errs = append(errs, errors.New("IDHEALTH_JWT_SECRET or IDHEALTH_JWT_PUBLIC_KEY is required in jwt mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDHEALTH_AUTH_MODE must be dev or jwt, got %q", c.Auth.Mode))
	}

	switch c.Storage.Backend {
	case BackendSolid, BackendMemory:
	case BackendPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("IDHEALTH_DB_DSN is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDHEALTH_STORAGE_BACKEND must be solid, postgres or memory, got %q", c.Storage.Backend))
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			errs = append(errs, errors.New("IDHEALTH_REDIS_ADDR is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDHEALTH_PROFILE_CACHE must be memory or redis, got %q", c.Cache.Backend))
	}

	for _, h := range c.Storage.DoctorPodHosts {
		if strings.ContainsAny(h, "/@?#") {
			errs = append(errs, fmt.Errorf("IDHEALTH_DOCTOR_POD_HOSTS entries must be host[:port], got %q", h))
		}
	}

	for _, raw := range c.Storage.DevProfiles {
		if _, err := parseProfileSeed(raw); err != nil {
			errs = append(errs, err)
		}
	}

	if c.Cache.SessionTTL <= 0 {
		errs = append(errs, errors.New("IDHEALTH_SESSION_TTL must be positive"))
	}
	if c.ChartRefresh <= 0 {
		errs = append(errs, errors.New("IDHEALTH_CHART_REFRESH must be positive"))
	}

	for name, raw := range map[string]string{
		"IDHEALTH_PREDICT_URL":      c.Model.PredictURL,
		"IDHEALTH_TRAIN_URL":        c.Model.TrainURL,
		"IDHEALTH_STORAGE_OVERRIDE": c.Storage.Override,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}

	return errors.Join(errs...)
}

// ProfileSeed es un perfil a sembrar en el pod al arrancar.
type ProfileSeed struct {
	Role  string
	WebID string
}

// ProfileSeeds devuelve IDHEALTH_DEV_PROFILES ya validado.
func (c Config) ProfileSeeds() []ProfileSeed {
	out := make([]ProfileSeed, 0, len(c.Storage.DevProfiles))
	for _, raw := range c.Storage.DevProfiles {
		if s, err := parseProfileSeed(raw); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func parseProfileSeed(raw string) (ProfileSeed, error) {
	role, webID, ok := strings.Cut(strings.TrimSpace(raw), "=")
	role = strings.ToLower(strings.TrimSpace(role))
	webID = strings.TrimSpace(webID)
	if !ok || (role != "patient" && role != "doctor") {
		return ProfileSeed{}, fmt.Errorf("IDHEALTH_DEV_PROFILES entries must be patient=<webid> or doctor=<webid>, got %q", raw)
	}
	if u, err := url.Parse(webID); err != nil || u.Scheme == "" || u.Host == "" {
		return ProfileSeed{}, fmt.Errorf("IDHEALTH_DEV_PROFILES webid must be an absolute URL, got %q", webID)
	}
	return ProfileSeed{Role: role, WebID: webID}, nil
}

// Addr es la dirección de escucha del servidor HTTP.
func (c Config) Addr() string {
	p := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if p == "" {
		p = "8080"
	}
	return ":" + p
}

func (c Config) ModelClientConfig() model.Config {
	return model.Config{
		PredictURL: c.Model.PredictURL,
		TrainURL:   c.Model.TrainURL,
		APIKey:     c.Model.APIKey,
		Timeout:    c.Model.Timeout,
	}
}

// Masked oculta un secreto para mostrarlo en logs o en la CLI.
func Masked(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
