package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Identity     IdentityConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	Media        MediaConfig
	Cart         CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PEPTIDEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"PEPTIDEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PEPTIDEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PEPTIDEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PEPTIDEHUB_DB_DSN"`
	Driver string `envconfig:"PEPTIDEHUB_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"PEPTIDEHUB_DB_HOST"`
	Port     int    `envconfig:"PEPTIDEHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"PEPTIDEHUB_DB_USER"`
	Password string `envconfig:"PEPTIDEHUB_DB_PASSWORD"`
	Name     string `envconfig:"PEPTIDEHUB_DB_NAME"`
	SSLMode  string `envconfig:"PEPTIDEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PEPTIDEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PEPTIDEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PEPTIDEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PEPTIDEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets SQLite (local runs).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PEPTIDEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PEPTIDEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"PEPTIDEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"PEPTIDEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PEPTIDEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PEPTIDEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PEPTIDEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PEPTIDEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PEPTIDEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// IdentityConfig describes the tokens minted by the external identity provider.
type IdentityConfig struct {
	JWTSecret string `envconfig:"PEPTIDEHUB_IDENTITY_JWT_SECRET" required:"true"`
	Issuer    string `envconfig:"PEPTIDEHUB_IDENTITY_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PEPTIDEHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PEPTIDEHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PEPTIDEHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PEPTIDEHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName string `envconfig:"PEPTIDEHUB_GCS_BUCKET_NAME" required:"true"`
}

type MediaConfig struct {
	MaxUploadMB int `envconfig:"PEPTIDEHUB_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes converts the configured limit to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

type CartConfig struct {
	SessionTTL time.Duration `envconfig:"PEPTIDEHUB_CART_SESSION_TTL" default:"24h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" || db.IsSQLite() {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
