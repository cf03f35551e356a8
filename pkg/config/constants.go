package config

// EnvPrefix is passed to envconfig; variables carry it explicitly in their tags.
const EnvPrefix = "PEPTIDEHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvDBDSN  = "PEPTIDEHUB_DB_DSN"
	EnvDBHost = "PEPTIDEHUB_DB_HOST"
	EnvDBUser = "PEPTIDEHUB_DB_USER"
	EnvDBName = "PEPTIDEHUB_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
