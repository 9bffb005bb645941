package core

import (
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		SecureCookies   bool
	}

	DatabaseConfig struct {
		URL        string // full DSN; Supabase exposes one per project
		Engine     string
		Host       string
		Port       string
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	OpenAIConfig struct {
		APIKey          string
		BaseURL         string
		Timeout         time.Duration
		ModelBase       string
		ModelBoost      string
		ModelTranslate  string
		AutoBoost       bool
		Temperature     float64
		MaxOutputTokens int
		HistoryTurns    int
		MaxRetries      int
		InitialBackoff  time.Duration
	}

	PricingConfig struct {
		InputPerMillion  float64
		OutputPerMillion float64
	}

	PartyConfig struct {
		Code              string
		Seats             int
		DailyMessageLimit int
		SessionSecret     string
		SessionMaxAge     time.Duration
		AdminKey          string
	}

	Config struct {
		AppName      string
		Env          string
		Build        string
		Debug        bool
		RollbarToken string
		Server       ServerConfig
		Database     DatabaseConfig
		OpenAI       OpenAIConfig
		Pricing      PricingConfig
		Party        PartyConfig
	}
)

// envBindings maps config keys to the environment variables used by deployments.
// The first variable that is set wins.
var envBindings = map[string][]string{
	"appName":      {"APP_NAME"},
	"build":        {"BUILD"},
	"debug":        {"DEBUG"},
	"rollbarToken": {"ROLLBAR_TOKEN"},

	"server.host":            {"HOST"},
	"server.address":         {"ADDRESS", "PORT"},
	"server.debugAddress":    {"DEBUG_ADDRESS"},
	"server.shutdownTimeout": {"SHUTDOWN_TIMEOUT"},
	"server.secureCookies":   {"SECURE_COOKIES"},

	"database.url":        {"DATABASE_URL", "SUPABASE_DB_URL"},
	"database.engine":     {"DB_ENGINE"},
	"database.host":       {"DB_HOST"},
	"database.port":       {"DB_PORT"},
	"database.name":       {"DB_NAME"},
	"database.user":       {"DB_USER"},
	"database.password":   {"DB_PASSWORD"},
	"database.disableTLS": {"DB_DISABLE_TLS"},

	"openai.apiKey":          {"OPENAI_API_KEY"},
	"openai.baseURL":         {"OPENAI_BASE_URL"},
	"openai.timeout":         {"OPENAI_TIMEOUT"},
	"openai.modelBase":       {"OPENAI_MODEL"},
	"openai.modelBoost":      {"OPENAI_MODEL_BOOST"},
	"openai.modelTranslate":  {"OPENAI_MODEL_TRANSLATE"},
	"openai.autoBoost":       {"OPENAI_AUTO_BOOST"},
	"openai.temperature":     {"OPENAI_TEMPERATURE"},
	"openai.maxOutputTokens": {"OPENAI_MAX_OUTPUT_TOKENS"},
	"openai.historyTurns":    {"OPENAI_HISTORY_TURNS"},
	"openai.maxRetries":      {"OPENAI_MAX_RETRIES"},
	"openai.initialBackoff":  {"OPENAI_INITIAL_BACKOFF"},

	"pricing.inputPerMillion":  {"GPT5_INPUT_PER_M"},
	"pricing.outputPerMillion": {"GPT5_OUTPUT_PER_M"},

	"party.code":              {"PARTY_CODE"},
	"party.seats":             {"PARTY_SEATS"},
	"party.dailyMessageLimit": {"DAILY_MSG_LIMIT"},
	"party.sessionSecret":     {"PARTY_JWT_SECRET", "SESSION_SECRET"},
	"party.sessionMaxAge":     {"SESSION_MAX_AGE"},
	"party.adminKey":          {"ADMIN_KEY"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appName", "Tutor Party")
	v.SetDefault("build", "dev")
	v.SetDefault("debug", true)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.secureCookies", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.disableTLS", false)

	v.SetDefault("openai.baseURL", "https://api.openai.com/v1")
	v.SetDefault("openai.timeout", 60*time.Second)
	v.SetDefault("openai.modelBase", "gpt-5-mini")
	v.SetDefault("openai.modelBoost", "gpt-5")
	v.SetDefault("openai.autoBoost", false)
	v.SetDefault("openai.temperature", 0.7)
	v.SetDefault("openai.maxOutputTokens", 800)
	v.SetDefault("openai.historyTurns", 12)
	v.SetDefault("openai.maxRetries", 3)
	v.SetDefault("openai.initialBackoff", 500*time.Millisecond)

	v.SetDefault("pricing.inputPerMillion", 1.25)
	v.SetDefault("pricing.outputPerMillion", 10.00)

	v.SetDefault("party.seats", 5)
	v.SetDefault("party.dailyMessageLimit", 100)
	v.SetDefault("party.sessionMaxAge", 30*24*time.Hour)
}

// NewConfig loads the application configuration from defaults, an optional
// config/.env.<env> file and the environment.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	if env != "DEV" {
		v.SetDefault("debug", false)
	}
	for key, vars := range envBindings {
		_ = v.BindEnv(append([]string{key}, vars...)...)
	}
	return fromViper(v, env)
}

func fromViper(v *viper.Viper, env string) *Config {
	conf := &Config{
		AppName:      v.GetString("appName"),
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SecureCookies:   v.GetBool("server.secureCookies"),
		},
		Database: DatabaseConfig{
			URL:        v.GetString("database.url"),
			Engine:     v.GetString("database.engine"),
			Host:       v.GetString("database.host"),
			Port:       v.GetString("database.port"),
			Name:       v.GetString("database.name"),
			User:       v.GetString("database.user"),
			Password:   v.GetString("database.password"),
			DisableTLS: v.GetBool("database.disableTLS"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          v.GetString("openai.apiKey"),
			BaseURL:         strings.TrimRight(v.GetString("openai.baseURL"), "/"),
			Timeout:         v.GetDuration("openai.timeout"),
			ModelBase:       v.GetString("openai.modelBase"),
			ModelBoost:      v.GetString("openai.modelBoost"),
			ModelTranslate:  v.GetString("openai.modelTranslate"),
			AutoBoost:       v.GetBool("openai.autoBoost"),
			Temperature:     v.GetFloat64("openai.temperature"),
			MaxOutputTokens: v.GetInt("openai.maxOutputTokens"),
			HistoryTurns:    v.GetInt("openai.historyTurns"),
			MaxRetries:      v.GetInt("openai.maxRetries"),
			InitialBackoff:  v.GetDuration("openai.initialBackoff"),
		},
		Pricing: PricingConfig{
			InputPerMillion:  v.GetFloat64("pricing.inputPerMillion"),
			OutputPerMillion: v.GetFloat64("pricing.outputPerMillion"),
		},
		Party: PartyConfig{
			Code:              v.GetString("party.code"),
			Seats:             v.GetInt("party.seats"),
			DailyMessageLimit: v.GetInt("party.dailyMessageLimit"),
			SessionSecret:     v.GetString("party.sessionSecret"),
			SessionMaxAge:     v.GetDuration("party.sessionMaxAge"),
			AdminKey:          v.GetString("party.adminKey"),
		},
	}
	if conf.OpenAI.ModelTranslate == "" {
		conf.OpenAI.ModelTranslate = conf.OpenAI.ModelBase
	}
	// secure cookies everywhere but local development
	if !conf.Debug {
		conf.Server.SecureCookies = true
	}
	return conf
}

// Validate reports the first required setting that is missing.
func (conf *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"OPENAI_API_KEY", conf.OpenAI.APIKey},
		{"PARTY_CODE", conf.Party.Code},
		{"PARTY_JWT_SECRET", conf.Party.SessionSecret},
		{"ADMIN_KEY", conf.Party.AdminKey},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return NewConfigurationError(r.key)
		}
	}
	if conf.Database.URL == "" && conf.Database.User == "" {
		return NewConfigurationError("DATABASE_URL")
	}
	return nil
}

// DSN returns the database connection string.
func (db DatabaseConfig) DSN() string {
	if db.URL != "" {
		return db.URL
	}

	sslMode := "require"
	if db.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   db.Engine,
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + db.Port,
		Path:     db.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
