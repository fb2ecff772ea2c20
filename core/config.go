package core

import (
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName              string
		Env                  string // DEV (default), TEST, QA, PROD
		Build                string
		Debug                bool
		TestMode             bool
		SecretKey            string
		FrontendBaseURL      string
		DefaultFromName      string
		DefaultFromAddr      string
		SendgridApiKey       string
		RollbarToken         string
		OTPTimeout           time.Duration
		PasswordResetTimeout time.Duration

		Server   ServerConfig
		Database DatabaseConfig
		Redis    RedisConfig
	}

	ServerConfig struct {
		Host               string
		Port               string
		JWTExpirationDelta time.Duration
		ShutdownTimeout    time.Duration
		QuizSweepInterval  time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	RedisConfig struct {
		Addr     string
		Password string
		DB       int
	}
)

func (c ServerConfig) Address() string   { return c.Host + ":" + c.Port }
func (c DatabaseConfig) Address() string { return c.Host + ":" + c.Port }

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

// NewConfig loads the app configuration from the environment,
// with an optional `config/.env.<env>` file taking lower precedence.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	v.SetDefault("debug", true)
	v.SetDefault("appName", "Quizdesk")
	v.SetDefault("secretKey", "x1#qz&2l7dm+$8y)4v@e5r_0t(u3bk!9w6s-cfgh")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromName", "Quizdesk")
	v.SetDefault("defaultFromAddr", "noreply@localhost")
	v.SetDefault("otpTimeout", 10*time.Minute)
	v.SetDefault("passwordResetTimeout", 30*time.Minute)

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.quizSweepInterval", time.Minute)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.name", "quizdesk")
	v.SetDefault("database.user", "quizdesk")
	v.SetDefault("database.password", "quizdesk")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	_ = godotenv.Load(filepath.Join("config", ".env."+strings.ToLower(env)))

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		AppName:              v.GetString("appName"),
		Env:                  env,
		Build:                v.GetString("build"),
		Debug:                v.GetBool("debug"),
		TestMode:             env == "TEST",
		SecretKey:            v.GetString("secretKey"),
		FrontendBaseURL:      v.GetString("frontendBaseURL"),
		DefaultFromName:      v.GetString("defaultFromName"),
		DefaultFromAddr:      v.GetString("defaultFromAddr"),
		SendgridApiKey:       v.GetString("sendgridApiKey"),
		RollbarToken:         v.GetString("rollbarToken"),
		OTPTimeout:           v.GetDuration("otpTimeout"),
		PasswordResetTimeout: v.GetDuration("passwordResetTimeout"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Port:               v.GetString("server.port"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			QuizSweepInterval:  v.GetDuration("server.quizSweepInterval"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}
}
