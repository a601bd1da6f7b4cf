package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	APIConfig struct {
		BaseURL   string
		Timeout   time.Duration
		UserAgent string
	}

	SessionConfig struct {
		Path string
	}

	SandboxConfig struct {
		Addr               string
		ShutdownTimeout    time.Duration
		SecretKey          string
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
		SeedPassword       string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		API          APIConfig
		Session      SessionConfig
		Sandbox      SandboxConfig
	}
)

func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("appName", "Placement")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("api.baseURL", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.userAgent", "placement-cli")
	v.SetDefault("session.path", defaultSessionPath())
	v.SetDefault("sandbox.addr", ":8000")
	v.SetDefault("sandbox.shutdownTimeout", 5*time.Second)
	v.SetDefault("sandbox.secretKey", "x9v$k2-q7!mz0@r4w(lt8&np3#hc5e^j")
	v.SetDefault("sandbox.jwtExpirationDelta", 24*time.Hour)
	v.SetDefault("sandbox.disableReqLogs", false)
	v.SetDefault("sandbox.seedPassword", "placement")
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		API: APIConfig{
			BaseURL:   strings.TrimRight(v.GetString("api.baseURL"), "/"),
			Timeout:   v.GetDuration("api.timeout"),
			UserAgent: v.GetString("api.userAgent"),
		},
		Session: SessionConfig{
			Path: v.GetString("session.path"),
		},
		Sandbox: SandboxConfig{
			Addr:               v.GetString("sandbox.addr"),
			ShutdownTimeout:    v.GetDuration("sandbox.shutdownTimeout"),
			SecretKey:          v.GetString("sandbox.secretKey"),
			JWTExpirationDelta: v.GetDuration("sandbox.jwtExpirationDelta"),
			DisableReqLogs:     v.GetBool("sandbox.disableReqLogs"),
			SeedPassword:       v.GetString("sandbox.seedPassword"),
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "placement", "session.json")
}
