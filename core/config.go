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
	Config struct {
		AppName      string
		Build        string
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		WorkDir      string
		RollbarToken string

		Server    ServerConfig
		Database  DatabaseConfig
		Selection SelectionConfig
		Scheduler SchedulerConfig
	}

	ServerConfig struct {
		Host            string
		DebugHost       string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		JWTSecret       string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SelectionConfig tunes the supporter selection.
	SelectionConfig struct {
		Tolerance      float64 // fraction of the target reach, eg. 0.1 for ±10%
		MinTargetReach int
		MinFollowers   int
		MaxSupporters  int
		PoolLimit      int
		FallbackLimit  int
		SearchLimit    int
	}

	// SchedulerConfig points at the serverless function that generates a repost schedule.
	SchedulerConfig struct {
		FunctionURL string
		APIKey      string
		Timeout     time.Duration
	}
)

func (dbc DatabaseConfig) Address() string {
	if dbc.Port == "" {
		return dbc.Host
	}
	return dbc.Host + ":" + dbc.Port
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "RepostNet")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("rollbarToken", "")

	conf.SetDefault("serverHost", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("serverDisableReqLogs", false)
	conf.SetDefault("jwtSecret", "k8#vq2-(zr!m1o%x6j&h0t$gp+w4y^ub3n*ec9)dfl7s5a")

	conf.SetDefault("dbEngine", "postgres")
	conf.SetDefault("dbHost", "localhost")
	conf.SetDefault("dbPort", "5432")
	conf.SetDefault("dbName", "repostnet")
	conf.SetDefault("dbUser", "repostnet")
	conf.SetDefault("dbPassword", "repostnet")
	conf.SetDefault("dbAdminUser", "postgres")
	conf.SetDefault("dbAdminPassword", "postgres")
	conf.SetDefault("dbDisableTLS", true)

	conf.SetDefault("selectionTolerance", 0.1)
	conf.SetDefault("selectionMinTargetReach", 1000)
	conf.SetDefault("selectionMinFollowers", 0)
	conf.SetDefault("selectionMaxSupporters", 10)
	conf.SetDefault("selectionPoolLimit", 200)
	conf.SetDefault("selectionFallbackLimit", 50)
	conf.SetDefault("selectionSearchLimit", 20)

	conf.SetDefault("schedulerFunctionUrl", "")
	conf.SetDefault("schedulerApiKey", "")
	conf.SetDefault("schedulerTimeout", 10*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("dbName", "repostnet_test")
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Build:        conf.GetString("build"),
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		WorkDir:      wd,
		RollbarToken: conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			DebugHost:       conf.GetString("serverDebugHost"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
			DisableReqLogs:  conf.GetBool("serverDisableReqLogs"),
			JWTSecret:       conf.GetString("jwtSecret"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("dbEngine"),
			Host:          conf.GetString("dbHost"),
			Port:          conf.GetString("dbPort"),
			Name:          conf.GetString("dbName"),
			User:          conf.GetString("dbUser"),
			Password:      conf.GetString("dbPassword"),
			AdminUser:     conf.GetString("dbAdminUser"),
			AdminPassword: conf.GetString("dbAdminPassword"),
			DisableTLS:    conf.GetBool("dbDisableTLS"),
		},
		Selection: SelectionConfig{
			Tolerance:      conf.GetFloat64("selectionTolerance"),
			MinTargetReach: conf.GetInt("selectionMinTargetReach"),
			MinFollowers:   conf.GetInt("selectionMinFollowers"),
			MaxSupporters:  conf.GetInt("selectionMaxSupporters"),
			PoolLimit:      conf.GetInt("selectionPoolLimit"),
			FallbackLimit:  conf.GetInt("selectionFallbackLimit"),
			SearchLimit:    conf.GetInt("selectionSearchLimit"),
		},
		Scheduler: SchedulerConfig{
			FunctionURL: conf.GetString("schedulerFunctionUrl"),
			APIKey:      conf.GetString("schedulerApiKey"),
			Timeout:     conf.GetDuration("schedulerTimeout"),
		},
	}
}

// DefaultSelectionConfig returns the selection settings used when none are configured.
func DefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		Tolerance:      0.1,
		MinTargetReach: 1000,
		MaxSupporters:  10,
		PoolLimit:      200,
		FallbackLimit:  50,
		SearchLimit:    20,
	}
}
