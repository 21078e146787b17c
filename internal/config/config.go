package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		TelegramAPIToken string   `env:"TOKEN,required"`
		AdminIDs         []string `env:"ADMIN_IDS"`
		AllowedHandles   []string `env:"ALLOWED_HANDLES"`
		DefaultLanguage  string   `env:"LANG,default=en"`
		LogLevel         int      `env:"LOG_LEVEL,default=4"`
		ListenAddr       string   `env:"LISTEN_ADDR,default=:8080"`
		MetricsAddr      string   `env:"METRICS_ADDR,default=:2112"`
		RedisURL         string   `env:"REDIS_URL,default=redis://localhost:6379/0"`
		DBPath           string   `env:"DB_PATH,default=voxbot.db"`
		Moderation       Moderation
		Auth             Auth
	}

	Moderation struct {
		WarningTTL     time.Duration `env:"MOD_WARNING_TTL,default=720h"`
		BanBaseMinutes int           `env:"MOD_BAN_BASE_MINUTES,default=30"`
		BanStepMinutes int           `env:"MOD_BAN_STEP_MINUTES,default=30"`
	}

	Auth struct {
		TokenTTL         time.Duration `env:"AUTH_TOKEN_TTL,default=5m"`
		SessionTTL       time.Duration `env:"AUTH_SESSION_TTL,default=24h"`
		SweepInterval    time.Duration `env:"AUTH_SWEEP_INTERVAL,default=1h"`
		ExpiredRetention time.Duration `env:"AUTH_EXPIRED_RETENTION,default=24h"`
	}
)

var (
	once         sync.Once
	globalConfig = &Config{}
	globalErr    error
)

func Load() (Config, error) {
	once.Do(func() {
		cfg := &Config{}
		envcfg := envconfig.Config{
			Lookuper: envconfig.PrefixLookuper("VB_", envconfig.OsLookuper()),
			Target:   cfg,
		}
		if err := envconfig.ProcessWith(context.Background(), &envcfg); err != nil {
			globalErr = fmt.Errorf("process env config: %w", err)
			return
		}
		log.Traceln("loaded config")
		globalConfig = cfg
	})
	return *globalConfig, globalErr
}

func Get() Config {
	cfg, err := Load()
	if err != nil {
		log.WithField("error", err.Error()).Error("cant load config")
	}
	return cfg
}
