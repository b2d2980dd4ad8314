package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		// .env is optional, real environment variables win
		_ = godotenv.Load()

		viper.AutomaticEnv()

		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "LANG")
		viper.BindEnv("metrics_port", "METRICS_PORT")
		viper.BindEnv("api_port", "API_PORT")
		viper.BindEnv("database_driver", "DATABASE_DRIVER")
		viper.BindEnv("database_dsn", "DATABASE_DSN")
		viper.BindEnv("store_slot", "STORE_SLOT")
		viper.BindEnv("oracle_url", "ORACLE_URL")
		viper.BindEnv("oracle_timeout", "ORACLE_TIMEOUT")
		viper.BindEnv("check_interval", "CHECK_INTERVAL")
		viper.BindEnv("check_workers", "CHECK_WORKERS")
		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("telegram_chat_id", "TELEGRAM_CHAT_ID")

		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("metrics_port", 9090)
		viper.SetDefault("api_port", 8080)
		viper.SetDefault("database_driver", "sqlite")
		viper.SetDefault("database_dsn", "data/tracker.db")
		viper.SetDefault("store_slot", "trackedProducts")
		viper.SetDefault("oracle_url", "http://localhost:8000")
		viper.SetDefault("oracle_timeout", 10*time.Second)
		viper.SetDefault("check_interval", time.Hour)
		viper.SetDefault("check_workers", 4)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetInt64(key string) int64 {
	InitConfig()
	return viper.GetInt64(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
