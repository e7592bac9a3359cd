// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Planner  PlannerConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConcurrentTx int
}

type AppConfig struct {
	UploadDir string
	ExportDir string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ScheduleTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
	DemandFolderID  string
	SyncSchedule    string
}

// PlannerConfig carries the order-form defaults applied when a request
// does not override them.
type PlannerConfig struct {
	LeadTimeDays     int
	ShippingTimeDays int
	SafetyStockDays  int
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "reorder")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
		viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
		viper.SetDefault("DB_MAX_CONCURRENT_TX", 10)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_EXPORT_DIR", "./data/schedules")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SCHEDULE_TTL_SECONDS", 300)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_BUCKET", "reorder-schedules")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_SYNC_SCHEDULE", "0 6 * * *")
		viper.SetDefault("PLANNER_LEAD_TIME_DAYS", 45)
		viper.SetDefault("PLANNER_SHIPPING_TIME_DAYS", 45)
		viper.SetDefault("PLANNER_SAFETY_STOCK_DAYS", 10)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure upload and export directories exist
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_EXPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:            viper.GetString("DB_HOST"),
				Port:            viper.GetString("DB_PORT"),
				User:            viper.GetString("DB_USER"),
				Password:        viper.GetString("DB_PASSWORD"),
				DBName:          viper.GetString("DB_NAME"),
				SSLMode:         viper.GetString("DB_SSLMODE"),
				MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
				MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
				MaxConcurrentTx: viper.GetInt("DB_MAX_CONCURRENT_TX"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				ExportDir: viper.GetString("APP_EXPORT_DIR"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ScheduleTTLSeconds: viper.GetInt("CACHE_SCHEDULE_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				DemandFolderID:  viper.GetString("DRIVE_DEMAND_FOLDER_ID"),
				SyncSchedule:    viper.GetString("DRIVE_SYNC_SCHEDULE"),
			},
			Planner: PlannerConfig{
				LeadTimeDays:     viper.GetInt("PLANNER_LEAD_TIME_DAYS"),
				ShippingTimeDays: viper.GetInt("PLANNER_SHIPPING_TIME_DAYS"),
				SafetyStockDays:  viper.GetInt("PLANNER_SAFETY_STOCK_DAYS"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
