package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Admin    AdminConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	BaseURL   string // public origin used for checkout redirect targets
	CORSHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  int // in minutes
	RefreshExpiry int // in days
}

type StripeConfig struct {
	SecretKey string
}

type AdminConfig struct {
	// Email of the single designated administrator account. A user
	// registering with this email is granted the admin role.
	Email string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("SERVER_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ACCESS_EXPIRY", 15)
	viper.SetDefault("JWT_REFRESH_EXPIRY", 7)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:      viper.GetString("SERVER_PORT"),
			Env:       viper.GetString("SERVER_ENV"),
			BaseURL:   viper.GetString("SERVER_BASE_URL"),
			CORSHosts: viper.GetStringSlice("SERVER_CORS_HOSTS"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  viper.GetInt("JWT_ACCESS_EXPIRY"),
			RefreshExpiry: viper.GetInt("JWT_REFRESH_EXPIRY"),
		},
		Stripe: StripeConfig{
			SecretKey: viper.GetString("STRIPE_SECRET_KEY"),
		},
		Admin: AdminConfig{
			Email: viper.GetString("ADMIN_EMAIL"),
		},
	}
}
