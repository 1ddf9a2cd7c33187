package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort    int
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBNameTest string
	RedisHost  string
	RedisPort  int
	JWTSecret  string
	TokenTTL   time.Duration
}

func LoadConfig() Config {
	// Load the .env file if there is one
	if err := godotenv.Load(); err != nil {
		// Only log when not in test mode
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	appPort, err := strconv.Atoi(os.Getenv("APP_PORT"))
	if err != nil {
		appPort = 3004
	}

	dbPort, err := strconv.Atoi(os.Getenv("DB_PORT"))
	if err != nil {
		dbPort = 5432
	}

	redisPort, err := strconv.Atoi(os.Getenv("REDIS_PORT"))
	if err != nil {
		redisPort = 6379
	}

	tokenTTLHours, err := strconv.Atoi(os.Getenv("TOKEN_TTL_HOURS"))
	if err != nil {
		tokenTTLHours = 24
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		// Development fallback, override in production
		secret = "secret"
	}

	return Config{
		AppPort:    appPort,
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBNameTest: os.Getenv("DB_NAME_TEST"),
		RedisHost:  os.Getenv("REDIS_HOST"),
		RedisPort:  redisPort,
		JWTSecret:  secret,
		TokenTTL:   time.Duration(tokenTTLHours) * time.Hour,
	}
}
