package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort string

	SessionSecret string

	// Ledger observation. EVMRPCURL may be empty, in which case receipt
	// confirmation endpoints are disabled and only caller-driven sync is
	// available.
	EVMRPCURL           string
	ContractAddress     string
	LedgerConfirmations uint64

	// Content-addressed storage backend: "bolt" (local file) or "r2".
	ContentStoreBackend string
	ContentStorePath    string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	confirmations, err := strconv.ParseUint(os.Getenv("LEDGER_CONFIRMATIONS"), 10, 64)
	if err != nil {
		confirmations = 1
	}

	backend := os.Getenv("CONTENT_STORE_BACKEND")
	if backend == "" {
		backend = "bolt"
	}

	storePath := os.Getenv("CONTENT_STORE_PATH")
	if storePath == "" {
		storePath = "content.db"
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  sslMode,

		RedisURL: redisURL,

		ServerPort: serverPort,

		SessionSecret: os.Getenv("SESSION_SECRET"),

		EVMRPCURL:           os.Getenv("EVM_RPC_URL"),
		ContractAddress:     os.Getenv("CONTRACT_ADDRESS"),
		LedgerConfirmations: confirmations,

		ContentStoreBackend: backend,
		ContentStorePath:    storePath,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
	}, nil
}
