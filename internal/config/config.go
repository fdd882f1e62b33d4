package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPAddr string
	GRPCAddr string

	RedisAddr string
	RedisPass string
	RedisDB   int

	KafkaEnabled bool
	KafkaBrokers []string // list of broker addresses, e.g. ["localhost:9092","localhost:9093"]
	KafkaTopic   string

	MinIO MinIOConfig
	JWT   JWTConfig
	Chain ChainConfig

	VerificationDelay time.Duration
}

type MinIOConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

type ChainConfig struct {
	ProviderURL      string // wallet provider JSON-RPC endpoint; empty means no wallet available
	RPCURL           string // public chain RPC used for diagnostics and health
	TokenAddress     string
	RepairBeforeSend bool
	RepairDelay      time.Duration
	ReceiptInterval  time.Duration
	ReceiptAttempts  int
	MintDelay        time.Duration
	GasBufferPercent int
	WatcherInterval  time.Duration
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr: getEnv("GRPC_ADDR", ":8081"),

		RedisAddr: getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		KafkaEnabled: getEnvAsBool("KAFKA_ENABLED", true),
		KafkaBrokers: parseCSVEnv("KAFKA_BROKERS", "kafka:9092"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "solarcredits.transactions"),

		MinIO: MinIOConfig{
			Enabled:   getEnvAsBool("MINIO_ENABLED", true),
			Endpoint:  getEnv("MINIO_ENDPOINT", "minio:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "electricity-bills"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},

		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", ""),
			Audience: getEnv("JWT_AUDIENCE", "authenticated"),
		},

		Chain: ChainConfig{
			ProviderURL:      getEnv("WALLET_PROVIDER_URL", ""),
			RPCURL:           getEnv("ARBITRUM_SEPOLIA_RPC_URL", "https://arbitrum-sepolia.drpc.org"),
			TokenAddress:     getEnv("SRC_TOKEN_ADDRESS", "0x00DEfe6c8fE01610406Aa58538952D5b7d92c56e"),
			RepairBeforeSend: getEnvAsBool("WALLET_REPAIR_BEFORE_SEND", true),
			RepairDelay:      getEnvAsDuration("WALLET_REPAIR_DELAY", 500*time.Millisecond),
			ReceiptInterval:  getEnvAsDuration("RECEIPT_POLL_INTERVAL", 2*time.Second),
			ReceiptAttempts:  getEnvAsInt("RECEIPT_POLL_ATTEMPTS", 60),
			MintDelay:        getEnvAsDuration("MINT_DELAY", 2*time.Second),
			GasBufferPercent: getEnvAsInt("GAS_BUFFER_PERCENT", 20),
			WatcherInterval:  getEnvAsDuration("WALLET_WATCH_INTERVAL", 3*time.Second),
		},

		VerificationDelay: getEnvAsDuration("VERIFICATION_DELAY", 4*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseCSVEnv(key, fallback string) []string {
	val := getEnv(key, fallback)
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
