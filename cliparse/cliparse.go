package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	JWTSecret    string

	// Chain access. RPCURL and ContractAddress enable reads; the key
	// pair additionally enables transaction submission.
	RPCURL          string
	ContractAddress string
	ChainID         int64
	PrivateKey      string
	AccountAddress  string

	// Optional infrastructure
	RedisURL     string
	KafkaBrokers string
	KafkaTopic   string

	// Result freshness windows
	DBResultTTL    time.Duration
	ChainResultTTL time.Duration
}

// ParseFlags validates flags, falling back to environment variables.
// A .env file in the working directory is loaded first, if present.
func ParseFlags(args []string) (Config, error) {
	// Ignore the error: a missing .env is the normal case outside dev
	_ = godotenv.Load()

	var cfg Config
	var dbTTLSecs, chainTTLSecs int

	fs := flag.NewFlagSet("votechain", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Chain config
	fs.StringVar(&cfg.RPCURL, "rpc", "", "Ethereum RPC URL")
	fs.StringVar(&cfg.ContractAddress, "contract", "", "Voting contract address")
	fs.Int64Var(&cfg.ChainID, "chain-id", 0, "Chain ID (0 = ask the node)")

	// Result TTLs
	fs.IntVar(&dbTTLSecs, "db-ttl", 0, "Database result TTL in seconds")
	fs.IntVar(&chainTTLSecs, "chain-ttl", 0, "Chain result TTL in seconds")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 5000 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("SECRET_KEY")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("SECRET_KEY required")
	}

	// Chain is optional: without RPC_URL and CONTRACT_ADDRESS the
	// server runs database-only and results stay source=database.
	if cfg.RPCURL == "" {
		cfg.RPCURL = os.Getenv("RPC_URL")
	}
	if cfg.ContractAddress == "" {
		cfg.ContractAddress = os.Getenv("CONTRACT_ADDRESS")
	}
	if cfg.ChainID == 0 {
		if idStr := os.Getenv("CHAIN_ID"); idStr != "" {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return Config{}, errors.New("invalid CHAIN_ID env variable")
			}
			cfg.ChainID = id
		}
	}
	cfg.PrivateKey = os.Getenv("PRIVATE_KEY")
	cfg.AccountAddress = os.Getenv("ACCOUNT_ADDRESS")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	cfg.KafkaTopic = os.Getenv("KAFKA_TOPIC")
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "votechain.votes"
	}

	if dbTTLSecs == 0 {
		dbTTLSecs = envSeconds("DB_RESULT_TTL", 30)
	}
	if chainTTLSecs == 0 {
		chainTTLSecs = envSeconds("CHAIN_RESULT_TTL", 60)
	}
	cfg.DBResultTTL = time.Duration(dbTTLSecs) * time.Second
	cfg.ChainResultTTL = time.Duration(chainTTLSecs) * time.Second

	return cfg, nil
}

func envSeconds(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
