// Copyright (c) 2025 the Votechain authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded before flags are read.

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseURL: sqlite path or PostgreSQL connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - JWTSecret: token signing secret (required)
  - RPCURL / ContractAddress / ChainID: chain read access (optional)
  - PrivateKey / AccountAddress: chain transaction signing (optional)
  - RedisURL: redis-backed cache store (optional)
  - KafkaBrokers / KafkaTopic: vote event publishing (optional)
  - DBResultTTL / ChainResultTTL: result freshness windows

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	RPC_URL          → -rpc
	CONTRACT_ADDRESS → -contract
	CHAIN_ID         → -chain-id
	DB_RESULT_TTL    → -db-ttl
	CHAIN_RESULT_TTL → -chain-ttl
	SECRET_KEY       → -jwt-secret

PRIVATE_KEY, ACCOUNT_ADDRESS, REDIS_URL, KAFKA_BROKERS and KAFKA_TOPIC
are environment-only: secrets and deployment wiring never belong on a
command line. CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - SECRET_KEY must be provided

Chain and cache settings are optional: without RPC_URL and
CONTRACT_ADDRESS the server runs database-only.
*/
package cliparse
