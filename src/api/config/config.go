package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	MySQLDSN   string
	RedisURL   string
	JWTSecret  string
	NodeRPCURL string
	IndexerURL string
	Port       string

	CORSOrigins []string
	SS58Prefix  uint16

	BalancePoll       int // seconds
	ReconcileInterval int // seconds

	CreateCost    uint64
	VoteCost      uint64
	ConfirmRounds int

	DiscordToken   string
	DiscordChannel string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getint(key string, def int) int {
	v, err := strconv.Atoi(getenv(key, strconv.Itoa(def)))
	if err != nil {
		log.Fatalf("bad %s: %v", key, err)
	}
	return v
}

func getuint64(key string, def uint64) uint64 {
	v, err := strconv.ParseUint(getenv(key, strconv.FormatUint(def, 10)), 10, 64)
	if err != nil {
		log.Fatalf("bad %s: %v", key, err)
	}
	return v
}

func Load() Config {
	return Config{
		MySQLDSN:          getenv("MYSQL_DSN", "govboard:govboard@tcp(localhost:3306)/govboard"),
		RedisURL:          getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:         getenv("JWT_SECRET", ""),
		NodeRPCURL:        getenv("NODE_RPC_URL", "wss://rpc.polkadot.io"),
		IndexerURL:        getenv("INDEXER_URL", "http://localhost:8081"),
		Port:              getenv("PORT", "8080"),
		CORSOrigins:       strings.Split(getenv("CORS_ORIGINS", "http://localhost:3000"), ","),
		SS58Prefix:        uint16(getint("SS58_PREFIX", 42)),
		BalancePoll:       getint("BALANCE_POLL", 10),
		ReconcileInterval: getint("RECONCILE_INTERVAL", 60),
		CreateCost:        getuint64("CREATE_COST", 1_000_000_000),
		VoteCost:          getuint64("VOTE_COST", 100_000_000),
		ConfirmRounds:     getint("CONFIRM_ROUNDS", 8),
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		DiscordChannel:    os.Getenv("DISCORD_CHANNEL"),
	}
}
