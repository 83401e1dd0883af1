package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	BotToken string
	AdminIDs []int64

	Storage  string
	DBPath   string
	DBDriver string
	DBDSN    string

	// Timezone is the single civil timezone all scheduled times are
	// interpreted in.
	Timezone         string
	TickInterval     time.Duration
	FollowupInterval time.Duration
	DueTolerance     time.Duration
	MaxReminders     int

	HTTPAddr        string
	PollTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	// Load .env if present without overwriting already-set variables.
	if envMap, err := godotenv.Read(); err == nil {
		for k, v := range envMap {
			if os.Getenv(k) == "" {
				os.Setenv(k, v)
			}
		}
	}

	var addr string
	var storage string
	var env string
	flag.StringVar(&addr, "http", getenv("HTTP_ADDR", ":8080"), "status http addr")
	flag.StringVar(&storage, "storage", getenv("STORAGE", "sqlite"), "storage backend (memory|sqlite|postgres)")
	flag.StringVar(&env, "env", getenv("APP_ENV", "dev"), "env")
	flag.Parse()

	return Config{
		Env:              env,
		BotToken:         getenv("BOT_TOKEN", ""),
		AdminIDs:         ParseAdminIDs(getenv("ADMIN_IDS", "")),
		Storage:          storage,
		DBPath:           getenv("DB_PATH", "tasks.db"),
		DBDriver:         getenv("DB_DRIVER", "pgx"),
		DBDSN:            getenv("DB_DSN", ""),
		Timezone:         getenv("TIMEZONE", "America/Los_Angeles"),
		TickInterval:     getdur("TICK_INTERVAL", 120*time.Second),
		FollowupInterval: getdur("FOLLOWUP_INTERVAL", 120*time.Second),
		DueTolerance:     getdur("DUE_TOLERANCE", 2*time.Minute),
		MaxReminders:     getint("MAX_REMINDERS", 30),
		HTTPAddr:         addr,
		PollTimeout:      getdur("POLL_TIMEOUT", 20*time.Second),
		ShutdownTimeout:  getdur("SHUTDOWN_TIMEOUT", 5*time.Second),
	}
}

// ParseAdminIDs reads a comma-separated id list, skipping anything that is
// not a number.
func ParseAdminIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
