package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	brokerKeyENV      = "BROKER_API_KEY"
	brokerSecretENV   = "BROKER_API_SECRET"
)

// Config ...
type Config struct {
	Broker struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
		Key     string `yaml:"key"`
		Secret  string `yaml:"secret"`
	} `yaml:"broker"`
	Data struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"data"`
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`
	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Symbol universe; empty -> built-in default list
	Universe []string `yaml:"universe"`

	// Dollar amount per new position
	PositionSize float64 `yaml:"position_size"`
	// Portfolio cap after a rebalance cycle
	MaxPositions int `yaml:"max_positions"`
	// EMA smoothing window in trading days
	ScoreWindow int `yaml:"score_window"`
	// Daily bars fetched per symbol before scoring
	LookbackDays int `yaml:"lookback_days"`
	// Settlement wait budget, one tick per second
	WaitTicks int `yaml:"wait_ticks"`

	// How often the runner asks the broker clock
	PollInterval time.Duration
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		PositionSize: floatFromEnv("POSITION_SIZE", 100),
		MaxPositions: intFromEnv("MAX_POSITIONS", 5),
		ScoreWindow:  intFromEnv("SCORE_WINDOW", 10),
		LookbackDays: intFromEnv("LOOKBACK_DAYS", 50),
		WaitTicks:    intFromEnv("WAIT_TICKS", 30),
		PollInterval: durationFromEnv("POLL_INTERVAL", "1s"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if key := os.Getenv(brokerKeyENV); key != "" {
		config.Broker.Key = key
	}
	if secret := os.Getenv(brokerSecretENV); secret != "" {
		config.Broker.Secret = secret
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
