package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"llama_lend/internal/models"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	rpcURLENV         = "RPC_URL"
	wsRPCURLENV       = "WS_RPC_URL"
	pricesAPIURLENV   = "PRICES_API_URL"
	walletAddressENV  = "WALLET_ADDRESS"
)

// Position — позиция, за которой следит монитор.
type Position struct {
	MarketID string `yaml:"market_id"`
	User     string `yaml:"user"`
}

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Name      string `yaml:"name"`
		ProbeAddr string `yaml:"probe_addr"`
		LogLevel  string `yaml:"log_level"`
	} `yaml:"service"`

	Chain struct {
		ID     int64  `yaml:"id"`
		RPCURL string `yaml:"rpc_url"`
		WSURL  string `yaml:"ws_url"`

		// адрес пользователя кошелька, пустой — кошелёк не подключён
		Wallet string `yaml:"wallet"`

		// как часто опрашивать квитанцию
		ReceiptPoll time.Duration `yaml:"receipt_poll"`
	} `yaml:"chain"`

	PricesAPI struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"prices_api"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Markets   []models.Market `yaml:"markets"`
	Positions []Position      `yaml:"positions"`

	// Дефолты формы
	DefaultSlippage float64 `yaml:"default_slippage"` // проценты, 0.1 => 0.1%
	DefaultRange    int     `yaml:"default_range"`
	RangeMin        int     `yaml:"range_min"`
	RangeMax        int     `yaml:"range_max"`

	// Кэш
	QuoteStaleTime time.Duration `yaml:"quote_stale_time"`
	UserStaleTime  time.Duration `yaml:"user_stale_time"`

	// Пакетные чтения: первый проход и повтор по упавшим
	BatchConcurrency      int `yaml:"batch_concurrency"`
	BatchRetryConcurrency int `yaml:"batch_retry_concurrency"`

	// Монитор
	MonitorInterval time.Duration `yaml:"monitor_interval"`
	AlertCooldown   time.Duration `yaml:"alert_cooldown"`
	HeadDebounce    time.Duration `yaml:"head_debounce"`
}

func defaults() Config {
	c := Config{
		DefaultSlippage: floatFromEnv("DEFAULT_SLIPPAGE", 0.1),
		DefaultRange:    intFromEnv("DEFAULT_RANGE", 10),
		RangeMin:        4,
		RangeMax:        50,

		QuoteStaleTime: durationFromEnv("QUOTE_STALE_TIME", "30s"),
		UserStaleTime:  durationFromEnv("USER_STALE_TIME", "15s"),

		BatchConcurrency:      intFromEnv("BATCH_CONCURRENCY", 8),
		BatchRetryConcurrency: intFromEnv("BATCH_RETRY_CONCURRENCY", 2),

		MonitorInterval: durationFromEnv("MONITOR_INTERVAL", "60s"),
		AlertCooldown:   durationFromEnv("ALERT_COOLDOWN", "30m"),
		HeadDebounce:    durationFromEnv("HEAD_DEBOUNCE", "1s"),
	}
	c.Service.Name = "llama_lend"
	c.Service.ProbeAddr = getenvDefault("PROBE_ADDR", ":8080")
	c.Service.LogLevel = getenvDefault("LOG_LEVEL", "info")
	c.Chain.ID = 1
	c.Chain.ReceiptPoll = 2 * time.Second
	c.PricesAPI.URL = "https://prices.curve.fi"
	c.PricesAPI.Timeout = 10 * time.Second
	c.Jaeger.Host = "localhost"
	c.Jaeger.Port = 6831
	return c
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	return Load("configs/" + configFileName)
}

// Load читает yaml поверх дефолтов и применяет переопределения из окружения.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	config.Chain.RPCURL = getenvDefault(rpcURLENV, config.Chain.RPCURL)
	config.Chain.WSURL = getenvDefault(wsRPCURLENV, config.Chain.WSURL)
	config.PricesAPI.URL = getenvDefault(pricesAPIURLENV, config.PricesAPI.URL)
	config.Chain.Wallet = getenvDefault(walletAddressENV, config.Chain.Wallet)

	for i := range config.Markets {
		if config.Markets[i].ChainID == 0 {
			config.Markets[i].ChainID = config.Chain.ID
		}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.RangeMin < 1 || c.RangeMin > c.RangeMax {
		return fmt.Errorf("config: bad range bounds %d..%d", c.RangeMin, c.RangeMax)
	}
	if c.DefaultRange < c.RangeMin || c.DefaultRange > c.RangeMax {
		return fmt.Errorf("config: default range %d is outside %d..%d", c.DefaultRange, c.RangeMin, c.RangeMax)
	}
	for _, p := range c.Positions {
		if _, ok := c.Market(p.MarketID); !ok {
			return fmt.Errorf("config: position %s refers to unknown market %s", p.User, p.MarketID)
		}
	}
	return nil
}

// Market ищет рынок из конфига по id.
func (c *Config) Market(id string) (models.Market, bool) {
	for _, m := range c.Markets {
		if m.ID == id {
			return m, true
		}
	}
	return models.Market{}, false
}

// WatchedPositions — позиции монитора с данными рынков.
func (c *Config) WatchedPositions() []models.WatchedPosition {
	out := make([]models.WatchedPosition, 0, len(c.Positions))
	for _, p := range c.Positions {
		m, _ := c.Market(p.MarketID)
		out = append(out, models.WatchedPosition{Market: m, User: p.User})
	}
	return out
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
