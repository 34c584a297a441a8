// Package config provides runtime configuration values for the service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductSeed names a stock-keeping unit and its starting weight in kg.
type ProductSeed struct {
	Name   string
	Weight float64
}

// Config holds configuration knobs for the bus, the simulation, and HTTP.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	BrokerURL      string
	ClientIDPrefix string
	ConnectTimeout time.Duration
	StatusTopic    string
	OrderTopic     string
	AutoConnect    bool

	Products []ProductSeed

	LowStockThreshold float64
	ReorderThreshold  float64
	AutoReorder       bool

	TickInterval    time.Duration
	ConsumptionMin  float64
	ConsumptionMax  float64
	RefillMin       float64
	RefillMax       float64
	FulfillDelayMin time.Duration
	FulfillDelayMax time.Duration

	LogPath string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// parseProducts reads a "Name:Weight,Name:Weight" list. Malformed entries are
// skipped so a partially valid list still seeds the ledger.
func parseProducts(s string) []ProductSeed {
	var out []ProductSeed
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			continue
		}
		out = append(out, ProductSeed{Name: strings.TrimSpace(kv[0]), Weight: w})
	}
	return out
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),

		BrokerURL:      getenv("MQTT_BROKER_URL", "tcp://broker.hivemq.com:1883"),
		ClientIDPrefix: getenv("MQTT_CLIENT_PREFIX", "wolt-inventory"),
		ConnectTimeout: durenvms("MQTT_CONNECT_TIMEOUT_MS", 10000),
		StatusTopic:    getenv("TOPIC_STATUS", "wolt/warehouse/smart_produce/inventory/sts"),
		OrderTopic:     getenv("TOPIC_ORDER", "wolt/warehouse/smart_produce/inventory/order"),
		AutoConnect:    boolenv("MQTT_AUTO_CONNECT", true),

		Products: parseProducts(getenv("PRODUCTS", "Tomatoes:50,Cucumbers:40,Apples:35,Bananas:30")),

		LowStockThreshold: floatenv("LOW_STOCK_THRESHOLD", 30.0),
		ReorderThreshold:  floatenv("AUTO_REORDER_THRESHOLD", 25.0),
		AutoReorder:       boolenv("AUTO_REORDER", false),

		TickInterval:    durenvms("TICK_INTERVAL_MS", 3000),
		ConsumptionMin:  floatenv("CONSUMPTION_MIN_KG", 0.3),
		ConsumptionMax:  floatenv("CONSUMPTION_MAX_KG", 0.9),
		RefillMin:       floatenv("REFILL_MIN_KG", 20.0),
		RefillMax:       floatenv("REFILL_MAX_KG", 30.0),
		FulfillDelayMin: durenvms("FULFILL_DELAY_MIN_MS", 4000),
		FulfillDelayMax: durenvms("FULFILL_DELAY_MAX_MS", 4000),

		LogPath: getenv("INVENTORY_LOG_PATH", "inventory_log.csv"),
	}
}

// Validate rejects configurations the core invariants cannot hold under.
func (c Config) Validate() error {
	if len(c.Products) == 0 {
		return fmt.Errorf("config: at least one product required")
	}
	if c.ReorderThreshold >= c.LowStockThreshold {
		return fmt.Errorf("config: reorder threshold %.2f must be strictly below low-stock threshold %.2f",
			c.ReorderThreshold, c.LowStockThreshold)
	}
	if c.ConsumptionMin < 0 || c.ConsumptionMax < c.ConsumptionMin {
		return fmt.Errorf("config: invalid consumption range [%.2f, %.2f]", c.ConsumptionMin, c.ConsumptionMax)
	}
	if c.RefillMin < 0 || c.RefillMax < c.RefillMin {
		return fmt.Errorf("config: invalid refill range [%.2f, %.2f]", c.RefillMin, c.RefillMax)
	}
	if c.FulfillDelayMax < c.FulfillDelayMin {
		return fmt.Errorf("config: invalid fulfillment delay range")
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("config: tick interval must be positive")
	}
	return nil
}
