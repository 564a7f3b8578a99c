// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds configuration knobs for the HTTP server and the stores.
type Config struct {
	HTTPAddr        string
	DataDir         string
	ProductsFile    string
	CartsFile       string
	WatchDebounce   time.Duration
	ProductIDMax    int
	ShutdownTimeout time.Duration
}

// ProductsPath returns the location of the persisted catalog document.
func (c Config) ProductsPath() string { return filepath.Join(c.DataDir, c.ProductsFile) }

// CartsPath returns the location of the persisted cart document.
func (c Config) CartsPath() string { return filepath.Join(c.DataDir, c.CartsFile) }

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

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		DataDir:         getenv("DATA_DIR", "./data"),
		ProductsFile:    getenv("PRODUCTS_FILE", "products.json"),
		CartsFile:       getenv("CARTS_FILE", "carts.json"),
		WatchDebounce:   durenvms("WATCH_DEBOUNCE_MS", 100),
		ProductIDMax:    atoienv("PRODUCT_ID_MAX", 100000),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
	}
}
