// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server settings.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	// AdminEmail and AdminName describe the account created on first run.
	AdminEmail string
	AdminName  string

	// LoginRate is the sustained number of login or register attempts per
	// second allowed from one client address, LoginBurst the burst size.
	LoginRate  float64
	LoginBurst int

	ShutdownTimeout time.Duration
}

// Load reads configuration from NAJDENO_* environment variables. Values in
// envFile are added to the environment first without overriding variables
// that are already set. A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	c := Config{
		DBPath:     get("NAJDENO_DB", "najdeno.sqlite3"),
		Addr:       get("NAJDENO_ADDR", ":8080"),
		LogPath:    get("NAJDENO_LOG", ""),
		AdminEmail: get("NAJDENO_ADMIN_EMAIL", "admin@najdeno.local"),
		AdminName:  get("NAJDENO_ADMIN_NAME", "Administrator"),
	}

	var err error
	if c.LoginRate, err = getFloat("NAJDENO_LOGIN_RATE", 0.2); err != nil {
		return Config{}, err
	}
	if c.LoginBurst, err = getInt("NAJDENO_LOGIN_BURST", 5); err != nil {
		return Config{}, err
	}
	if c.ShutdownTimeout, err = getDuration("NAJDENO_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	if c.LoginRate <= 0 || c.LoginBurst <= 0 {
		return Config{}, fmt.Errorf("login rate and burst must be positive")
	}
	return c, nil
}

// get returns the value of the environment variable k or def if not set.
func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return n, nil
}

func getFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return f, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", k, err)
	}
	return d, nil
}
