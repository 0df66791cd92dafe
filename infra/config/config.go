package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL        = "http://localhost:8000"
	defaultUserID        = "d4705bec-b3ab-4d7c-aa28-a10470adcbd7"
	defaultCacheEntries  = 24
	defaultCacheTTL      = 10 * time.Minute
	defaultCommentsLimit = 50
)

// Config holds application-level configuration.
type Config struct {
	APIURL        string // e.g. "http://192.168.1.87:8000"
	UserID        string // Fixed identity the client acts as
	TokenPath     string // Optional bearer token file
	ProxyURL      string // Optional http(s) or socks5 proxy
	LogFile       string
	LogLevel      slog.Level
	CacheEntries  int
	CacheTTL      time.Duration
	CommentsLimit int
}

// LoadEnvFile loads variables from a dotenv file without overriding
// variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables.
//
//	GIGGLES_API_URL        backend base URL (default: http://localhost:8000)
//	GIGGLES_USER_ID        identity the client acts as
//	GIGGLES_TOKEN          path to a bearer token file (optional)
//	GIGGLES_PROXY          http, https or socks5 proxy URL (optional)
//	GIGGLES_LOG_FILE       log destination (default: ~/.cache/giggles/giggles.log)
//	GIGGLES_LOG_LEVEL      debug, info, warn or error (default: info)
//	GIGGLES_CACHE_ENTRIES  media cache capacity (default: 24)
//	GIGGLES_CACHE_TTL      media cache entry lifetime (default: 10m)
//	GIGGLES_COMMENTS_LIMIT comments fetched per thread (default: 50)
func Load() (Config, error) {
	apiURL := os.Getenv("GIGGLES_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	parsed, err := url.Parse(apiURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid GIGGLES_API_URL: must be an absolute URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid GIGGLES_API_URL: scheme must be http or https")
	}
	apiURL = strings.TrimRight(parsed.String(), "/")

	userID := strings.TrimSpace(os.Getenv("GIGGLES_USER_ID"))
	if userID == "" {
		userID = defaultUserID
	}

	proxyURL := strings.TrimSpace(os.Getenv("GIGGLES_PROXY"))
	if proxyURL != "" {
		p, err := url.Parse(proxyURL)
		if err != nil || p.Host == "" {
			return Config{}, fmt.Errorf("invalid GIGGLES_PROXY: must be an absolute URL")
		}
		switch p.Scheme {
		case "http", "https", "socks5":
		default:
			return Config{}, fmt.Errorf("invalid GIGGLES_PROXY: unsupported scheme %q", p.Scheme)
		}
	}

	logFile := os.Getenv("GIGGLES_LOG_FILE")
	if logFile == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return Config{}, fmt.Errorf("cannot determine cache directory: %w", err)
		}
		logFile = filepath.Join(dir, "giggles", "giggles.log")
	}

	level := slog.LevelInfo
	if raw := os.Getenv("GIGGLES_LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return Config{}, fmt.Errorf("invalid GIGGLES_LOG_LEVEL: %w", err)
		}
	}

	entries, err := positiveInt("GIGGLES_CACHE_ENTRIES", defaultCacheEntries)
	if err != nil {
		return Config{}, err
	}
	limit, err := positiveInt("GIGGLES_COMMENTS_LIMIT", defaultCommentsLimit)
	if err != nil {
		return Config{}, err
	}

	ttl := defaultCacheTTL
	if raw := os.Getenv("GIGGLES_CACHE_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("invalid GIGGLES_CACHE_TTL: %q", raw)
		}
	}

	return Config{
		APIURL:        apiURL,
		UserID:        userID,
		TokenPath:     os.Getenv("GIGGLES_TOKEN"),
		ProxyURL:      proxyURL,
		LogFile:       logFile,
		LogLevel:      level,
		CacheEntries:  entries,
		CacheTTL:      ttl,
		CommentsLimit: limit,
	}, nil
}

func positiveInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}
