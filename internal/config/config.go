package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the pipeline components need. It is built once at
// startup and injected; components never read globals.
type Config struct {
	Scraper  ScraperConfig
	Fetch    FetchConfig
	Database DatabaseConfig
	Snapshot SnapshotConfig
	Server   ServerConfig
}

// ScraperConfig holds the extraction vocabulary and run behavior.
type ScraperConfig struct {
	Source        string // vendor/source identifier stamped on every record
	ListingURL    string
	BaseURL       string // prefix for relative detail/image URLs
	LookupBaseURL string // secondary vehicle-data site, empty disables lookup

	// ValidColours is the closed colour vocabulary; extracted colours must
	// match a member (exact or prefix) or they are dropped.
	ValidColours []string
	// TrimVocabulary is the fixed set of trim keywords recognized in titles.
	TrimVocabulary []string
	// DescriptionCutoffs truncate the full description at the earliest
	// occurrence of any phrase. Empty means no truncation.
	DescriptionCutoffs []string

	DetailDelay time.Duration // minimum gap between consecutive detail fetches
	MaxListings int           // 0 means no cap
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	UserAgent     string
	Timeout       time.Duration
	SkipTLSVerify bool // local testing only; verification is the default
	UseBrowser    bool // render JS-heavy pages through headless Chrome
	ImageDir      string
}

type DatabaseConfig struct {
	Path string
}

type SnapshotConfig struct {
	Path string
}

type ServerConfig struct {
	Port string
}

// Load builds the default configuration and applies environment overrides.
func Load() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

func defaultConfig() *Config {
	return &Config{
		Scraper: ScraperConfig{
			Source:        "dealer",
			ListingURL:    "",
			BaseURL:       "",
			LookupBaseURL: "",
			ValidColours: []string{
				"Black", "White", "Silver", "Grey", "Blue", "Red", "Green",
				"Yellow", "Orange", "Brown", "Beige", "Gold", "Purple",
				"Bronze", "Cream", "Maroon", "Pink", "Turquoise",
			},
			TrimVocabulary: []string{
				"SE", "Sport", "S Line", "M Sport", "AMG Line", "GT Line",
				"Titanium", "Zetec", "ST-Line", "R-Line", "Tekna", "N-Connecta",
				"Acenta", "Elegance", "Luxury", "Exclusive", "Ghia", "Edition",
			},
			DescriptionCutoffs: []string{},
			DetailDelay:        2 * time.Second,
			MaxListings:        0,
		},
		Fetch: FetchConfig{
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
			Timeout:       20 * time.Second,
			SkipTLSVerify: false,
			UseBrowser:    false,
			ImageDir:      "data/images",
		},
		Database: DatabaseConfig{Path: "data/vehicles.db"},
		Snapshot: SnapshotConfig{Path: "data/snapshot.json"},
		Server:   ServerConfig{Port: "8080"},
	}
}

func applyEnvOverrides(cfg *Config) {
	viper.AutomaticEnv()

	_ = viper.BindEnv("scrape_source", "SCRAPE_SOURCE")
	_ = viper.BindEnv("listing_url", "LISTING_URL")
	_ = viper.BindEnv("base_url", "BASE_URL")
	_ = viper.BindEnv("lookup_base_url", "LOOKUP_BASE_URL")
	_ = viper.BindEnv("user_agent", "SCRAPE_USER_AGENT")
	_ = viper.BindEnv("db_path", "DB_PATH")
	_ = viper.BindEnv("snapshot_path", "SNAPSHOT_PATH")
	_ = viper.BindEnv("image_dir", "IMAGE_DIR")

	if v := viper.GetString("scrape_source"); v != "" {
		cfg.Scraper.Source = v
	}
	if v := viper.GetString("listing_url"); v != "" {
		cfg.Scraper.ListingURL = v
	}
	if v := viper.GetString("base_url"); v != "" {
		cfg.Scraper.BaseURL = v
	}
	if v := viper.GetString("lookup_base_url"); v != "" {
		cfg.Scraper.LookupBaseURL = v
	}
	if v := os.Getenv("DETAIL_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Scraper.DetailDelay = d
		}
	}
	if v := os.Getenv("MAX_LISTINGS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Scraper.MaxListings = i
		}
	}
	if v := viper.GetString("user_agent"); v != "" {
		cfg.Fetch.UserAgent = v
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Fetch.Timeout = d
		}
	}
	if v := os.Getenv("SKIP_TLS_VERIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fetch.SkipTLSVerify = b
		}
	}
	if v := os.Getenv("USE_BROWSER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Fetch.UseBrowser = b
		}
	}
	if v := viper.GetString("image_dir"); v != "" {
		cfg.Fetch.ImageDir = v
	}
	if v := viper.GetString("db_path"); v != "" {
		cfg.Database.Path = v
	}
	if v := viper.GetString("snapshot_path"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
}
