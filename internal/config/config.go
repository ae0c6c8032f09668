package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"orderdesk/internal/model"
)

const (
	defaultCompletedRange = "Completed Orders!A1:Z9999"
	defaultAbandonedRange = "Abandoned!A1:Z9999"
)

// knownChannels always get their per-channel env keys looked up.
var knownChannels = []string{"telegram", "whatsapp", "voice"}

type Config struct {
	RunAddress        string
	LogLevel          string
	Environment       string
	Sheets            SheetsConfig
	WebhookURL        string
	MockCompletedPath string
	MockAbandonedPath string
	StoreDSN          string
	DispatchRateLimit int // per client IP per minute
	Location          *time.Location
}

type SheetsConfig struct {
	CredentialsPath string
	TokenURL        string
	APIEndpoint     string
	DefaultChannel  string
	Legacy          model.Channel
	Channels        map[string]model.Channel
}

// Load reads configuration from defaults, an optional config file, the
// environment and finally explicitly set flags, in increasing priority.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("orderdesk", flag.ContinueOnError)
	runAddress := fs.String("a", "localhost:8080", "server address and port")
	configFile := fs.String("c", "", "config file (yaml, json or env)")
	storeDSN := fs.String("d", "", "dispatch status store DSN (file path, file://, memory://, postgres://)")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	v.SetDefault("run_address", "localhost:8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("environment", "development")
	v.SetDefault("google_sheets_default_channel", "telegram")
	v.SetDefault("google_sheets_completed_range", defaultCompletedRange)
	v.SetDefault("google_sheets_abandoned_range", defaultAbandonedRange)
	v.SetDefault("mock_completed_path", "storage/mock/completed.json")
	v.SetDefault("mock_abandoned_path", "storage/mock/abandoned.json")
	v.SetDefault("dispatch_store_dsn", "storage/dispatches.json")
	v.SetDefault("dispatch_rate_limit", 10)
	v.SetDefault("timezone", "UTC")
	v.AutomaticEnv()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
	} else {
		v.SetConfigName("orderdesk")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "a":
			v.Set("run_address", *runAddress)
		case "d":
			v.Set("dispatch_store_dsn", *storeDSN)
		}
	})

	cfg := &Config{
		RunAddress:        v.GetString("run_address"),
		LogLevel:          v.GetString("log_level"),
		Environment:       v.GetString("environment"),
		WebhookURL:        strings.TrimSpace(v.GetString("webhook_dispatch_url")),
		MockCompletedPath: v.GetString("mock_completed_path"),
		MockAbandonedPath: v.GetString("mock_abandoned_path"),
		StoreDSN:          v.GetString("dispatch_store_dsn"),
		DispatchRateLimit: v.GetInt("dispatch_rate_limit"),
	}

	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	cfg.Location = loc

	sheets, err := loadSheets(v)
	if err != nil {
		return nil, err
	}
	cfg.Sheets = sheets

	if cfg.DispatchRateLimit <= 0 {
		return nil, fmt.Errorf("DISPATCH_RATE_LIMIT must be positive, got %d", cfg.DispatchRateLimit)
	}

	return cfg, nil
}

func loadSheets(v *viper.Viper) (SheetsConfig, error) {
	channels := map[string]model.Channel{}
	if err := v.UnmarshalKey("channels", &channels); err != nil {
		return SheetsConfig{}, fmt.Errorf("decode channels: %w", err)
	}

	keys := append([]string(nil), knownChannels...)
	for k := range channels {
		keys = append(keys, k)
	}

	merged := make(map[string]model.Channel, len(keys))
	for _, key := range keys {
		key = strings.ToLower(strings.TrimSpace(key))
		if _, done := merged[key]; done || key == "" {
			continue
		}

		ch := lookupChannel(channels, key)
		ch.Key = key
		if id := v.GetString("google_sheets_spreadsheet_id_" + key); id != "" {
			ch.SpreadsheetID = id
		}
		if rng := v.GetString("google_sheets_" + key + "_completed_range"); rng != "" {
			ch.CompletedRange = rng
		}
		if rng := v.GetString("google_sheets_" + key + "_abandoned_range"); rng != "" {
			ch.AbandonedRange = rng
		}
		merged[key] = ch
	}

	return SheetsConfig{
		CredentialsPath: strings.TrimSpace(v.GetString("google_application_credentials")),
		TokenURL:        v.GetString("google_sheets_token_url"),
		APIEndpoint:     v.GetString("google_sheets_api_endpoint"),
		DefaultChannel:  v.GetString("google_sheets_default_channel"),
		Legacy: model.Channel{
			SpreadsheetID:  strings.TrimSpace(v.GetString("google_sheets_spreadsheet_id")),
			CompletedRange: v.GetString("google_sheets_completed_range"),
			AbandonedRange: v.GetString("google_sheets_abandoned_range"),
		},
		Channels: merged,
	}, nil
}

func lookupChannel(channels map[string]model.Channel, key string) model.Channel {
	for k, ch := range channels {
		if strings.EqualFold(k, key) {
			return ch
		}
	}
	return model.Channel{}
}
