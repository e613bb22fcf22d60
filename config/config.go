// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the settings of the server and the command line tools
// from defaults, an optional config file, environment variables and flags, in
// increasing order of precedence.
package config

import (
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Matcher kinds.
const (
	MatcherInventory     = "inventory"
	MatcherElasticsearch = "elasticsearch"
	MatcherRemote        = "remote"
)

// Config holds every setting.
type Config struct {
	Addr             string
	DBDriver         string
	DBDSN            string
	OverpassURL      string
	SearchRadiusM    int
	OCRURL           string
	Matcher          string
	MatcherURL       string
	MatchThreshold   float64
	ElasticsearchURL string
	ESIndex          string
	SessionSecret    string
	SessionTTL       time.Duration
	RequestTimeout   time.Duration
	GoogleMapsAPIKey string
	GoogleProject    string
	GeocodeRegion    string
	TraceHTTP        bool
	UserAgent        string
}

type setting struct {
	key  string
	env  string
	flag string
	def  any
}

var settings = []setting{
	{"addr", "GROSNAP_ADDR", "addr", ":8080"},
	{"db.driver", "GROSNAP_DB_DRIVER", "db-driver", "duckdb"},
	{"db.dsn", "GROSNAP_DB_DSN", "db", "grosnap.duckdb"},
	{"overpass.url", "GROSNAP_OVERPASS_URL", "overpass-url", "https://overpass-api.de/api/interpreter"},
	{"search.radius_m", "GROSNAP_SEARCH_RADIUS_M", "radius", 8000},
	{"ocr.url", "GROSNAP_OCR_URL", "ocr-url", "http://localhost:5001"},
	{"matcher.kind", "GROSNAP_MATCHER", "matcher", MatcherInventory},
	{"matcher.url", "GROSNAP_MATCHER_URL", "matcher-url", "http://localhost:5000"},
	{"matcher.threshold", "GROSNAP_MATCH_THRESHOLD", "", 0.5},
	{"elasticsearch.url", "ELASTICSEARCH_URL", "es-url", "http://localhost:9200"},
	{"elasticsearch.index", "GROSNAP_ES_INDEX", "es-index", "grosnap-products"},
	{"session.secret", "GROSNAP_SESSION_SECRET", "", ""},
	{"session.ttl", "GROSNAP_SESSION_TTL", "", "24h"},
	{"request.timeout", "GROSNAP_REQUEST_TIMEOUT", "timeout", "30s"},
	{"google.maps_api_key", "GOOGLE_MAPS_API_KEY", "maps-api-key", ""},
	{"google.project", "GOOGLE_CLOUD_PROJECT", "project", ""},
	{"google.region", "GROSNAP_GEOCODE_REGION", "", "in"},
	{"http.trace", "GROSNAP_TRACE_HTTP", "trace-http", false},
	{"http.user_agent", "GROSNAP_USER_AGENT", "", ""},
}

// Load reads the configuration. configFile may be empty. Only the flags of
// flags that were set on the command line override the other sources.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, s := range settings {
		v.SetDefault(s.key, s.def)

		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, err
		}

		if s.flag == "" || flags == nil {
			continue
		}

		if f := flags.Lookup(s.flag); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return nil, err
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Addr:             v.GetString("addr"),
		DBDriver:         v.GetString("db.driver"),
		DBDSN:            v.GetString("db.dsn"),
		OverpassURL:      v.GetString("overpass.url"),
		SearchRadiusM:    v.GetInt("search.radius_m"),
		OCRURL:           v.GetString("ocr.url"),
		Matcher:          strings.ToLower(v.GetString("matcher.kind")),
		MatcherURL:       v.GetString("matcher.url"),
		MatchThreshold:   v.GetFloat64("matcher.threshold"),
		ElasticsearchURL: v.GetString("elasticsearch.url"),
		ESIndex:          v.GetString("elasticsearch.index"),
		SessionSecret:    v.GetString("session.secret"),
		SessionTTL:       v.GetDuration("session.ttl"),
		RequestTimeout:   v.GetDuration("request.timeout"),
		GoogleMapsAPIKey: v.GetString("google.maps_api_key"),
		GoogleProject:    v.GetString("google.project"),
		GeocodeRegion:    v.GetString("google.region"),
		TraceHTTP:        v.GetBool("http.trace"),
		UserAgent:        v.GetString("http.user_agent"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "duckdb", "postgres":
	default:
		return fmt.Errorf("invalid database driver %q: expected duckdb or postgres", c.DBDriver)
	}

	switch c.Matcher {
	case MatcherInventory, MatcherElasticsearch, MatcherRemote:
	default:
		return fmt.Errorf("invalid matcher %q: expected %s, %s or %s",
			c.Matcher, MatcherInventory, MatcherElasticsearch, MatcherRemote)
	}

	if c.SearchRadiusM <= 0 {
		return fmt.Errorf("invalid search radius %d: must be positive", c.SearchRadiusM)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid request timeout %s: must be positive", c.RequestTimeout)
	}

	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("invalid match threshold %v: must be in (0, 1]", c.MatchThreshold)
	}

	return nil
}

// SessionKey returns the key signing the session cookies. Without a
// configured secret a random one is generated, so sessions do not survive a
// restart.
func (c *Config) SessionKey() []byte {
	if c.SessionSecret != "" {
		return []byte(c.SessionSecret)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("generating session key: %v", err)
	}

	log.Printf("GROSNAP_SESSION_SECRET not set, using an ephemeral session key")

	return key
}
