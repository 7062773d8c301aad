package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all connector configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Log        LogConfig
	Telemetry  TelemetryConfig
	Storage    StorageConfig
	Yellowcube YellowcubeConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// IsProduction reports whether the connector talks to the live provider
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stderr (default), stdout, or file path
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	LogLevel        string // silent, error, warn, info
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// RedisConfig holds Redis connection settings. An empty host disables the
// duplicate submission guard.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	GuardTTL time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration
}

// StorageConfig holds the S3 location of rendered invoices. An empty bucket
// disables invoice attachments.
type StorageConfig struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	InvoicePrefix   string
	UsePathStyle    bool
}

// YellowcubeConfig holds the provider endpoint and the module parameters
// every request is built from
type YellowcubeConfig struct {
	Endpoint  string
	Namespace string
	Timeout   time.Duration

	Sender        string
	Receiver      string
	OperatingMode string
	Version       string
	TransMaxTime  int

	DepositorNo string
	PlantID     string
	PartnerNo   string
	PartnerType string

	NetWeightISO     string
	GrossWeightISO   string
	LengthISO        string
	WidthISO         string
	HeightISO        string
	VolumeISO        string
	EANType          string
	AlternateUnitISO string
	QuantityISO      string

	DocType            string
	DocMimeType        string
	OrderDocumentsFlag string

	ResetInventory  bool
	ArticleFlag     string // change flag of the article pass when none is given
	ManualOrderSend bool   // order list rows offer a manual send
	PassInterval    time.Duration

	// SnippetLocaleID selects the locale of postal code messages, 0 takes
	// the first one found
	SnippetLocaleID int

	// SnippetNamespace is the snippet namespace of the postal code messages
	SnippetNamespace string
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with YC_ prefix (e.g., YC_YELLOWCUBE_SENDER)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file path, or searches the
// default locations when path is empty
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/yellowcube")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("YC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			LogLevel:        v.GetString("database.log_level"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			GuardTTL: v.GetDuration("redis.guard_ttl"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Storage: StorageConfig{
			Bucket:          v.GetString("storage.bucket"),
			Region:          v.GetString("storage.region"),
			Endpoint:        v.GetString("storage.endpoint"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			InvoicePrefix:   v.GetString("storage.invoice_prefix"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
		},
		Yellowcube: YellowcubeConfig{
			Endpoint:           v.GetString("yellowcube.endpoint"),
			Namespace:          v.GetString("yellowcube.namespace"),
			Timeout:            v.GetDuration("yellowcube.timeout"),
			Sender:             v.GetString("yellowcube.sender"),
			Receiver:           v.GetString("yellowcube.receiver"),
			OperatingMode:      v.GetString("yellowcube.operating_mode"),
			Version:            v.GetString("yellowcube.version"),
			TransMaxTime:       v.GetInt("yellowcube.trans_max_time"),
			DepositorNo:        v.GetString("yellowcube.depositor_no"),
			PlantID:            v.GetString("yellowcube.plant_id"),
			PartnerNo:          v.GetString("yellowcube.partner_no"),
			PartnerType:        v.GetString("yellowcube.partner_type"),
			NetWeightISO:       v.GetString("yellowcube.net_weight_iso"),
			GrossWeightISO:     v.GetString("yellowcube.gross_weight_iso"),
			LengthISO:          v.GetString("yellowcube.length_iso"),
			WidthISO:           v.GetString("yellowcube.width_iso"),
			HeightISO:          v.GetString("yellowcube.height_iso"),
			VolumeISO:          v.GetString("yellowcube.volume_iso"),
			EANType:            v.GetString("yellowcube.ean_type"),
			AlternateUnitISO:   v.GetString("yellowcube.alternate_unit_iso"),
			QuantityISO:        v.GetString("yellowcube.quantity_iso"),
			DocType:            v.GetString("yellowcube.doc_type"),
			DocMimeType:        v.GetString("yellowcube.doc_mime_type"),
			OrderDocumentsFlag: v.GetString("yellowcube.order_documents_flag"),
			ResetInventory:     v.GetBool("yellowcube.reset_inventory"),
			ArticleFlag:        v.GetString("yellowcube.article_flag"),
			ManualOrderSend:    v.GetBool("yellowcube.manual_order_send"),
			PassInterval:       v.GetDuration("yellowcube.pass_interval"),
			SnippetLocaleID:    v.GetInt("yellowcube.snippet_locale_id"),
			SnippetNamespace:   v.GetString("yellowcube.snippet_namespace"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "yellowcube"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "shop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.GuardTTL == 0 {
		cfg.Redis.GuardTTL = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "yellowcube"
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.Storage.InvoicePrefix == "" {
		cfg.Storage.InvoicePrefix = "documents/"
	}

	yc := &cfg.Yellowcube
	if yc.Namespace == "" {
		yc.Namespace = "https://service.swisspost.ch/apache/yellowcube-int/?wsdl"
	}
	if yc.Timeout == 0 {
		yc.Timeout = 60 * time.Second
	}
	if yc.OperatingMode == "" {
		yc.OperatingMode = "T"
	}
	if yc.Version == "" {
		yc.Version = "1.0"
	}
	if yc.TransMaxTime == 0 {
		yc.TransMaxTime = 30
	}
	if yc.PartnerType == "" {
		yc.PartnerType = "WE"
	}
	if yc.NetWeightISO == "" {
		yc.NetWeightISO = "KGM"
	}
	if yc.GrossWeightISO == "" {
		yc.GrossWeightISO = "KGM"
	}
	if yc.LengthISO == "" {
		yc.LengthISO = "CMT"
	}
	if yc.WidthISO == "" {
		yc.WidthISO = "CMT"
	}
	if yc.HeightISO == "" {
		yc.HeightISO = "CMT"
	}
	if yc.VolumeISO == "" {
		yc.VolumeISO = "CMQ"
	}
	if yc.EANType == "" {
		yc.EANType = "HE"
	}
	if yc.QuantityISO == "" {
		yc.QuantityISO = "PCE"
	}
	if yc.DocType == "" {
		yc.DocType = "LS"
	}
	if yc.DocMimeType == "" {
		yc.DocMimeType = "pdf"
	}
	if yc.ArticleFlag == "" {
		yc.ArticleFlag = "I"
	}
	if yc.SnippetNamespace == "" {
		yc.SnippetNamespace = "engine/Shopware/Plugins/Local/Backend/AsignYellowcube"
	}
	if yc.PassInterval == 0 {
		yc.PassInterval = 15 * time.Minute
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	switch c.Yellowcube.OperatingMode {
	case "P", "T", "D":
	default:
		return fmt.Errorf("yellowcube.operating_mode must be P, T or D, got %q", c.Yellowcube.OperatingMode)
	}
	switch strings.ToUpper(c.Yellowcube.ArticleFlag) {
	case "I", "U", "D":
	default:
		return fmt.Errorf("yellowcube.article_flag must be I, U or D, got %q", c.Yellowcube.ArticleFlag)
	}

	if c.App.IsProduction() {
		if c.Yellowcube.Endpoint == "" {
			return fmt.Errorf("yellowcube.endpoint is required in production")
		}
		if c.Yellowcube.Sender == "" || c.Yellowcube.DepositorNo == "" {
			return fmt.Errorf("yellowcube.sender and yellowcube.depositor_no are required in production")
		}
		if c.Yellowcube.OperatingMode != "P" {
			return fmt.Errorf("yellowcube.operating_mode must be P in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
