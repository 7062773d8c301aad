package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/erp/yellowcube/internal/infrastructure/config"
)

const defaultPingTimeout = 5 * time.Second

// Database is the connection to the shop database the connector reads
// records from and writes provider replies to
type Database struct {
	DB          *gorm.DB
	pingTimeout time.Duration
}

// Option configures a database connection
type Option func(*options)

// TracingPlugin instruments a connection, see telemetry.DBTracingPlugin
type TracingPlugin interface {
	RegisterOtelGorm(db *gorm.DB) error
}

type options struct {
	logger      gormlogger.Interface
	plugin      TracingPlugin
	dialector   gorm.Dialector
	pingTimeout time.Duration
}

// WithLogger sets the GORM logger. The default logs nothing.
func WithLogger(l gormlogger.Interface) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTracing registers a tracing plugin once the connection is open
func WithTracing(plugin TracingPlugin) Option {
	return func(o *options) {
		o.plugin = plugin
	}
}

// WithDialector opens d instead of the postgres DSN built from the config
func WithDialector(d gorm.Dialector) Option {
	return func(o *options) {
		o.dialector = d
	}
}

// WithPingTimeout bounds the connectivity checks
func WithPingTimeout(d time.Duration) Option {
	return func(o *options) {
		o.pingTimeout = d
	}
}

// NewDatabase opens the shop database, applies the pool settings and checks
// that it answers
func NewDatabase(ctx context.Context, cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	o := options{
		logger:      gormlogger.Default.LogMode(gormlogger.Silent),
		pingTimeout: defaultPingTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialector == nil {
		o.dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(o.dialector, &gorm.Config{
		Logger:                 o.logger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	d := &Database{DB: db, pingTimeout: o.pingTimeout}
	if err := d.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	if o.plugin != nil {
		if err := o.plugin.RegisterOtelGorm(db); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}
	return d, nil
}

// Ping checks that the database answers within the ping timeout
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if d.pingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.pingTimeout)
		defer cancel()
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
