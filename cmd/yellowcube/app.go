package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/cache"
	"github.com/erp/yellowcube/internal/infrastructure/config"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
	"github.com/erp/yellowcube/internal/infrastructure/persistence"
	"github.com/erp/yellowcube/internal/infrastructure/soap"
	"github.com/erp/yellowcube/internal/infrastructure/storage"
	"github.com/erp/yellowcube/internal/infrastructure/telemetry"
)

// app holds the wired connector. The provider side (SOAP client, service,
// passes) is only built for commands that talk to the warehouse.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	telemetry *telemetry.Providers

	db        *persistence.Database
	responses *persistence.GormResponseRepository
	staged    *persistence.GormStagedRecordRepository
	inventory *persistence.GormInventoryRepository
	errorLog  *persistence.GormErrorLogRepository
	documents *storage.S3DocumentStore

	service *fulfillment.Service
	sync    *fulfillment.InventorySync
	passes  *fulfillment.Passes

	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		TracingEnabled:    cfg.Telemetry.Enabled,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Environment:       cfg.App.Env,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.telemetry = providers
	a.onClose(providers.Shutdown)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)

	db, err := persistence.NewDatabase(ctx, &cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithTracing(dbTracing),
	)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	a.db = db
	a.onClose(func(context.Context) error { return db.Close() })

	a.responses = persistence.NewGormResponseRepository(db.DB)
	a.staged = persistence.NewGormStagedRecordRepository(db.DB)
	a.inventory = persistence.NewGormInventoryRepository(db.DB)
	a.errorLog = persistence.NewGormErrorLogRepository(db.DB)

	if cfg.Storage.Bucket != "" {
		a.documents, err = storage.NewS3DocumentStore(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("failed to initialize invoice storage: %w", err)
		}
	}
	return a, nil
}

// connectProvider builds the SOAP client and the fulfillment services
func (a *app) connectProvider(ctx context.Context) error {
	if a.service != nil {
		return nil
	}
	cfg := a.cfg

	client, err := soap.NewClient(soap.Config{
		Endpoint:  cfg.Yellowcube.Endpoint,
		Namespace: cfg.Yellowcube.Namespace,
		Timeout:   cfg.Yellowcube.Timeout,
	}, &http.Client{Timeout: cfg.Yellowcube.Timeout}, a.log)
	if err != nil {
		return err
	}

	catalog := persistence.NewGormSnippetCatalog(a.db.DB, cfg.Yellowcube.SnippetLocaleID)
	builder := fulfillment.NewBuilder(settingsFromConfig(&cfg.Yellowcube), warehouse.NewPostalGate(catalog, a.errorLog,
		warehouse.WithSnippetNamespace(cfg.Yellowcube.SnippetNamespace),
	))

	a.service = fulfillment.NewService(builder, client, a.responses, a.responses, a.errorLog, a.log)
	if a.documents != nil {
		a.service.SetDocumentSource(a.documents)
	}

	guards := cache.NewGuardFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.GuardTTL,
		cache.WithLogger(a.log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	guard, err := guards.CreateGuard(ctx)
	if err != nil {
		return err
	}
	a.onClose(func(context.Context) error { return guard.Close() })
	a.service.SetSubmissionGuard(guard)

	if a.telemetry.MetricsEnabled() {
		metrics, err := telemetry.NewFulfillmentMetrics(a.telemetry.Meter())
		if err != nil {
			return err
		}
		a.service.SetMetrics(metrics)
	}

	a.sync = fulfillment.NewInventorySync(a.service, a.inventory, cfg.Yellowcube.ResetInventory, a.log)
	a.passes = fulfillment.NewPasses(a.service, a.sync, a.staged, a.log)
	return nil
}

// parseCommand decodes a pass option string. An article pass without its
// own flag takes the configured one.
func (a *app) parseCommand(opt string) (fulfillment.Command, error) {
	cmd, err := fulfillment.ParseCommand(opt)
	if err != nil {
		return fulfillment.Command{}, err
	}
	if cmd.Name == fulfillment.CommandInsertArticles && strings.Count(opt, ";") < 2 {
		cmd.Flag = warehouse.ChangeFlag(strings.ToUpper(a.cfg.Yellowcube.ArticleFlag))
	}
	return cmd, nil
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Error("Error during shutdown", zap.Error(err))
		}
	}
	a.closers = nil
}

// settingsFromConfig maps the provider configuration onto builder settings
func settingsFromConfig(yc *config.YellowcubeConfig) fulfillment.Settings {
	return fulfillment.Settings{
		Sender:        yc.Sender,
		Receiver:      yc.Receiver,
		OperatingMode: yc.OperatingMode,
		Version:       yc.Version,
		TransMaxTime:  yc.TransMaxTime,

		DepositorNo: yc.DepositorNo,
		PlantID:     yc.PlantID,
		PartnerNo:   yc.PartnerNo,
		PartnerType: yc.PartnerType,

		NetWeightISO:     yc.NetWeightISO,
		GrossWeightISO:   yc.GrossWeightISO,
		LengthISO:        warehouse.UnitCode(yc.LengthISO),
		WidthISO:         warehouse.UnitCode(yc.WidthISO),
		HeightISO:        warehouse.UnitCode(yc.HeightISO),
		VolumeISO:        warehouse.VolumeCode(yc.VolumeISO),
		EANType:          yc.EANType,
		AlternateUnitISO: yc.AlternateUnitISO,

		QuantityISO:        yc.QuantityISO,
		DocType:            yc.DocType,
		DocMimeType:        yc.DocMimeType,
		OrderDocumentsFlag: yc.OrderDocumentsFlag,

		ResetInventory: yc.ResetInventory,
	}
}
