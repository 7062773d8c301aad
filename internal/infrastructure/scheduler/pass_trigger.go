// Package scheduler runs the fulfillment passes on an interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/infrastructure/logger"
)

// PassRunner executes one pass, see fulfillment.Passes
type PassRunner interface {
	Run(ctx context.Context, cmd fulfillment.Command) (fulfillment.PassReport, error)
}

var _ PassRunner = (*fulfillment.Passes)(nil)

// PassTriggerConfig holds configuration for the pass trigger
type PassTriggerConfig struct {
	// Interval between two rounds
	Interval time.Duration

	// Commands run in order on every round
	Commands []fulfillment.Command

	// RunOnStart runs a round right after Start instead of waiting one interval
	RunOnStart bool

	// Precheck, when set, runs before every round. A failing precheck skips
	// the round, e.g. while the shop database is unreachable.
	Precheck func(ctx context.Context) error
}

// DefaultPassTriggerConfig returns the default configuration: orders, then
// inventory, every 15 minutes
func DefaultPassTriggerConfig() PassTriggerConfig {
	return PassTriggerConfig{
		Interval: 15 * time.Minute,
		Commands: []fulfillment.Command{
			{Name: fulfillment.CommandCreateOrders},
			{Name: fulfillment.CommandGetInventory},
		},
	}
}

// Validate checks the configuration
func (c PassTriggerConfig) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if len(c.Commands) == 0 {
		return fmt.Errorf("%w: no commands", ErrInvalidConfig)
	}
	return nil
}

// RoundReport is the outcome of one round
type RoundReport struct {
	RunID   string
	Reports []fulfillment.PassReport
	Errors  map[string]error
}

// PassTrigger runs the configured passes on a fixed interval. Rounds never
// overlap: a tick that arrives while a round runs is dropped.
type PassTrigger struct {
	config PassTriggerConfig
	runner PassRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	inRound   bool
	lastRound time.Time
}

// NewPassTrigger creates a new pass trigger
func NewPassTrigger(config PassTriggerConfig, runner PassRunner, logger *zap.Logger) (*PassTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &PassTrigger{
		config: config,
		runner: runner,
		logger: logger.Named("pass_trigger"),
	}, nil
}

// Start starts the trigger loop
func (p *PassTrigger) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.runLoop(ctx)

	commands := make([]string, len(p.config.Commands))
	for i, cmd := range p.config.Commands {
		commands[i] = cmd.String()
	}
	p.logger.Info("Pass trigger started",
		zap.Duration("interval", p.config.Interval),
		zap.Strings("commands", commands),
	)
	return nil
}

// Stop stops the trigger and waits for a running round to finish or for
// ctx to expire
func (p *PassTrigger) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("Pass trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the trigger loop is active
func (p *PassTrigger) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isRunning
}

// LastRound returns when the last round started, zero before the first
func (p *PassTrigger) LastRound() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRound
}

func (p *PassTrigger) runLoop(ctx context.Context) {
	defer p.wg.Done()

	if p.config.RunOnStart {
		p.tick(ctx)
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *PassTrigger) tick(ctx context.Context) {
	if _, err := p.RunRound(ctx); err != nil {
		p.logger.Warn("Skipping pass round", zap.Error(err))
	}
}

// RunRound runs every configured command once. A failing pass is logged and
// the round moves on to the next one. It returns ErrRoundInProgress when
// another round is running.
func (p *PassTrigger) RunRound(ctx context.Context) (RoundReport, error) {
	p.mu.Lock()
	if p.inRound {
		p.mu.Unlock()
		return RoundReport{}, ErrRoundInProgress
	}
	p.inRound = true
	p.lastRound = time.Now()
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inRound = false
		p.mu.Unlock()
	}()

	if p.config.Precheck != nil {
		if err := p.config.Precheck(ctx); err != nil {
			return RoundReport{}, fmt.Errorf("%w: %w", ErrPrecheckFailed, err)
		}
	}

	round := RoundReport{RunID: uuid.NewString(), Errors: map[string]error{}}
	ctx, log := logger.WithRun(ctx, p.logger, round.RunID, "round")

	for _, cmd := range p.config.Commands {
		if ctx.Err() != nil {
			return round, ctx.Err()
		}
		report, err := p.runner.Run(ctx, cmd)
		round.Reports = append(round.Reports, report)
		if err != nil {
			round.Errors[cmd.String()] = err
			log.Error("Pass failed", zap.String("command", cmd.String()), zap.Error(err))
		}
	}
	return round, nil
}
