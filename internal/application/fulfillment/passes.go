package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// CommandName names a cron pass
type CommandName string

const (
	CommandCreateOrders   CommandName = "co"
	CommandInsertArticles CommandName = "ia"
	CommandGetInventory   CommandName = "gi"
)

// ErrUnknownCommand is returned for an option string without a known pass
var ErrUnknownCommand = errors.New("fulfillment: no options specified")

// Command is a decoded cron option string
type Command struct {
	Name      CommandName
	Selection ArticleSelection
	Flag      warehouse.ChangeFlag
}

// ParseCommand decodes an option string such as "co", "gi" or "ia;ax;U".
// The article pass defaults to all articles and the insert flag.
func ParseCommand(opt string) (Command, error) {
	parts := strings.Split(strings.TrimSpace(opt), ";")
	cmd := Command{Name: CommandName(strings.TrimSpace(parts[0]))}

	switch cmd.Name {
	case CommandCreateOrders, CommandGetInventory:
		return cmd, nil
	case CommandInsertArticles:
		cmd.Selection = SelectAll
		cmd.Flag = warehouse.ChangeInsert
		if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
			cmd.Selection = ArticleSelection(strings.TrimSpace(parts[1]))
		}
		if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
			cmd.Flag = warehouse.ChangeFlag(strings.ToUpper(strings.TrimSpace(parts[2])))
		}
		switch cmd.Selection {
		case SelectActive, SelectInactive, SelectAll:
		default:
			return Command{}, fmt.Errorf("%w: article selection %q", ErrUnknownCommand, string(cmd.Selection))
		}
		if !cmd.Flag.IsValid() {
			return Command{}, fmt.Errorf("%w: change flag %q", ErrUnknownCommand, string(cmd.Flag))
		}
		return cmd, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, opt)
	}
}

// String renders the command back into its option string
func (c Command) String() string {
	if c.Name == CommandInsertArticles {
		return fmt.Sprintf("%s;%s;%s", c.Name, c.Selection, c.Flag)
	}
	return string(c.Name)
}

// PassReport summarizes one cron pass
type PassReport struct {
	Command   Command `json:"command"`
	Processed int     `json:"processed"`
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
}

// Passes runs the cron passes over staged shop records
type Passes struct {
	service   *Service
	inventory *InventorySync
	source    RecordSource
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewPasses creates a new pass runner
func NewPasses(service *Service, inventory *InventorySync, source RecordSource, logger *zap.Logger) *Passes {
	return &Passes{
		service:   service,
		inventory: inventory,
		source:    source,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger.Named("passes"),
	}
}

// Run executes one pass
func (p *Passes) Run(ctx context.Context, cmd Command) (PassReport, error) {
	var (
		report PassReport
		err    error
	)
	switch cmd.Name {
	case CommandCreateOrders:
		report, err = p.createOrders(ctx)
	case CommandInsertArticles:
		report, err = p.insertArticles(ctx, cmd.Selection, cmd.Flag)
	case CommandGetInventory:
		report, err = p.getInventory(ctx)
	default:
		return PassReport{}, fmt.Errorf("%w: %q", ErrUnknownCommand, string(cmd.Name))
	}
	report.Command = cmd
	if err != nil {
		return report, err
	}

	p.logger.Info("Pass completed",
		zap.String("command", cmd.String()),
		zap.Int("processed", report.Processed),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// createOrders sends every staged order that has not been accepted yet
func (p *Passes) createOrders(ctx context.Context) (PassReport, error) {
	var report PassReport
	orders, err := p.source.PendingOrders(ctx)
	if err != nil {
		return report, fmt.Errorf("load pending orders: %w", err)
	}

	for _, order := range orders {
		report.Processed++
		if err := p.validate.StructCtx(ctx, order); err != nil {
			p.reject(ctx, TagCreateOrder, fmt.Errorf("%w: order %s: %v", warehouse.ErrInvalidRecord, order.OrderNumber, err))
			report.Failed++
			continue
		}

		env := p.service.SendOrder(ctx, order, false)
		if !env.Success || env.Outcome != warehouse.OutcomeAccepted {
			report.Failed++
			continue
		}
		if err := p.source.MarkOrderSent(ctx, order.OrderID); err != nil {
			p.logger.Error("Failed to mark order as sent",
				zap.Int64("order_id", order.OrderID), zap.Error(err))
		}
		report.Succeeded++
	}
	return report, nil
}

func (p *Passes) insertArticles(ctx context.Context, selection ArticleSelection, flag warehouse.ChangeFlag) (PassReport, error) {
	var report PassReport
	articles, err := p.source.Articles(ctx, selection)
	if err != nil {
		return report, fmt.Errorf("load articles: %w", err)
	}

	for _, article := range articles {
		report.Processed++
		if err := p.validate.StructCtx(ctx, article); err != nil {
			p.reject(ctx, TagInsertArticle, fmt.Errorf("%w: article %s: %v", warehouse.ErrInvalidRecord, article.ArticleNumber, err))
			report.Failed++
			continue
		}

		env := p.service.SendArticle(ctx, article, flag)
		if !env.Success {
			report.Failed++
			continue
		}
		report.Succeeded++
	}
	return report, nil
}

func (p *Passes) getInventory(ctx context.Context) (PassReport, error) {
	report := PassReport{Processed: 1}
	env := p.inventory.Sync(ctx)
	if !env.Success {
		report.Failed = 1
		return report, nil
	}
	report.Succeeded = env.Data
	return report, nil
}

func (p *Passes) reject(ctx context.Context, tag string, err error) {
	p.service.logFailure(ctx, tag, err, true)
}
