package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/yellowcube/internal/application/fulfillment"
	"github.com/erp/yellowcube/internal/domain/warehouse"
	"github.com/erp/yellowcube/internal/infrastructure/config"
	"github.com/erp/yellowcube/internal/infrastructure/scheduler"
)

// errNotAccepted is returned when the provider replied but did not accept
var errNotAccepted = errors.New("reply not accepted")

// stdout receives command results as JSON
var stdout io.Writer = os.Stdout

type command struct {
	summary string
	run     func(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error
}

var commandOrder = []string{"run", "serve", "article", "order", "status", "inventory", "eori", "list", "invoice", "purge-logs"}

var commands = map[string]command{
	"run":        {"Run passes once: co, gi, \"ia;ax;U\"", withApp(true, runPasses)},
	"serve":      {"Run passes every yellowcube.pass_interval until interrupted", withApp(true, servePasses)},
	"article":    {"Send or stage articles from a JSON file", withApp(true, sendArticles)},
	"order":      {"Send or stage orders from a JSON file", withApp(true, sendOrders)},
	"status":     {"Query the status of a sent article or order", withApp(true, queryStatus)},
	"inventory":  {"Fetch the warehouse stock and store it", withApp(true, syncInventory)},
	"eori":       {"Show or set the EORI number of an order", withApp(false, eori)},
	"list":       {"List articles, orders, inventory or logs", withApp(false, list)},
	"invoice":    {"Upload a rendered invoice for an order", withApp(false, uploadInvoice)},
	"purge-logs": {"Delete error log entries older than a duration", withApp(false, purgeLogs)},
}

// withApp wires the connector before running fn. provider also connects
// the SOAP side.
func withApp(provider bool, fn func(ctx context.Context, a *app, args []string) error) func(context.Context, *config.Config, *zap.Logger, []string) error {
	return func(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		if provider {
			if err := a.connectProvider(ctx); err != nil {
				return err
			}
		}
		return fn(ctx, a, args)
	}
}

func runPasses(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: run <co|gi|ia[;ax|ix|xx[;I|U|D]]>...", flag.ErrHelp)
	}

	reports := make([]fulfillment.PassReport, 0, len(args))
	var failed bool
	for _, opt := range args {
		cmd, err := a.parseCommand(opt)
		if err != nil {
			return err
		}
		report, err := a.passes.Run(ctx, cmd)
		if err != nil {
			return fmt.Errorf("pass %s: %w", cmd, err)
		}
		failed = failed || report.Failed > 0
		reports = append(reports, report)
	}
	if err := writeJSON(reports); err != nil {
		return err
	}
	if failed {
		return errNotAccepted
	}
	return nil
}

func servePasses(ctx context.Context, a *app, args []string) error {
	cfg := scheduler.DefaultPassTriggerConfig()
	cfg.Interval = a.cfg.Yellowcube.PassInterval
	cfg.RunOnStart = true
	cfg.Precheck = a.db.Ping
	if len(args) > 0 {
		cfg.Commands = cfg.Commands[:0]
		for _, opt := range args {
			cmd, err := a.parseCommand(opt)
			if err != nil {
				return err
			}
			cfg.Commands = append(cfg.Commands, cmd)
		}
	}

	trigger, err := scheduler.NewPassTrigger(cfg, a.passes, a.log)
	if err != nil {
		return err
	}
	if err := trigger.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Yellowcube.Timeout+10*time.Second)
	defer cancel()
	return trigger.Stop(stopCtx)
}

func sendArticles(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("article", flag.ContinueOnError)
	file := fs.String("file", "", "JSON file with one article or a list of articles")
	changeFlag := fs.String("flag", a.cfg.Yellowcube.ArticleFlag, "Change flag: I insert, U update, D delete")
	stage := fs.Bool("stage", false, "Stage the articles for the article pass instead of sending them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var articles []warehouse.ArticleRecord
	if err := readRecords(*file, &articles); err != nil {
		return err
	}

	if *stage {
		for _, article := range articles {
			if err := a.staged.StageArticle(ctx, article); err != nil {
				return err
			}
		}
		return writeJSON(map[string]int{"staged": len(articles)})
	}

	flagValue := warehouse.ChangeFlag(strings.ToUpper(*changeFlag))
	if !flagValue.IsValid() {
		return fmt.Errorf("%w: change flag %q", flag.ErrHelp, *changeFlag)
	}

	results := make([]warehouse.ResultEnvelope[*warehouse.GenericResponse], 0, len(articles))
	accepted := true
	for _, article := range articles {
		res := a.service.SendArticle(ctx, article, flagValue)
		accepted = accepted && res.Success && res.Outcome != warehouse.OutcomeNotAccepted
		results = append(results, res)
	}
	return finish(results, accepted)
}

func sendOrders(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	file := fs.String("file", "", "JSON file with one order or a list of orders")
	isReturn := fs.Bool("return", false, "Send as return orders")
	stage := fs.Bool("stage", false, "Stage the orders for the order pass instead of sending them")
	prepaid := fs.Bool("prepaid", true, "Staged orders are paid and may be sent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var orders []warehouse.OrderRecord
	if err := readRecords(*file, &orders); err != nil {
		return err
	}

	if *stage {
		for _, order := range orders {
			if err := a.staged.StageOrder(ctx, order, *prepaid); err != nil {
				return err
			}
		}
		return writeJSON(map[string]int{"staged": len(orders)})
	}

	results := make([]warehouse.ResultEnvelope[*warehouse.GenericResponse], 0, len(orders))
	accepted := true
	for _, order := range orders {
		res := a.service.SendOrder(ctx, order, *isReturn)
		accepted = accepted && res.Success && res.Outcome != warehouse.OutcomeNotAccepted
		results = append(results, res)
	}
	return finish(results, accepted)
}

func queryStatus(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	id := fs.Int64("id", 0, "Article or order id")
	messageType := fs.String("type", string(warehouse.MessageOrder), "Message type: ART, WAB or WAR")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("%w: -id is required", flag.ErrHelp)
	}
	mt, err := warehouse.ParseMessageType(strings.ToUpper(*messageType))
	if err != nil {
		return err
	}

	res := a.service.QueryStatus(ctx, *id, mt)
	return finish(res, res.Success && res.Outcome != warehouse.OutcomeNotAccepted)
}

func syncInventory(ctx context.Context, a *app, _ []string) error {
	res := a.sync.Sync(ctx)
	return finish(res, res.Success)
}

func eori(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("eori", flag.ContinueOnError)
	orderID := fs.Int64("order", 0, "Order id")
	set := fs.String("set", "", "Store this EORI number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *orderID <= 0 {
		return fmt.Errorf("%w: -order is required", flag.ErrHelp)
	}

	if *set != "" {
		if err := a.responses.SaveEori(ctx, *orderID, *set); err != nil {
			return err
		}
	}
	value, err := a.responses.Eori(ctx, *orderID)
	if err != nil {
		return err
	}
	return writeJSON(map[string]any{"ordid": *orderID, "eori": value})
}

func list(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: usage: list <articles|orders|inventory|logs> [-search text]", flag.ErrHelp)
	}
	what := args[0]
	fs := flag.NewFlagSet("list "+what, flag.ContinueOnError)
	search := fs.String("search", "", "Free-text filter")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	var (
		rows any
		err  error
	)
	switch what {
	case "articles":
		rows, err = a.responses.ListArticles(ctx, *search)
	case "orders":
		rows, err = a.responses.ListOrders(ctx, *search, a.cfg.Yellowcube.ManualOrderSend)
	case "inventory":
		rows, err = a.inventory.List(ctx, *search)
	case "logs":
		rows, err = a.errorLog.List(ctx, *search)
	default:
		return fmt.Errorf("%w: unknown list %q", flag.ErrHelp, what)
	}
	if err != nil {
		return err
	}
	return writeJSON(rows)
}

func uploadInvoice(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("invoice", flag.ContinueOnError)
	hash := fs.String("hash", "", "Invoice hash of the order")
	file := fs.String("file", "", "Rendered PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.documents == nil {
		return errors.New("storage.bucket is not configured")
	}
	if *hash == "" || *file == "" {
		return fmt.Errorf("%w: -hash and -file are required", flag.ErrHelp)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	if err := a.documents.UploadInvoice(ctx, *hash, data); err != nil {
		return err
	}
	return writeJSON(map[string]any{"key": a.documents.InvoiceKey(*hash), "bytes": len(data)})
}

func purgeLogs(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("purge-logs", flag.ContinueOnError)
	olderThan := fs.Duration("older-than", 30*24*time.Hour, "Delete entries older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	removed, err := a.errorLog.Purge(ctx, time.Now().Add(-*olderThan))
	if err != nil {
		return err
	}
	return writeJSON(map[string]int64{"removed": removed})
}

// readRecords decodes a JSON file holding one record or a list of records
// into out, which must point to a slice
func readRecords(path string, out any) error {
	if path == "" {
		return fmt.Errorf("%w: -file is required", flag.ErrHelp)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		data = append(append([]byte{'['}, data...), ']')
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func finish(result any, accepted bool) error {
	if err := writeJSON(result); err != nil {
		return err
	}
	if !accepted {
		return errNotAccepted
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
