// Command planctl is the operator tool for the plans table.
//
//	planctl [-config file] [-dry-run] <command> [flags]
//
// Commands: migrate, seed, deactivate, set-stripe, sync-stripe, export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Spok95/plan-catalog/internal/admin"
	"github.com/Spok95/plan-catalog/internal/config"
	"github.com/Spok95/plan-catalog/internal/domain/plans"
	"github.com/Spok95/plan-catalog/internal/infra/db"
	"github.com/Spok95/plan-catalog/internal/infra/logger"
	"github.com/Spok95/plan-catalog/internal/infra/migrations"
	"github.com/Spok95/plan-catalog/internal/infra/stripe"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "planctl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("planctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	dryRun := global.Bool("dry-run", false, "log the changes without writing them")
	global.Usage = func() {
		fmt.Fprintln(stderr, "usage: planctl [-config file] [-dry-run] <migrate|seed|deactivate|set-stripe|sync-stripe|export> [flags]")
		global.PrintDefaults()
	}
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	cmd, cmdArgs := global.Arg(0), global.Args()[1:]
	fs := flag.NewFlagSet("planctl "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		file      *string
		keep      *string
		planID    *string
		productID *string
		priceID   *string
		out       *string
	)
	switch cmd {
	case "migrate", "sync-stripe":
	case "seed":
		file = fs.String("file", "plans.yaml", "YAML plan definitions")
	case "deactivate":
		keep = fs.String("keep", "", "comma-separated plan ids that stay active")
	case "set-stripe":
		planID = fs.String("id", "", "plan id")
		productID = fs.String("product", "", "stripe product id (prod_...)")
		priceID = fs.String("price", "", "stripe price id (price_...)")
	case "export":
		out = fs.String("out", "plans.xlsx", "destination xlsx file")
	default:
		fmt.Fprintf(stderr, "planctl: unknown command %q\n", cmd)
		global.Usage()
		return errUsage
	}
	if err := fs.Parse(cmdArgs); err != nil {
		return errUsage
	}
	if cmd == "set-stripe" && (*planID == "" || *productID == "" || *priceID == "") {
		fmt.Fprintln(stderr, "planctl set-stripe: -id, -product and -price are required")
		return errUsage
	}
	if cmd == "deactivate" && strings.TrimSpace(*keep) == "" {
		fmt.Fprintln(stderr, "planctl deactivate: -keep is required")
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if cmd == "sync-stripe" {
		if err := cfg.RequireStripe(); err != nil {
			return err
		}
	}
	log := logger.NewWithWriter(stderr, cfg.App.Env, "planctl")

	if cmd == "migrate" {
		if *dryRun {
			fmt.Fprintln(stdout, "migrate: skipped (dry run)")
			return nil
		}
		if err := migrations.Up(ctx, cfg.Postgres.DSN, log); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "migrate: done")
		return nil
	}

	pool, err := db.Connect(ctx, cfg.Postgres.DSN, 1)
	if err != nil {
		return err
	}
	defer pool.Close()

	a := admin.New(plans.NewRepo(pool), log, *dryRun)

	var res admin.Result
	switch cmd {
	case "seed":
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defs, err := admin.LoadDefinitions(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		res, err = a.Seed(ctx, defs)
		if err != nil {
			return err
		}
	case "deactivate":
		res, err = a.DeactivateExcept(ctx, strings.Split(*keep, ","))
		if err != nil {
			return err
		}
	case "set-stripe":
		res, err = a.SetStripeIDs(ctx, *planID, *productID, *priceID)
		if err != nil {
			return err
		}
	case "sync-stripe":
		res, err = a.SyncStripe(ctx, stripe.NewLookup(cfg.Stripe.SecretKey))
		if err != nil {
			return err
		}
	case "export":
		return export(ctx, a, *out, stdout)
	}

	fmt.Fprintln(stdout, res.Summary())
	for _, c := range res.Changes {
		fmt.Fprintf(stdout, "  %s.%s: %q -> %q\n", c.PlanID, c.Field, c.Before, c.After)
	}
	fmt.Fprintf(stdout, "run id: %s\n", a.RunID())
	return nil
}

func export(ctx context.Context, a *admin.Admin, path string, stdout io.Writer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := a.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "export: %d plans written to %s\n", n, path)
	return nil
}
