// Command exmail-sync copies the corporate mail directory and activity logs
// into PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/and161185/exmail-sync/internal/config"
	"github.com/and161185/exmail-sync/internal/errs"
	"github.com/and161185/exmail-sync/internal/migrate"
	"github.com/and161185/exmail-sync/internal/model"
	"github.com/and161185/exmail-sync/internal/repository/postgres"
	"github.com/and161185/exmail-sync/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func usage() {
	fmt.Fprintf(os.Stderr, `exmail-sync
Usage:
  exmail-sync [-config file] <cmd> [args]

Commands:
  version
  init-db                                  apply schema migrations
  sync-departments                         walk and store the department tree
  sync-users      [-dept id] [-fetch-child]  store the mailbox roster
  sync-dept-users -dept id                 roster of one department without descendants
  sync-login      [-days N]
  sync-mail       [-days N]
  sync-op         [-days N]
  set-alias       -file <tsv> -domain <domain>
`)
	os.Exit(2)
}

// main loads configuration, builds the logger and dispatches a subcommand.
func main() {
	configPath := flag.String("config", "", "config file (YAML); defaults to $"+config.PathEnvVar+" or ./config.yaml")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	if cmd == "version" {
		fmt.Printf("exmail-sync %s (%s)\n", version, buildDate)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail(err)
	}
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		fail(err)
	}
	defer a.close()

	logger.Info("starting", zap.String("version", version), zap.String("command", cmd))
	if err := run(ctx, a, cmd, flag.Args()[1:], time.Now()); err != nil {
		logger.Error("command failed", zap.String("command", cmd), zap.Error(err))
		a.close()
		_ = logger.Sync()
		fail(err)
	}
}

var errUnknownCommand = errors.New("unknown command")

// run executes one subcommand. Partial failures are logged by the services
// and do not produce an error.
func run(ctx context.Context, a *app, cmd string, args []string, now time.Time) error {
	switch cmd {
	case "init-db":
		if err := migrate.Up(ctx, a.cfg.Database.DSN, a.log); err != nil {
			return err
		}
		fmt.Println("schema is up to date")
		return nil

	case "sync-departments":
		return syncDepartments(ctx, a)

	case "sync-users":
		fs := flag.NewFlagSet("sync-users", flag.ContinueOnError)
		dept := fs.Int64("dept", model.RootDepartmentID, "department id")
		child := fs.Bool("fetch-child", a.cfg.Sync.FetchChild, "include descendant departments")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return syncUsers(ctx, a, *dept, *child, false)

	case "sync-dept-users":
		fs := flag.NewFlagSet("sync-dept-users", flag.ContinueOnError)
		dept := fs.Int64("dept", 0, "department id (required)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *dept <= 0 {
			return errors.New("sync-dept-users: -dept is required")
		}
		return syncUsers(ctx, a, *dept, false, true)

	case "sync-login", "sync-mail", "sync-op":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		days := fs.Int("days", a.cfg.Sync.Days, "number of past days to cover")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *days < 0 {
			return fmt.Errorf("%s: -days must be >= 0", cmd)
		}
		from, to := lastDays(now, *days)
		return syncLogs(ctx, a, logCategories[cmd], from, to)

	case "set-alias":
		fs := flag.NewFlagSet("set-alias", flag.ContinueOnError)
		file := fs.String("file", "", "tab-separated file: userid, name, alias")
		domain := fs.String("domain", "", "mail domain appended to userid")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *file == "" || *domain == "" {
			return errors.New("set-alias: -file and -domain are required")
		}
		return setAlias(ctx, a, *file, *domain)
	}
	return fmt.Errorf("%w: %q", errUnknownCommand, cmd)
}

var logCategories = map[string]model.LogCategory{
	"sync-login": model.CategoryLogin,
	"sync-mail":  model.CategoryMail,
	"sync-op":    model.CategoryOperation,
}

func syncDepartments(ctx context.Context, a *app) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	api, err := a.contactClient()
	if err != nil {
		return err
	}
	n, err := service.NewDepartmentWalker(api, postgres.NewDepartmentRepo(db), a.log).Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d departments\n", n)
	return nil
}

// syncUsers stores the roster of dept; strict requires dept to be known locally.
func syncUsers(ctx context.Context, a *app, dept int64, fetchChild, strict bool) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	if strict {
		d, err := postgres.NewDepartmentRepo(db).Get(ctx, dept)
		if errors.Is(err, errs.ErrNotFound) {
			return fmt.Errorf("department %d is unknown, run sync-departments first: %w", dept, err)
		}
		if err != nil {
			return err
		}
		a.log.Info("syncing department", zap.Int64("department", d.ID), zap.String("name", d.Name))
	}
	api, err := a.contactClient()
	if err != nil {
		return err
	}
	n, err := service.NewDirectorySync(api, postgres.NewMailboxRepo(db), a.log).SyncMailboxes(ctx, dept, fetchChild)
	if err != nil {
		return err
	}
	fmt.Printf("stored %d mailboxes\n", n)
	return nil
}

func syncLogs(ctx context.Context, a *app, category model.LogCategory, from, to time.Time) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	api, err := a.logClient()
	if err != nil {
		return err
	}
	s := service.NewLogSync(api, postgres.NewMailboxRepo(db), postgres.NewLogRepo(db), a.cfg.Sync.Parallel, a.log)
	st, err := s.SyncLogs(ctx, category, from, to)
	if err != nil {
		return err
	}
	printStats(os.Stdout, category, st)
	return nil
}

func printStats(w io.Writer, category model.LogCategory, st service.SyncStats) {
	fmt.Fprintf(w, "%s: mailboxes=%d failed=%d records=%d stored=%d\n",
		category, st.Mailboxes, st.Failed, st.Records, st.Stored)
}

func setAlias(ctx context.Context, a *app, path, domain string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	api, err := a.contactClient()
	if err != nil {
		return err
	}
	st, err := service.NewAliasImporter(api, a.log).ImportFile(ctx, f, domain)
	if err != nil {
		return err
	}
	fmt.Printf("aliases: lines=%d updated=%d failed=%d\n", st.Lines, st.Updated, st.Failed)
	return nil
}

// fail prints err and exits with status 1.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
