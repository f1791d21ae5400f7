// Command hours manages learner study sessions from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpggio/learnerhours/internal/config"
	"github.com/rpggio/learnerhours/internal/domain/hours"
	"github.com/rpggio/learnerhours/internal/storage"
)

const usage = `usage: hours <command> [flags]

commands:
  list                          list sessions, newest first
  add -date D -start T -end T   log a session
  edit (-id ID | -at N) [-date D] [-start T] [-end T]
  delete (-id ID | -at N)
  search QUERY                  sessions whose date contains QUERY
  total                         total study time
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := storage.Open(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
		os.Exit(1)
	}
	svc := hours.NewService(backends.KV, logger, hours.WithKey(cfg.Store.Key))

	err = run(ctx, svc, os.Args[1:], os.Stdout)
	if closeErr := backends.Close(); closeErr != nil {
		logger.Warn("failed to close storage", "error", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hours: %v\n", err)
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, svc *hours.Service, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "list":
		sessions, err := svc.List(ctx)
		if err != nil {
			return err
		}
		printSessions(out, sessions)
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No study sessions logged yet.")
		}
		return nil

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		fs.SetOutput(out)
		in := inputFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		sess, err := hours.NewEditor(svc).Submit(ctx, *in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "logged %s\n", sess.Describe())
		return nil

	case "edit":
		fs := flag.NewFlagSet("edit", flag.ContinueOnError)
		fs.SetOutput(out)
		id, at := targetFlags(fs)
		in := inputFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := checkTarget(*id, *at); err != nil {
			return err
		}

		editor := hours.NewEditor(svc)
		var current hours.Session
		var err error
		if *at >= 0 {
			current, err = editor.BeginAt(ctx, *at)
		} else {
			current, err = editor.Begin(ctx, *id)
		}
		if err != nil {
			return err
		}
		// Unset flags keep the loaded values, as a prefilled form would.
		if in.Date == "" {
			in.Date = current.Date
		}
		if in.StartTime == "" {
			in.StartTime = current.StartTime
		}
		if in.EndTime == "" {
			in.EndTime = current.EndTime
		}
		sess, err := editor.Submit(ctx, *in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "updated %s\n", sess.Describe())
		return nil

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		fs.SetOutput(out)
		id, at := targetFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := checkTarget(*id, *at); err != nil {
			return err
		}
		var err error
		if *at >= 0 {
			err = svc.DeleteAt(ctx, *at)
		} else {
			err = svc.Delete(ctx, *id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "deleted")
		return nil

	case "search":
		if len(args) != 1 {
			return fmt.Errorf("%w: search takes one query", errUsage)
		}
		result, err := svc.Search(ctx, args[0])
		if err != nil {
			return err
		}
		switch {
		case result.CollectionEmpty():
			fmt.Fprintln(out, "No study sessions logged yet.")
		case result.NoResults():
			fmt.Fprintf(out, "No sessions found for %q.\n", result.Query)
		default:
			printSessions(out, result.Sessions)
		}
		return nil

	case "total":
		total, err := svc.TotalDuration(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Total study time: %s\n", total)
		return nil

	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func inputFlags(fs *flag.FlagSet) *hours.Input {
	in := &hours.Input{}
	fs.StringVar(&in.Date, "date", "", "session date (YYYY-MM-DD)")
	fs.StringVar(&in.StartTime, "start", "", "start time (HH:MM)")
	fs.StringVar(&in.EndTime, "end", "", "end time (HH:MM)")
	return in
}

func targetFlags(fs *flag.FlagSet) (*string, *int) {
	id := fs.String("id", "", "session id")
	at := fs.Int("at", -1, "session position in list order, starting at 0")
	return id, at
}

// checkTarget requires exactly one of an id or a list position.
func checkTarget(id string, at int) error {
	switch {
	case id != "" && at >= 0:
		return fmt.Errorf("%w: use either -id or -at", errUsage)
	case id == "" && at < 0:
		return fmt.Errorf("%w: -id or -at is required", errUsage)
	}
	return nil
}

func printSessions(out io.Writer, sessions []hours.Session) {
	for i, sess := range sessions {
		fmt.Fprintf(out, "%2d  %s  %s\n", i, sess.Describe(), sess.ID)
	}
}
