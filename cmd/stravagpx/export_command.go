package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"stravagpx/internal/auth"
	"stravagpx/internal/config"
	"stravagpx/internal/cookies"
	"stravagpx/internal/export"
	"stravagpx/internal/history"
	"stravagpx/internal/logging"
	"stravagpx/internal/store"
	"stravagpx/internal/strava"
	"stravagpx/internal/trackfile"
)

func runExport(cmd *cobra.Command, cmdCtx *commandContext, filter strava.SportType) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	path, err := cmdCtx.configPath()
	if err != nil {
		return err
	}
	st, err := store.Open(path, nil)
	if err != nil {
		return err
	}
	defer st.Close()
	doc := st.Document()

	logger, err := newLogger(doc.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	st.SetLogger(logger)

	provider := auth.New(doc.API.ClientID, doc.API.ClientSecret, append([]auth.Option{
		auth.WithPrompt(cmd.InOrStdin(), out),
		auth.WithLogger(logger),
	}, cmdCtx.authOptions()...)...)
	token, err := provider.Ensure(ctx, st)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}

	jarPath, err := doc.CookieJarPath()
	if err != nil {
		return fmt.Errorf("resolve cookie jar path: %w", err)
	}
	jar, err := cookies.LoadOptional(jarPath, logger)
	if err != nil {
		return err
	}
	if jar.Len() == 0 {
		fmt.Fprintln(out, "Create a cookie jar for an existing Strava session")
	}

	exportDir, err := doc.ExportDir()
	if err != nil {
		return fmt.Errorf("resolve export path: %w", err)
	}
	template, err := trackfile.ParseTemplate(doc.ExportFormat)
	if err != nil {
		return err
	}

	client := strava.New(append([]strava.Option{
		strava.WithAccessToken(token.AccessToken),
		strava.WithCookies(jar.Cookies()),
	}, cmdCtx.clientOptions()...)...)

	athlete, err := client.Athlete(ctx)
	if err != nil {
		return fmt.Errorf("fetch athlete: %w", err)
	}
	fmt.Fprintf(out, "Hi %s\n", athlete.DisplayName())

	opts := []export.Option{
		export.WithSportFilter(filter),
		export.WithLogger(logger),
		export.WithObserver(progressPrinter(out)),
	}

	var run *history.Run
	if doc.History.Enabled {
		journal, journalRun, err := beginJournal(ctx, doc, filter, logger)
		if err != nil {
			return err
		}
		defer journal.Close()
		run = journalRun
		opts = append(opts, export.WithObserver(run))
	}

	engine := export.New(client, client, st, trackfile.NewWriter(exportDir), template, opts...)
	report, runErr := engine.Run(ctx)

	if run != nil {
		if err := run.Finish(context.WithoutCancel(ctx), report, runErr); err != nil {
			logging.WarnWithContext(logger, "failed to finish journal run", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run history is incomplete; the ledger is unaffected"))
		}
	}

	fmt.Fprintln(out, renderReport(report, shouldColorize(out)))
	if runErr != nil {
		return runErr
	}
	return nil
}

func beginJournal(ctx context.Context, doc config.Document, filter strava.SportType, logger *slog.Logger) (*history.Journal, *history.Run, error) {
	path, err := doc.HistoryPath()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve history path: %w", err)
	}
	journal, err := history.Open(ctx, path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	run, err := journal.BeginRun(ctx, filter)
	if err != nil {
		_ = journal.Close()
		return nil, nil, fmt.Errorf("begin history run: %w", err)
	}
	logger.Debug("journaling run", logging.String(logging.FieldRunID, run.ID()), logging.String("path", path))
	return journal, run, nil
}

// progressPrinter reports each outcome on the command output.
func progressPrinter(out io.Writer) export.Observer {
	return export.ObserverFunc(func(_ context.Context, outcome export.Outcome) {
		a := outcome.Activity
		when := a.StartDateLocal
		if when.IsZero() {
			when = a.StartDate
		}
		date := when.Format("2006-01-02 15:04")
		switch outcome.Status {
		case export.StatusFiltered:
			fmt.Fprintf(out, "Ignoring activity %s from %s with type %s.\n", a.Name, date, a.SportType)
		case export.StatusAlreadyExported:
			fmt.Fprintf(out, "Activity %s from %s already exported.\n", a.Name, date)
		case export.StatusFailed:
			fmt.Fprintf(out, "Export of activity %d failed: %v\n", a.ID, outcome.Err)
		case export.StatusExported:
			fmt.Fprintf(out, "Exported %d to %s\n", a.ID, outcome.Path)
		}
	})
}
