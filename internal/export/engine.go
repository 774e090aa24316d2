package export

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"stravagpx/internal/config"
	"stravagpx/internal/logging"
	"stravagpx/internal/strava"
	"stravagpx/internal/trackfile"
)

// Source lists remote activities in the order they should be reconciled.
type Source interface {
	Activities(ctx context.Context) iter.Seq2[strava.Activity, error]
}

// Downloader fetches the GPX bytes of one activity. A
// *strava.ExportStatusError marks a per-activity failure; any other error
// aborts the run.
type Downloader interface {
	ExportGPX(ctx context.Context, activityID int64) ([]byte, error)
}

// Ledger records exported activities.
type Ledger interface {
	Exported(id int64) bool
	RecordExport(id int64, entry config.ExportedActivity) error
}

// Writer persists track files below the export directory.
type Writer interface {
	Prepare() error
	Write(rel string, data []byte) (string, error)
}

// Engine reconciles the remote feed against the ledger.
type Engine struct {
	source     Source
	downloader Downloader
	ledger     Ledger
	writer     Writer
	template   trackfile.Template

	filter    strava.SportType
	observers []Observer
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSportFilter restricts the run to one sport type. The empty value
// disables filtering.
func WithSportFilter(sportType strava.SportType) Option {
	return func(e *Engine) {
		e.filter = sportType
	}
}

// WithObserver registers an outcome observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observers = append(e.observers, observer)
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "export")
	}
}

// New creates an Engine.
func New(source Source, downloader Downloader, ledger Ledger, writer Writer, template trackfile.Template, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		downloader: downloader,
		ledger:     ledger,
		writer:     writer,
		template:   template,
		logger:     logging.NewComponentLogger(nil, "export"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run reconciles every activity of the feed. The returned report covers the
// activities processed so far, also when an error aborts the run.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	var report Report

	if err := e.writer.Prepare(); err != nil {
		return report, fmt.Errorf("prepare export directory: %w", err)
	}

	for activity, err := range e.source.Activities(ctx) {
		if err != nil {
			return report, fmt.Errorf("list activities: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome, err := e.reconcile(ctx, activity)
		if err != nil {
			return report, err
		}
		report.add(outcome)
		for _, observer := range e.observers {
			observer.Observe(ctx, outcome)
		}
	}

	e.logger.Info("export run finished",
		logging.Int("seen", report.Seen),
		logging.Int("exported", report.Exported),
		logging.Int("already_exported", report.AlreadyExported),
		logging.Int("filtered", report.Filtered),
		logging.Int("failed", report.Failed))
	return report, nil
}

func (e *Engine) reconcile(ctx context.Context, activity strava.Activity) (Outcome, error) {
	logger := e.logger.With(
		logging.Int64(logging.FieldActivityID, activity.ID),
		logging.String("name", activity.Name))

	if e.filter != "" && activity.SportType != e.filter {
		logger.Debug("activity skipped",
			logging.Args(logging.DecisionAttrs("sport_filter", "skip",
				fmt.Sprintf("sport type %s does not match %s", activity.SportType, e.filter))...)...)
		return Outcome{Activity: activity, Status: StatusFiltered}, nil
	}

	if e.ledger.Exported(activity.ID) {
		logger.Debug("activity skipped",
			logging.Args(logging.DecisionAttrs("ledger", "skip", "already exported")...)...)
		return Outcome{Activity: activity, Status: StatusAlreadyExported}, nil
	}

	rel := e.template.Resolve(activity)

	data, err := e.downloader.ExportGPX(ctx, activity.ID)
	if err != nil {
		var statusErr *strava.ExportStatusError
		if errors.As(err, &statusErr) {
			logging.WarnWithContext(logger, "gpx export failed", "export_failed",
				logging.Int("status_code", statusErr.StatusCode),
				logging.String(logging.FieldErrorHint, "check the session cookie jar or whether the activity has GPS data"),
				logging.String(logging.FieldImpact, "activity will be retried on the next run"))
			return Outcome{Activity: activity, Status: StatusFailed, Err: err}, nil
		}
		return Outcome{}, fmt.Errorf("export activity %d: %w", activity.ID, err)
	}

	path, err := e.writer.Write(rel, data)
	if err != nil {
		return Outcome{}, fmt.Errorf("write activity %d: %w", activity.ID, err)
	}

	entry := config.ExportedActivity{Name: activity.Name, StartDate: activity.StartDate.UTC()}
	if err := e.ledger.RecordExport(activity.ID, entry); err != nil {
		return Outcome{}, fmt.Errorf("record activity %d: %w", activity.ID, err)
	}

	logger.Info("activity exported",
		logging.String("sport_type", string(activity.SportType)),
		logging.String("path", path))
	return Outcome{Activity: activity, Status: StatusExported, Path: path}, nil
}
