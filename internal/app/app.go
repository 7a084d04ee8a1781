package app

import (
	"context"

	"github.com/olusolaa/oneroster-parity/internal/config"
	"github.com/olusolaa/oneroster-parity/internal/core/domain"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
)

// Application runs one comparison and owns the backends it opened.
type Application struct {
	Engine   ports.ParityEngine
	Reporter ports.Reporter
	Logger   ports.Logger
	Config   *config.Config

	closers []func() error
}

func NewApplication(engine ports.ParityEngine, reporter ports.Reporter, logger ports.Logger, closers ...func() error) *Application {
	return &Application{
		Engine:   engine,
		Reporter: reporter,
		Logger:   logger,
		closers:  closers,
	}
}

// Run executes the comparison and renders the report. A partial report is
// still rendered when the run is cancelled. Backends are closed on every
// path.
func (a *Application) Run(ctx context.Context) (domain.RunReport, error) {
	defer a.close(ctx)

	a.Logger.Infof(ctx, "Starting parity comparison...")
	report, runErr := a.Engine.Run(ctx)
	if runErr != nil {
		a.Logger.Errorf(ctx, runErr, "Parity comparison stopped early")
	}

	if err := a.Reporter.Report(context.WithoutCancel(ctx), report); err != nil {
		a.Logger.Errorf(ctx, err, "Rendering the report failed")
		if runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return report, runErr
	}

	a.Logger.Infof(ctx, "Parity comparison finished: %d/%d endpoints identical", report.Summary.Identical, report.Summary.Total)
	return report, nil
}

func (a *Application) close(ctx context.Context) {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.Logger.Warnf(ctx, "Closing backend failed: %v", err)
		}
	}
	a.closers = nil
}
