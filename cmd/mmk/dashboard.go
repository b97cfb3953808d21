package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/domain/model"
)

const dashboardAlertLimit = 10

type dashboardView struct {
	Stats  model.AlertStats `json:"stats"`
	Alerts []model.Alert    `json:"alerts"`
	Jobs   []model.Job      `json:"jobs"`
}

func runDashboard(cmdCtx *commandContext, args []string) error {
	opts, err := parseOutputFlags("dashboard", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		view, err := fetchDashboard(ctx, rt)
		if err != nil {
			return err
		}

		if opts.wantsJSON() {
			return renderJSON(opts, view)
		}
		return renderDashboard(view)
	})
}

// fetchDashboard gathers the three panels concurrently. A failure in any
// fetch fails the command; partial dashboards would hide outages.
func fetchDashboard(ctx context.Context, rt *bootstrap.Runtime) (dashboardView, error) {
	var view dashboardView

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := rt.Alerts.Stats(gctx)
		if err != nil {
			return fmt.Errorf("fetch alert stats: %w", err)
		}
		view.Stats = stats
		return nil
	})
	g.Go(func() error {
		list, err := rt.Alerts.List(gctx, model.AlertListOptions{
			Unresolved: true,
			Sort:       "fired_at",
			Dir:        "desc",
			Limit:      dashboardAlertLimit,
		})
		if err != nil {
			return fmt.Errorf("fetch unresolved alerts: %w", err)
		}
		view.Alerts = list.Alerts
		return nil
	})
	g.Go(func() error {
		list, err := rt.Jobs.List(gctx, model.JobListOptions{
			Status: model.JobStatusRunning,
			Limit:  dashboardAlertLimit,
		})
		if err != nil {
			return fmt.Errorf("fetch running jobs: %w", err)
		}
		view.Jobs = list.Jobs
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboardView{}, err
	}
	return view, nil
}

func renderDashboard(view dashboardView) error {
	if err := writef(os.Stdout, "Alert Volume\n"); err != nil {
		return err
	}
	if err := renderAlertStats(view.Stats); err != nil {
		return err
	}

	if err := writef(os.Stdout, "\nUnresolved Alerts\n"); err != nil {
		return err
	}
	if len(view.Alerts) == 0 {
		if err := writeln(os.Stdout, "(none)"); err != nil {
			return err
		}
	} else if err := renderAlertTable(view.Alerts); err != nil {
		return err
	}

	if err := writef(os.Stdout, "\nRunning Jobs\n"); err != nil {
		return err
	}
	if len(view.Jobs) == 0 {
		return writeln(os.Stdout, "(none)")
	}

	rows := make([][]string, 0, len(view.Jobs))
	for _, j := range view.Jobs {
		rows = append(rows, []string{
			j.ID,
			string(j.Type),
			formatStringPtr(j.SiteID),
			formatTimePtr(j.StartedAt),
		})
	}
	return renderTable([]string{"ID", "Type", "Site", "Started"}, rows)
}
