package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/domain/model"
)

func runAlerts(cmdCtx *commandContext, args []string) error {
	action, rest := splitAction(args, "list")
	switch action {
	case "list":
		return runAlertsList(cmdCtx, rest)
	case "get":
		return runAlertsGet(cmdCtx, rest)
	case "resolve":
		return runAlertsResolve(cmdCtx, rest)
	case "stats":
		return runAlertsStats(cmdCtx, rest)
	default:
		return fmt.Errorf("unknown alerts action %q (expected list, get, resolve or stats)", action)
	}
}

type alertsListOptions struct {
	Output     outputOptions
	SiteID     string
	Severity   string
	Unresolved bool
	Limit      int
	Offset     int
}

func parseAlertsListFlags(args []string) (alertsListOptions, error) {
	fs := flag.NewFlagSet("alerts list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts alertsListOptions
	bindOutputFlags(fs, &opts.Output)
	fs.StringVar(&opts.SiteID, "site-id", "", "Filter by site ID")
	fs.StringVar(&opts.Severity, "severity", "", "Filter by severity (critical, high, medium, low or info)")
	fs.BoolVar(&opts.Unresolved, "unresolved", false, "Only show unresolved alerts")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to fetch")
	fs.IntVar(&opts.Offset, "offset", 0, "Paging offset")

	if err := fs.Parse(args); err != nil {
		return alertsListOptions{}, err
	}
	return opts, nil
}

func runAlertsList(cmdCtx *commandContext, args []string) error {
	opts, err := parseAlertsListFlags(args)
	if err != nil {
		return err
	}

	listOpts := model.AlertListOptions{
		SiteID:     opts.SiteID,
		Severity:   model.AlertSeverity(opts.Severity),
		Unresolved: opts.Unresolved,
		Limit:      opts.Limit,
		Offset:     opts.Offset,
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		list, err := rt.Alerts.List(ctx, listOpts)
		if err != nil {
			return fmt.Errorf("list alerts: %w", err)
		}

		if opts.Output.wantsJSON() {
			return renderJSON(opts.Output, list)
		}

		if err := renderAlertTable(list.Alerts); err != nil {
			return err
		}
		return renderTotal(len(list.Alerts), list.Total)
	})
}

func renderAlertTable(alerts []model.Alert) error {
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		resolved := "open"
		if a.Resolved() {
			resolved = "resolved"
		}
		rows = append(rows, []string{
			a.ID,
			string(a.Severity),
			a.RuleType,
			a.SiteName,
			a.Title,
			resolved,
			formatTime(a.FiredAt),
		})
	}
	return renderTable([]string{"ID", "Severity", "Rule", "Site", "Title", "State", "Fired"}, rows)
}

func runAlertsGet(cmdCtx *commandContext, args []string) error {
	id, opts, err := parseIDWithOutput("alerts get", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		alert, err := rt.Alerts.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get alert: %w", err)
		}
		return renderJSON(opts, alert)
	})
}

func runAlertsResolve(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("alerts resolve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var id, by string
	fs.StringVar(&id, "id", "", "Alert ID (required)")
	fs.StringVar(&by, "by", "", "Resolver identity (defaults to the signed-in user)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if id == "" {
		return errors.New("-id is required")
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		if by == "" {
			sess, err := rt.Auth.Rehydrate(ctx)
			if err != nil {
				return fmt.Errorf("resolve identity: %w", err)
			}
			by = sess.User.UserID
		}

		alert, err := rt.Alerts.Resolve(ctx, id, model.ResolveAlertRequest{ResolvedBy: by})
		if err != nil {
			return fmt.Errorf("resolve alert: %w", err)
		}
		return writef(os.Stdout, "Resolved alert %s (%s)\n", alert.ID, alert.Title)
	})
}

func runAlertsStats(cmdCtx *commandContext, args []string) error {
	opts, err := parseOutputFlags("alerts stats", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		stats, err := rt.Alerts.Stats(ctx)
		if err != nil {
			return fmt.Errorf("fetch alert stats: %w", err)
		}

		if opts.wantsJSON() {
			return renderJSON(opts, stats)
		}
		return renderAlertStats(stats)
	})
}

func renderAlertStats(stats model.AlertStats) error {
	return renderTable([]string{"Severity", "Count"}, [][]string{
		{"critical", fmt.Sprint(stats.Critical)},
		{"high", fmt.Sprint(stats.High)},
		{"medium", fmt.Sprint(stats.Medium)},
		{"low", fmt.Sprint(stats.Low)},
		{"info", fmt.Sprint(stats.Info)},
		{"total", fmt.Sprint(stats.Total)},
		{"unresolved", fmt.Sprint(stats.Unresolved)},
	})
}
