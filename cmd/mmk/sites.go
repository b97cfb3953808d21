package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/domain/model"
)

func runSites(cmdCtx *commandContext, args []string) error {
	action, rest := splitAction(args, "list")
	switch action {
	case "list":
		return runSitesList(cmdCtx, rest)
	case "get":
		return runSitesGet(cmdCtx, rest)
	case "create":
		return runSitesCreate(cmdCtx, rest)
	case "update":
		return runSitesUpdate(cmdCtx, rest)
	case "delete":
		return runSitesDelete(cmdCtx, rest)
	default:
		return fmt.Errorf("unknown sites action %q (expected list, get, create, update or delete)", action)
	}
}

// splitAction peels the leading subcommand off args, falling back to a
// default when the first argument is a flag.
func splitAction(args []string, fallback string) (string, []string) {
	if len(args) == 0 || len(args[0]) == 0 || args[0][0] == '-' {
		return fallback, args
	}
	return args[0], args[1:]
}

type sitesListOptions struct {
	Output  outputOptions
	Q       string
	Scope   string
	Enabled string
	Sort    string
	Dir     string
	Limit   int
	Offset  int
}

func parseSitesListFlags(args []string) (sitesListOptions, error) {
	fs := flag.NewFlagSet("sites list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sitesListOptions
	bindOutputFlags(fs, &opts.Output)
	fs.StringVar(&opts.Q, "q", "", "Filter by name substring")
	fs.StringVar(&opts.Scope, "scope", "", "Filter by scope")
	fs.StringVar(&opts.Enabled, "enabled", "", "Filter by enabled state (true or false)")
	fs.StringVar(&opts.Sort, "sort", "", "Sort column (created_at or name)")
	fs.StringVar(&opts.Dir, "dir", "", "Sort direction (asc or desc)")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to fetch")
	fs.IntVar(&opts.Offset, "offset", 0, "Paging offset")

	if err := fs.Parse(args); err != nil {
		return sitesListOptions{}, err
	}
	return opts, nil
}

func (o sitesListOptions) listOptions() (model.SiteListOptions, error) {
	out := model.SiteListOptions{
		Q:      o.Q,
		Scope:  o.Scope,
		Sort:   o.Sort,
		Dir:    o.Dir,
		Limit:  o.Limit,
		Offset: o.Offset,
	}
	if o.Enabled != "" {
		v, err := strconv.ParseBool(o.Enabled)
		if err != nil {
			return model.SiteListOptions{}, fmt.Errorf("invalid -enabled value %q", o.Enabled)
		}
		out.Enabled = &v
	}
	return out, nil
}

func runSitesList(cmdCtx *commandContext, args []string) error {
	opts, err := parseSitesListFlags(args)
	if err != nil {
		return err
	}
	listOpts, err := opts.listOptions()
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		list, err := rt.Sites.List(ctx, listOpts)
		if err != nil {
			return fmt.Errorf("list sites: %w", err)
		}

		if opts.Output.wantsJSON() {
			return renderJSON(opts.Output, list)
		}

		rows := make([][]string, 0, len(list.Sites))
		for _, s := range list.Sites {
			rows = append(rows, []string{
				s.ID,
				s.Name,
				formatBool(s.Enabled),
				string(s.AlertMode),
				strconv.Itoa(s.RunEveryMinutes) + "m",
				formatTimePtr(s.LastRun),
			})
		}
		if err := renderTable([]string{"ID", "Name", "Enabled", "Alert Mode", "Interval", "Last Run"}, rows); err != nil {
			return err
		}
		return renderTotal(len(list.Sites), list.Total)
	})
}

func runSitesGet(cmdCtx *commandContext, args []string) error {
	id, opts, err := parseIDWithOutput("sites get", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		site, err := rt.Sites.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get site: %w", err)
		}
		return renderJSON(opts, site)
	})
}

type sitesCreateOptions struct {
	Name      string
	SourceID  string
	Interval  int
	AlertMode string
	Scope     string
	Disabled  bool
}

func parseSitesCreateFlags(args []string) (sitesCreateOptions, error) {
	fs := flag.NewFlagSet("sites create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sitesCreateOptions
	fs.StringVar(&opts.Name, "name", "", "Site name (required)")
	fs.StringVar(&opts.SourceID, "source-id", "", "Source to run against (required)")
	fs.IntVar(&opts.Interval, "interval", 60, "Run interval in minutes")
	fs.StringVar(&opts.AlertMode, "alert-mode", "", "Alert mode (active or muted)")
	fs.StringVar(&opts.Scope, "scope", "", "Optional scope label")
	fs.BoolVar(&opts.Disabled, "disabled", false, "Create the site disabled")

	if err := fs.Parse(args); err != nil {
		return sitesCreateOptions{}, err
	}
	return opts, nil
}

func runSitesCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseSitesCreateFlags(args)
	if err != nil {
		return err
	}

	req := model.CreateSiteRequest{
		Name:            opts.Name,
		AlertMode:       model.SiteAlertMode(opts.AlertMode),
		RunEveryMinutes: opts.Interval,
		SourceID:        opts.SourceID,
	}
	if opts.Scope != "" {
		req.Scope = &opts.Scope
	}
	if opts.Disabled {
		enabled := false
		req.Enabled = &enabled
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		site, err := rt.Sites.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("create site: %w", err)
		}
		return writef(os.Stdout, "Created site %s (%s)\n", site.Name, site.ID)
	})
}

type sitesUpdateOptions struct {
	ID        string
	Name      string
	SourceID  string
	Interval  int
	AlertMode string
	Scope     string
	Enabled   string
}

func parseSitesUpdateFlags(args []string) (sitesUpdateOptions, error) {
	fs := flag.NewFlagSet("sites update", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sitesUpdateOptions
	fs.StringVar(&opts.ID, "id", "", "Site ID (required)")
	fs.StringVar(&opts.Name, "name", "", "New site name")
	fs.StringVar(&opts.SourceID, "source-id", "", "New source ID")
	fs.IntVar(&opts.Interval, "interval", 0, "New run interval in minutes")
	fs.StringVar(&opts.AlertMode, "alert-mode", "", "New alert mode (active or muted)")
	fs.StringVar(&opts.Scope, "scope", "", "New scope label")
	fs.StringVar(&opts.Enabled, "enabled", "", "New enabled state (true or false)")

	if err := fs.Parse(args); err != nil {
		return sitesUpdateOptions{}, err
	}
	if opts.ID == "" {
		return sitesUpdateOptions{}, errors.New("-id is required")
	}
	return opts, nil
}

func (o sitesUpdateOptions) request() (model.UpdateSiteRequest, error) {
	var req model.UpdateSiteRequest
	if o.Name != "" {
		req.Name = &o.Name
	}
	if o.SourceID != "" {
		req.SourceID = &o.SourceID
	}
	if o.Interval > 0 {
		req.RunEveryMinutes = &o.Interval
	}
	if o.AlertMode != "" {
		mode := model.SiteAlertMode(o.AlertMode)
		req.AlertMode = &mode
	}
	if o.Scope != "" {
		req.Scope = &o.Scope
	}
	if o.Enabled != "" {
		v, err := strconv.ParseBool(o.Enabled)
		if err != nil {
			return model.UpdateSiteRequest{}, fmt.Errorf("invalid -enabled value %q", o.Enabled)
		}
		req.Enabled = &v
	}
	return req, nil
}

func runSitesUpdate(cmdCtx *commandContext, args []string) error {
	opts, err := parseSitesUpdateFlags(args)
	if err != nil {
		return err
	}
	req, err := opts.request()
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		site, err := rt.Sites.Update(ctx, opts.ID, req)
		if err != nil {
			return fmt.Errorf("update site: %w", err)
		}
		return writef(os.Stdout, "Updated site %s (%s)\n", site.Name, site.ID)
	})
}

func runSitesDelete(cmdCtx *commandContext, args []string) error {
	id, err := parseID("sites delete", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		if err := rt.Sites.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete site: %w", err)
		}
		return writef(os.Stdout, "Deleted site %s\n", id)
	})
}

// parseID reads the single required -id flag for get/delete style actions.
func parseID(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var id string
	fs.StringVar(&id, "id", "", "Resource ID (required)")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("-id is required")
	}
	return id, nil
}

func parseIDWithOutput(name string, args []string) (string, outputOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var id string
	var opts outputOptions
	fs.StringVar(&id, "id", "", "Resource ID (required)")
	bindOutputFlags(fs, &opts)

	if err := fs.Parse(args); err != nil {
		return "", outputOptions{}, err
	}
	if id == "" {
		return "", outputOptions{}, errors.New("-id is required")
	}
	return id, opts, nil
}
