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

func runJobs(cmdCtx *commandContext, args []string) error {
	action, rest := splitAction(args, "list")
	switch action {
	case "list":
		return runJobsList(cmdCtx, rest)
	case "get":
		return runJobsGet(cmdCtx, rest)
	case "test-run":
		return runJobsTestRun(cmdCtx, rest)
	default:
		return fmt.Errorf("unknown jobs action %q (expected list, get or test-run)", action)
	}
}

type jobsListOptions struct {
	Output outputOptions
	SiteID string
	Type   string
	Status string
	Limit  int
	Offset int
}

func parseJobsListFlags(args []string) (jobsListOptions, error) {
	fs := flag.NewFlagSet("jobs list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts jobsListOptions
	bindOutputFlags(fs, &opts.Output)
	fs.StringVar(&opts.SiteID, "site-id", "", "Filter by site ID")
	fs.StringVar(&opts.Type, "type", "", "Filter by job type (browser, rules or alert)")
	fs.StringVar(&opts.Status, "status", "", "Filter by status (pending, running, completed or failed)")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to fetch")
	fs.IntVar(&opts.Offset, "offset", 0, "Paging offset")

	if err := fs.Parse(args); err != nil {
		return jobsListOptions{}, err
	}
	return opts, nil
}

func runJobsList(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobsListFlags(args)
	if err != nil {
		return err
	}

	listOpts := model.JobListOptions{
		SiteID: opts.SiteID,
		Type:   model.JobType(opts.Type),
		Status: model.JobStatus(opts.Status),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		list, err := rt.Jobs.List(ctx, listOpts)
		if err != nil {
			return fmt.Errorf("list jobs: %w", err)
		}

		if opts.Output.wantsJSON() {
			return renderJSON(opts.Output, list)
		}

		rows := make([][]string, 0, len(list.Jobs))
		for _, j := range list.Jobs {
			rows = append(rows, []string{
				j.ID,
				string(j.Type),
				string(j.Status),
				formatStringPtr(j.SiteID),
				formatBool(j.IsTest),
				formatTime(j.CreatedAt),
			})
		}
		if err := renderTable([]string{"ID", "Type", "Status", "Site", "Test", "Created"}, rows); err != nil {
			return err
		}
		return renderTotal(len(list.Jobs), list.Total)
	})
}

func runJobsGet(cmdCtx *commandContext, args []string) error {
	id, opts, err := parseIDWithOutput("jobs get", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		job, err := rt.Jobs.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		return renderJSON(opts, job)
	})
}

func runJobsTestRun(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("jobs test-run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var sourceID string
	fs.StringVar(&sourceID, "source-id", "", "Source to test (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if sourceID == "" {
		return errors.New("-source-id is required")
	}

	req := model.CreateJobRequest{
		Type:     model.JobTypeBrowser,
		SourceID: &sourceID,
		IsTest:   true,
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		job, err := rt.Jobs.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("create test run: %w", err)
		}
		return writef(os.Stdout, "Queued test run %s (status %s)\n", job.ID, job.Status)
	})
}
