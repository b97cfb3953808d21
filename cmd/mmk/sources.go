package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/target/mmk-ui-client/internal/bootstrap"
	"github.com/target/mmk-ui-client/internal/domain/model"
)

func runSources(cmdCtx *commandContext, args []string) error {
	action, rest := splitAction(args, "list")
	switch action {
	case "list":
		return runSourcesList(cmdCtx, rest)
	case "get":
		return runSourcesGet(cmdCtx, rest)
	case "create":
		return runSourcesCreate(cmdCtx, rest)
	case "delete":
		return runSourcesDelete(cmdCtx, rest)
	default:
		return fmt.Errorf("unknown sources action %q (expected list, get, create or delete)", action)
	}
}

type sourcesListOptions struct {
	Output outputOptions
	Q      string
	Test   string
	Limit  int
	Offset int
}

func parseSourcesListFlags(args []string) (sourcesListOptions, error) {
	fs := flag.NewFlagSet("sources list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sourcesListOptions
	bindOutputFlags(fs, &opts.Output)
	fs.StringVar(&opts.Q, "q", "", "Filter by name substring")
	fs.StringVar(&opts.Test, "test", "", "Filter by test flag (true or false)")
	fs.IntVar(&opts.Limit, "limit", 50, "Maximum rows to fetch")
	fs.IntVar(&opts.Offset, "offset", 0, "Paging offset")

	if err := fs.Parse(args); err != nil {
		return sourcesListOptions{}, err
	}
	return opts, nil
}

func runSourcesList(cmdCtx *commandContext, args []string) error {
	opts, err := parseSourcesListFlags(args)
	if err != nil {
		return err
	}

	listOpts := model.SourceListOptions{Q: opts.Q, Limit: opts.Limit, Offset: opts.Offset}
	if opts.Test != "" {
		v, parseErr := strconv.ParseBool(opts.Test)
		if parseErr != nil {
			return fmt.Errorf("invalid -test value %q", opts.Test)
		}
		listOpts.Test = &v
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		list, err := rt.Sources.List(ctx, listOpts)
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}

		if opts.Output.wantsJSON() {
			return renderJSON(opts.Output, list)
		}

		rows := make([][]string, 0, len(list.Sources))
		for _, s := range list.Sources {
			rows = append(rows, []string{
				s.ID,
				s.Name,
				formatBool(s.Test),
				strconv.Itoa(len(s.Secrets)),
				formatTime(s.CreatedAt),
			})
		}
		if err := renderTable([]string{"ID", "Name", "Test", "Secrets", "Created"}, rows); err != nil {
			return err
		}
		return renderTotal(len(list.Sources), list.Total)
	})
}

func runSourcesGet(cmdCtx *commandContext, args []string) error {
	id, opts, err := parseIDWithOutput("sources get", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		source, err := rt.Sources.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("get source: %w", err)
		}
		return renderJSON(opts, source)
	})
}

type sourcesCreateOptions struct {
	Name    string
	File    string
	Test    bool
	Secrets string
}

func parseSourcesCreateFlags(args []string) (sourcesCreateOptions, error) {
	fs := flag.NewFlagSet("sources create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts sourcesCreateOptions
	fs.StringVar(&opts.Name, "name", "", "Source name (required)")
	fs.StringVar(&opts.File, "file", "", "Path to the script file (required)")
	fs.BoolVar(&opts.Test, "test", false, "Mark the source as a test script")
	fs.StringVar(&opts.Secrets, "secrets", "", "Comma-separated secret names the script references")

	if err := fs.Parse(args); err != nil {
		return sourcesCreateOptions{}, err
	}
	if opts.File == "" {
		return sourcesCreateOptions{}, errors.New("-file is required")
	}
	return opts, nil
}

func runSourcesCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parseSourcesCreateFlags(args)
	if err != nil {
		return err
	}

	value, err := os.ReadFile(opts.File)
	if err != nil {
		return fmt.Errorf("read script file: %w", err)
	}

	req := model.CreateSourceRequest{
		Name:  opts.Name,
		Value: string(value),
		Test:  opts.Test,
	}
	if opts.Secrets != "" {
		for _, secret := range strings.Split(opts.Secrets, ",") {
			if secret = strings.TrimSpace(secret); secret != "" {
				req.Secrets = append(req.Secrets, secret)
			}
		}
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		source, err := rt.Sources.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("create source: %w", err)
		}
		return writef(os.Stdout, "Created source %s (%s)\n", source.Name, source.ID)
	})
}

func runSourcesDelete(cmdCtx *commandContext, args []string) error {
	id, err := parseID("sources delete", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		if err := rt.Sources.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
		return writef(os.Stdout, "Deleted source %s\n", id)
	})
}
