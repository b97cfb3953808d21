package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/target/mmk-ui-client/config"
	"github.com/target/mmk-ui-client/internal/bootstrap"
	domainauth "github.com/target/mmk-ui-client/internal/domain/auth"
)

type loginOptions struct {
	Email    string
	Password string
}

func parseLoginFlags(args []string) (loginOptions, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email (prompted when omitted)")
	fs.StringVar(&opts.Password, "password", "", "Account password (prompted when omitted; prefer the prompt)")

	if err := fs.Parse(args); err != nil {
		return loginOptions{}, err
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		if cmdCtx.Config.Auth.Variant == config.AuthVariantCookie {
			return loginSSO(ctx, cmdCtx, rt)
		}
		return loginCredentials(ctx, rt, opts)
	})
}

func loginCredentials(ctx context.Context, rt *bootstrap.Runtime, opts loginOptions) error {
	email := strings.TrimSpace(opts.Email)
	if email == "" {
		v, err := promptLine("Email: ")
		if err != nil {
			return err
		}
		email = v
	}

	password := opts.Password
	if password == "" {
		password = os.Getenv("MMK_PASSWORD")
	}
	if password == "" {
		v, err := promptLine("Password: ")
		if err != nil {
			return err
		}
		password = v
	}

	sess, err := rt.Auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	return printSignedIn(sess)
}

// loginSSO walks the browser redirect flow: a short-lived listener on the
// configured redirect URL captures the callback. When the port cannot be
// bound (already taken, remote redirect URL) the flow falls back to pasting
// the code by hand.
func loginSSO(ctx context.Context, cmdCtx *commandContext, rt *bootstrap.Runtime) error {
	authURL, state, nonce, err := rt.Auth.BeginSSO(ctx, "")
	if err != nil {
		return fmt.Errorf("begin sso: %w", err)
	}

	// The mock provider hands back the callback itself; no browser involved.
	if u, parseErr := url.Parse(authURL); parseErr == nil && u.Scheme == "" {
		sess, ssoErr := rt.Auth.CompleteSSO(ctx, u.Query().Get("code"), state, nonce)
		if ssoErr != nil {
			return fmt.Errorf("complete sso: %w", ssoErr)
		}
		return printSignedIn(sess)
	}

	if err := writef(os.Stdout, "Open the following URL in a browser and sign in:\n\n  %s\n\n", authURL); err != nil {
		return err
	}

	code, err := awaitCallback(ctx, cmdCtx, state)
	if err != nil {
		return err
	}
	if code == "" {
		return errors.New("authorization code is required")
	}

	sess, err := rt.Auth.CompleteSSO(ctx, code, state, nonce)
	if err != nil {
		return fmt.Errorf("complete sso: %w", err)
	}

	return printSignedIn(sess)
}

type callbackResult struct {
	code string
	err  error
}

// awaitCallback serves the OAuth redirect URL until one callback arrives.
func awaitCallback(ctx context.Context, cmdCtx *commandContext, state string) (string, error) {
	redirect, err := url.Parse(cmdCtx.Config.Auth.OAuth.RedirectURL)
	if err != nil || redirect.Host == "" {
		return promptLine("Paste the authorization code: ")
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		cmdCtx.Logger.Debug("callback listener unavailable, falling back to paste", "error", err)
		return promptLine("Paste the authorization code: ")
	}

	callbackPath := redirect.Path
	if callbackPath == "" {
		callbackPath = "/"
	}

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callbackResult{err: errors.New("callback state mismatch")}
			return
		}
		if errCode := q.Get("error"); errCode != "" {
			http.Error(w, "login failed: "+errCode, http.StatusBadRequest)
			results <- callbackResult{err: fmt.Errorf("provider returned error %q", errCode)}
			return
		}
		fmt.Fprintln(w, "Signed in. You can close this tab and return to the terminal.")
		results <- callbackResult{code: q.Get("code")}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			results <- callbackResult{err: fmt.Errorf("callback server: %w", serveErr)}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			cmdCtx.Logger.Debug("callback server shutdown", "error", shutdownErr)
		}
	}()

	if err := writef(os.Stderr, "Waiting for the browser callback on %s ...\n", redirect.Host); err != nil {
		return "", err
	}

	select {
	case res := <-results:
		return res.code, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for callback: %w", ctx.Err())
	}
}

func printSignedIn(sess domainauth.Session) error {
	name := strings.TrimSpace(sess.User.FirstName + " " + sess.User.LastName)
	if name == "" {
		name = sess.User.UserID
	}
	return writef(os.Stdout, "Signed in as %s (%s)\n", name, sess.Role)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("logout takes no arguments, got %q", args[0])
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		if err := rt.Auth.Logout(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		return writeln(os.Stdout, "Signed out.")
	})
}

func runWhoami(cmdCtx *commandContext, args []string) error {
	opts, err := parseOutputFlags("whoami", args)
	if err != nil {
		return err
	}

	return withRuntime(cmdCtx, func(ctx context.Context, rt *bootstrap.Runtime) error {
		sess, err := rt.Auth.Rehydrate(ctx)
		if err != nil {
			return fmt.Errorf("fetch identity: %w", err)
		}

		if opts.wantsJSON() {
			return renderJSON(opts, whoamiView(sess))
		}

		if err := writef(os.Stdout, "User:  %s\n", sess.User.UserID); err != nil {
			return err
		}
		if sess.User.Email != "" {
			if err := writef(os.Stdout, "Email: %s\n", sess.User.Email); err != nil {
				return err
			}
		}
		if err := writef(os.Stdout, "Role:  %s\n", sess.Role); err != nil {
			return err
		}
		if len(sess.Permissions) > 0 {
			if err := writef(os.Stdout, "Permissions: %s\n", strings.Join(sess.Permissions, ", ")); err != nil {
				return err
			}
		}
		return nil
	})
}

func whoamiView(sess domainauth.Session) map[string]any {
	return map[string]any{
		"user":        sess.User,
		"role":        sess.Role,
		"permissions": sess.Permissions,
	}
}

func promptLine(prompt string) (string, error) {
	if err := writef(os.Stderr, "%s", prompt); err != nil {
		return "", err
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
