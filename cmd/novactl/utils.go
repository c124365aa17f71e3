package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/gardener/novactl/pkg/apierrors"
	"github.com/gardener/novactl/pkg/auth"
	"github.com/gardener/novactl/pkg/compute"
	"github.com/gardener/novactl/pkg/identity"
	"github.com/gardener/novactl/pkg/metrics"
	"github.com/gardener/novactl/pkg/pagination"
)

// na is displayed in table cells for which we don't have any data.
const na = "N/A"

// timingsKey is the context key under which the timings recorder is stored.
type timingsKey struct{}

// getTimingsRecorder returns the timings recorder stored in the context of
// the given flags context.
func getTimingsRecorder(ctx *cli.Context) *metrics.TimingsRecorder {
	recorder, ok := ctx.Context.Value(timingsKey{}).(*metrics.TimingsRecorder)
	if !ok {
		return nil
	}

	return recorder
}

// newOverridesFromFlags returns the credential overrides from the specified
// flags.
func newOverridesFromFlags(ctx *cli.Context) auth.Overrides {
	return auth.Overrides{
		IdentityEndpoint: ctx.String("os-auth-url"),
		Username:         ctx.String("os-username"),
		Password:         ctx.String("os-password"),
		ProjectName:      ctx.String("os-tenant-name"),
		Region:           ctx.String("os-region-name"),
		APIVersion:       ctx.String("os-compute-api-version"),
		Cloud:            ctx.String("os-cloud"),
		ConfigFile:       ctx.String("os-config-file"),
	}
}

// promptPassword reads a password from the given input without echoing it
// back. Nothing is read when the input is not connected to a terminal.
func promptPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	fmt.Fprint(out, "OS Password: ") // nolint: errcheck
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(out) // nolint: errcheck
	if err != nil {
		return "", err
	}

	return string(password), nil
}

// newSessionFromFlags creates a new [identity.Session] from the specified
// flags. A missing password is read from the terminal, when running
// interactively.
func newSessionFromFlags(ctx *cli.Context) (*identity.Session, error) {
	overrides := newOverridesFromFlags(ctx)
	if overrides.Password == "" {
		password, err := promptPassword(os.Stdin, os.Stderr)
		if err != nil {
			return nil, err
		}
		overrides.Password = password
	}

	opts, err := auth.Resolve(overrides)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout: ctx.Duration("timeout"),
	}

	return identity.NewSession(
		opts,
		identity.WithHTTPClient(httpClient),
		identity.WithGlobalRequestID(identity.NewGlobalRequestID()),
	)
}

// newComputeClientFromFlags creates a new [compute.Client] from the
// specified flags.
func newComputeClientFromFlags(ctx *cli.Context) (*compute.Client, error) {
	session, err := newSessionFromFlags(ctx)
	if err != nil {
		return nil, err
	}

	return compute.New(session, compute.WithTimingsRecorder(getTimingsRecorder(ctx)))
}

// withRetry runs the given operation. Transient failures are retried with
// exponential backoff up to the number of times given by the retries flag.
func withRetry(ctx *cli.Context, op backoff.Operation) error {
	retries := ctx.Int("retries")
	if retries <= 0 {
		return op()
	}

	wrapped := func() error {
		err := op()
		if err != nil && !apierrors.IsTransient(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(retries)), ctx.Context)

	return backoff.Retry(wrapped, policy)
}

// collectAll walks all pages of the pager created by list and accumulates
// the items extracted from each page.
func collectAll[T any](ctx *cli.Context, list func(ctx context.Context) (*pagination.Pager, error), extract func(page pagination.Page) ([]T, error)) ([]T, error) {
	var items []T
	err := withRetry(ctx, func() error {
		items = items[:0]
		pager, err := list(ctx.Context)
		if err != nil {
			return err
		}

		return pager.EachPage(ctx.Context, func(_ context.Context, page pagination.Page) (bool, error) {
			batch, err := extract(page)
			if err != nil {
				return false, err
			}
			items = append(items, batch...)

			return true, nil
		})
	})

	return items, err
}

// newTableWriter creates a new table with the given headers, which renders
// to the given writer.
func newTableWriter(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(w)
	table.Header(headers)

	return table
}

// renderTimings prints a summary of the recorded API call timings.
func renderTimings(recorder *metrics.TimingsRecorder) {
	if recorder == nil {
		return
	}

	timings := recorder.Timings()
	if len(timings) == 0 {
		return
	}

	headers := []string{
		"METHOD",
		"URL",
		"DURATION",
	}
	table := newTableWriter(os.Stdout, headers)

	var total time.Duration
	for _, item := range timings {
		total += item.Duration
		row := []string{
			item.Method,
			item.URL,
			item.Duration.String(),
		}
		table.Append(row)
	}
	table.Append([]string{"TOTAL", "", total.String()})

	table.Render()
}
