// Package commands implements the trackerctl command line.
package commands

import (
	"context"

	"github.com/spf13/cobra"

	"smarttracker/internal/backend"
)

// Opener returns the backend a command works against. The caller of the
// returned cleanup releases it.
type Opener func(ctx context.Context) (*backend.BackendResult, error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trackerctl",
		Short: "Offline access to the smart tracker database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newFormsCommand(open))
	rootCmd.AddCommand(newReportCommand(open))

	return rootCmd
}

func withBackend(ctx context.Context, open Opener, fn func(b *backend.Backend) error) (err error) {
	res, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := res.Cleanup(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(res.Backend)
}
