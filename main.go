package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"book-catalog/config"
	"book-catalog/library"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(execute(ctx, newRootCmd(os.Stdin, os.Stdout, os.Stderr), os.Stderr))
}

// execute runs cmd and maps its error to an exit code. API and form failures
// have already been shown to the user as a toast or as field errors.
func execute(ctx context.Context, cmd *cobra.Command, errw io.Writer) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var verr *library.ValidationError
	if !library.IsFetchError(err) && !errors.As(err, &verr) {
		fmt.Fprintf(errw, "Error: %v\n", err)
	}
	return 1
}

func newRootCmd(in io.Reader, out, errw io.Writer) *cobra.Command {
	var (
		cfgFile string
		a       *app
	)

	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Browse and manage a remote book catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			a = newApp(cfg, logger, in, out, errw)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errw)
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: bookshelf.yaml in . or ./config)")

	// Subcommands resolve the app lazily; it only exists once the
	// persistent pre-run has loaded the configuration.
	appRef := func() *app { return a }
	root.AddCommand(
		newListCmd(appRef),
		newAddCmd(appRef),
		newEditCmd(appRef),
		newDeleteCmd(appRef),
		newGenresCmd(appRef),
		newShellCmd(appRef),
	)
	return root
}
