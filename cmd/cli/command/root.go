package command

// root.go defines the root command of libraryctl and opens the application
// for every subcommand.

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"libraryhub/internal/app"
	"libraryhub/internal/config"
	"libraryhub/internal/logger"
)

const commandTimeout = 2 * time.Minute

var (
	verbose bool     // log at debug level
	lib     *app.App // opened in PersistentPreRunE
)

var rootCmd = &cobra.Command{
	Use:   "libraryctl",
	Short: "libraryctl - LibraryHub administration tool",
	Long: `libraryctl works directly against the LibraryHub database configured through the
environment (or .env). Use it to:
- Create admin accounts
- Run the booking expiry and overdue reminder sweep by hand
- Inspect and change the library limits
- List overdue borrows

Use "libraryctl command --help" to see all available commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		zl, err := logger.New(level, "text", "libraryctl")
		if err != nil {
			return err
		}
		lib, err = app.Open(cfg, zl)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if lib == nil {
			return
		}
		if err := lib.Close(); err != nil {
			lib.Log.Warn("close", zap.Error(err))
		}
		_ = lib.Log.Sync()
	},
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), commandTimeout)
}

func success(format string, a ...any) {
	color.Green("✅ "+format, a...)
}

func header(title string) {
	color.New(color.Bold).Println(title)
	fmt.Println("─────────────────────────────────────────────────────────")
}
