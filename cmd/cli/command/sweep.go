package command

import (
	"github.com/spf13/cobra"

	"libraryhub/internal/scheduler"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire stale bookings and send overdue reminders now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		sweeper := scheduler.NewSweeper(lib.Services.Bookings, lib.Services.Borrows, lib.Log)
		res, err := sweeper.RunOnce(ctx)
		if err != nil {
			return err
		}
		success("Expired %d booking(s), reminded %d overdue borrower(s)", res.ExpiredBookings, res.OverdueReminders)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
