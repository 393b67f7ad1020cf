package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"libraryhub/internal/http-api/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the library limits",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current limits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		s, err := lib.Services.Settings.Get(ctx)
		if err != nil {
			return err
		}
		printSettings(s)
		return nil
	},
}

// settingsPatch holds the flags of settings set; unchanged flags are left alone.
type settingsPatch struct {
	cmd *cobra.Command
	models.AdminSettings
}

func (p settingsPatch) ApplyTo(s *models.AdminSettings) {
	flags := p.cmd.Flags()
	if flags.Changed("borrow-day-limit") {
		s.BorrowDayLimit = p.BorrowDayLimit
	}
	if flags.Changed("borrow-extend-limit") {
		s.BorrowExtendLimit = p.BorrowExtendLimit
	}
	if flags.Changed("borrow-book-limit") {
		s.BorrowBookLimit = p.BorrowBookLimit
	}
	if flags.Changed("booking-days-limit") {
		s.BookingDaysLimit = p.BookingDaysLimit
	}
}

var settingsFlags settingsPatch

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more limits",
	Example: `  libraryctl settings set --borrow-day-limit 21
  libraryctl settings set --borrow-book-limit 3 --booking-days-limit 14`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().NFlag() == 0 {
			return fmt.Errorf("nothing to change, pass at least one limit flag")
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		settingsFlags.cmd = cmd
		s, err := lib.Services.Settings.Update(ctx, settingsFlags)
		if err != nil {
			return err
		}
		success("Settings updated")
		printSettings(s)
		return nil
	},
}

func printSettings(s *models.AdminSettings) {
	header("📐 Library limits")
	fmt.Printf("Borrow day limit:     %d\n", s.BorrowDayLimit)
	fmt.Printf("Borrow extend limit:  %d\n", s.BorrowExtendLimit)
	fmt.Printf("Borrow book limit:    %d\n", s.BorrowBookLimit)
	fmt.Printf("Booking days limit:   %d\n", s.BookingDaysLimit)
	fmt.Printf("Updated:              %s\n", s.UpdatedAt.Format("2006-01-02 15:04"))
}

func init() {
	flags := settingsSetCmd.Flags()
	flags.IntVar(&settingsFlags.BorrowDayLimit, "borrow-day-limit", 0, "maximum borrow length in days")
	flags.IntVar(&settingsFlags.BorrowExtendLimit, "borrow-extend-limit", 0, "maximum extensions per borrow")
	flags.IntVar(&settingsFlags.BorrowBookLimit, "borrow-book-limit", 0, "maximum open borrows per user")
	flags.IntVar(&settingsFlags.BookingDaysLimit, "booking-days-limit", 0, "how far ahead a booking may be placed, in days")

	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
