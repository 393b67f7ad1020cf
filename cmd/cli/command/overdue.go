package command

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var overduePage, overduePageSize int

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List borrows that are past their due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		borrows, total, err := lib.Services.Borrows.ListOverdue(ctx, overduePage, overduePageSize)
		if err != nil {
			return err
		}
		if total == 0 {
			success("No overdue borrows")
			return nil
		}

		header(fmt.Sprintf("⏰ Overdue borrows (%d)", total))
		now := time.Now().UTC()
		for i, b := range borrows {
			title, username := fmt.Sprintf("book #%d", b.BookID), fmt.Sprintf("user #%d", b.UserID)
			if b.Book != nil {
				title = b.Book.Title
			}
			if b.User != nil {
				username = b.User.Username
			}
			days := int(now.Sub(b.DueDate).Hours() / 24)
			fmt.Printf("%d. %s borrowed by %s\n", (overduePage-1)*overduePageSize+i+1, title, username)
			color.Red("   Due: %s (%d day(s) late)", b.DueDate.Format("2006-01-02"), days)
		}
		return nil
	},
}

func init() {
	overdueCmd.Flags().IntVar(&overduePage, "page", 1, "page number")
	overdueCmd.Flags().IntVar(&overduePageSize, "page-size", 20, "borrows per page")
	rootCmd.AddCommand(overdueCmd)
}
