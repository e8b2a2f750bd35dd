package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/claims-cli/internal/model"
)

var activityCmd = &cobra.Command{
	Use:   "activity [user-id]",
	Short: "Show a user's recent account activity",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		be := initBackend()

		userID := ""
		if len(args) > 0 {
			userID = args[0]
		} else {
			me, err := be.CurrentUser(ctx)
			if err != nil {
				return eris.Wrap(err, "activity: resolve current user")
			}
			userID = me.ID
		}

		logs, err := be.ListActivityLogs(ctx, userID, limit)
		if err != nil {
			return eris.Wrap(err, "activity")
		}
		if len(logs) == 0 {
			fmt.Fprintln(os.Stderr, "No activity found.")
			return nil
		}

		formatActivity(os.Stdout, logs)
		return nil
	},
}

func formatActivity(out io.Writer, logs []model.ActivityLog) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "WHEN\tACTION\tDETAILS")
	_, _ = fmt.Fprintln(w, "----\t------\t-------")
	for _, l := range logs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%v\n",
			l.CreatedAt.Format("2006-01-02 15:04"),
			l.Action,
			l.Details,
		)
	}
	_ = w.Flush()
}

func init() {
	activityCmd.Flags().Int("limit", 20, "max number of log entries")
	rootCmd.AddCommand(activityCmd)
}
