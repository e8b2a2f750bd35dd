package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/claims-cli/internal/export"
	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/pkg/backend"
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Inspect and export submitted claims",
}

// -- claims list --

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		be := initBackend()
		claims, err := be.ListClaims(ctx, backend.ListOptions{
			Status: model.ClaimStatus(status),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "claims list")
		}
		if len(claims) == 0 {
			fmt.Fprintln(os.Stderr, "No claims found.")
			return nil
		}

		formatClaimsList(os.Stdout, claims)
		return nil
	},
}

// -- claims show --

var claimsShowCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show full details of a claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		be := initBackend()
		claim, err := be.GetClaim(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "claims show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(claim)
	},
}

// -- claims export --

var claimsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export claims to a spreadsheet",
	Long:  "Lists claims, fetches each one's full record concurrently, and writes them to an XLSX file.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		be := initBackend()
		listing, err := be.ListClaims(ctx, backend.ListOptions{
			Status: model.ClaimStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "claims export: list")
		}

		// Listings omit the prediction echo; fetch full records.
		full := make([]model.Claim, len(listing))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(5)
		for i, c := range listing {
			g.Go(func() error {
				detail, err := be.GetClaim(gctx, c.ID)
				if err != nil {
					return eris.Wrapf(err, "claims export: fetch %s", c.ID)
				}
				full[i] = *detail
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if err := export.WriteClaims(args[0], full); err != nil {
			return err
		}
		fmt.Printf("Exported %d claims to %s\n", len(full), args[0])
		return nil
	},
}

func formatClaimsList(out io.Writer, claims []model.Claim) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tAMOUNT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t------\t------\t-------")
	for _, c := range claims {
		title := c.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(c.ID),
			title,
			c.Status,
			formatAmount(c.Amount),
			c.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	claimsListCmd.Flags().String("status", "", "filter by claim status (pending_review, approved, rejected, paid)")
	claimsListCmd.Flags().Int("limit", 50, "max number of claims to display")
	claimsListCmd.Flags().Int("offset", 0, "listing offset")

	claimsExportCmd.Flags().String("status", "", "filter by claim status")
	claimsExportCmd.Flags().Int("limit", 500, "max number of claims to export")

	claimsCmd.AddCommand(claimsListCmd)
	claimsCmd.AddCommand(claimsShowCmd)
	claimsCmd.AddCommand(claimsExportCmd)
	rootCmd.AddCommand(claimsCmd)
}
