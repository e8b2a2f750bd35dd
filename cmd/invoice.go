package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/claims-cli/internal/registry"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage claim invoices",
}

// -- invoice issue --

var invoiceIssueCmd = &cobra.Command{
	Use:   "issue <user-id>",
	Short: "Issue a new invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		amount, _ := cmd.Flags().GetFloat64("amount")
		claimID, _ := cmd.Flags().GetString("claim")
		if amount <= 0 {
			return eris.New("invoice issue: --amount must be positive")
		}

		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		defer reg.Close() //nolint:errcheck

		inv := registry.Invoice{
			Number:  registry.NewNumber(args[0]),
			UserID:  args[0],
			ClaimID: claimID,
			Amount:  amount,
			Status:  registry.PaymentPending,
		}
		if err := reg.Set(ctx, inv); err != nil {
			return eris.Wrap(err, "invoice issue")
		}

		fmt.Printf("Invoice %s issued for %s\n", inv.Number, formatAmount(inv.Amount))
		return nil
	},
}

// -- invoice status --

var invoiceStatusCmd = &cobra.Command{
	Use:   "status <number>",
	Short: "Show an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		defer reg.Close() //nolint:errcheck

		inv, err := reg.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "invoice status")
		}

		formatInvoices(os.Stdout, []registry.Invoice{*inv})
		return nil
	},
}

// -- invoice pay --

var invoicePayCmd = &cobra.Command{
	Use:   "pay <number>",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		defer reg.Close() //nolint:errcheck

		inv, err := reg.Merge(ctx, args[0], registry.Patch{Status: registry.PaymentPaid})
		if err != nil {
			return eris.Wrap(err, "invoice pay")
		}

		fmt.Printf("Invoice %s marked paid (%s)\n", inv.Number, formatAmount(inv.Amount))
		return nil
	},
}

// -- invoice list --

var invoiceListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's invoices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reg, err := initRegistry(ctx)
		if err != nil {
			return err
		}
		defer reg.Close() //nolint:errcheck

		invoices, err := reg.ListByUser(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "invoice list")
		}
		if len(invoices) == 0 {
			fmt.Fprintln(os.Stderr, "No invoices found.")
			return nil
		}

		formatInvoices(os.Stdout, invoices)
		return nil
	},
}

func formatInvoices(out io.Writer, invoices []registry.Invoice) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NUMBER\tCLAIM\tAMOUNT\tSTATUS\tUPDATED")
	_, _ = fmt.Fprintln(w, "------\t-----\t------\t------\t-------")
	for _, inv := range invoices {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			inv.Number,
			truncateID(inv.ClaimID),
			formatAmount(inv.Amount),
			inv.Status,
			inv.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func init() {
	invoiceIssueCmd.Flags().Float64("amount", 0, "invoice amount (required)")
	invoiceIssueCmd.Flags().String("claim", "", "claim id the invoice covers")

	invoiceCmd.AddCommand(invoiceIssueCmd)
	invoiceCmd.AddCommand(invoiceStatusCmd)
	invoiceCmd.AddCommand(invoicePayCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	rootCmd.AddCommand(invoiceCmd)
}
