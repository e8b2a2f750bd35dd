package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/predict"
	"github.com/sells-group/claims-cli/internal/registry"
	"github.com/sells-group/claims-cli/internal/wizard"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Run the claim wizard from an answers file and submit",
	Long:  "Walks the five-step wizard with field values from a YAML answers file, waits for the ML settlement prediction, and submits the claim. Submission is refused when no valid prediction can be obtained.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		answersPath, _ := cmd.Flags().GetString("answers")
		issueInvoice, _ := cmd.Flags().GetBool("invoice")

		fields, err := loadAnswers(answersPath)
		if err != nil {
			return err
		}

		be := initBackend()
		orch := initOrchestrator(be, predict.WithNotifier(progressNotifier))
		session := wizard.NewSession(orch, be)
		defer session.Close()

		session.SetFields(fields)
		if err := walkToReview(session); err != nil {
			return err
		}

		status, err := session.WaitPrediction(ctx)
		if err != nil || status != model.PredictionReady {
			return eris.Wrap(err, "submit: prediction unavailable, claim not submitted")
		}

		rec := session.Prediction()
		fmt.Printf("Predicted settlement: %s (confidence %.0f%%, via %s)\n",
			formatAmount(rec.SettlementAmount), rec.ConfidenceScore*100, rec.Endpoint)

		st := session.State()
		fmt.Printf("Special damages: %s  General damages: %s  Total: %s\n",
			formatAmount(st.Totals.Special),
			formatAmount(st.Totals.General),
			formatAmount(st.Totals.Grand),
		)

		claim, err := session.Submit(ctx)
		if err != nil {
			return eris.Wrap(err, "submit")
		}

		fmt.Printf("Claim %s submitted: %s, status %s\n",
			claim.ID, formatAmount(claim.Amount), claim.Status)

		if issueInvoice {
			if err := issueClaimInvoice(ctx, be, claim); err != nil {
				return err
			}
		}
		return nil
	},
}

// walkToReview advances through the wizard steps, surfacing missing
// required fields with the step they belong to.
func walkToReview(session *wizard.Session) error {
	for session.Step() < wizard.StepReviewAndSubmit {
		if err := session.Next(); err != nil {
			var vErr *wizard.ValidationError
			if errors.As(err, &vErr) {
				return eris.Errorf("submit: step %q is missing required fields %v",
					vErr.Step.String(), vErr.Missing)
			}
			return err
		}
	}
	return nil
}

// loadAnswers reads a flat field-name to value mapping from a YAML file.
func loadAnswers(path string) (model.FieldValues, error) {
	if path == "" {
		return nil, eris.New("submit: --answers file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "submit: read answers file")
	}

	var fields model.FieldValues
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, eris.Wrap(err, "submit: parse answers file")
	}
	if len(fields) == 0 {
		return nil, eris.New("submit: answers file is empty")
	}
	return fields, nil
}

// issueClaimInvoice records the submitted claim in the invoice registry.
func issueClaimInvoice(ctx context.Context, be interface {
	CurrentUser(ctx context.Context) (*model.User, error)
}, claim *model.Claim) error {
	userID := claim.UserID
	if userID == "" {
		me, err := be.CurrentUser(ctx)
		if err != nil {
			return eris.Wrap(err, "submit: resolve user for invoice")
		}
		userID = me.ID
	}

	reg, err := initRegistry(ctx)
	if err != nil {
		return eris.Wrap(err, "submit: open registry")
	}
	defer reg.Close() //nolint:errcheck

	inv := registry.Invoice{
		Number:  registry.NewNumber(userID),
		UserID:  userID,
		ClaimID: claim.ID,
		Amount:  claim.Amount,
		Status:  registry.PaymentPending,
	}
	if err := reg.Set(ctx, inv); err != nil {
		return eris.Wrap(err, "submit: record invoice")
	}
	fmt.Printf("Invoice %s issued for %s\n", inv.Number, formatAmount(inv.Amount))
	return nil
}

func init() {
	submitCmd.Flags().String("answers", "", "YAML file of field values (required)")
	submitCmd.Flags().Bool("invoice", false, "record an invoice for the submitted claim")
	rootCmd.AddCommand(submitCmd)
}
