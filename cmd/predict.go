package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/claims-cli/internal/format"
	"github.com/sells-group/claims-cli/internal/predict"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Resolve a settlement prediction without submitting",
	Long:  "Formats the answers file into the ML input vector and runs the full endpoint fallback chain, printing the winning prediction record.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		answersPath, _ := cmd.Flags().GetString("answers")
		asJSON, _ := cmd.Flags().GetBool("json")

		fields, err := loadAnswers(answersPath)
		if err != nil {
			return err
		}

		be := initBackend()
		orch := initOrchestrator(be, predict.WithNotifier(progressNotifier))

		res, err := orch.Predict(ctx, format.ClaimData(fields))
		if err != nil {
			return eris.Wrap(err, "predict")
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res.Record)
		}

		fmt.Printf("Settlement: %s\n", formatAmount(res.Record.SettlementAmount))
		fmt.Printf("Confidence: %.0f%%\n", res.Record.ConfidenceScore*100)
		fmt.Printf("Source:     %s (%s)\n", res.Record.Source, res.Record.Endpoint)
		if res.Record.ProcessingTimeSeconds > 0 {
			fmt.Printf("Latency:    %.2fs\n", res.Record.ProcessingTimeSeconds)
		}
		return nil
	},
}

func init() {
	predictCmd.Flags().String("answers", "", "YAML file of field values (required)")
	predictCmd.Flags().Bool("json", false, "print the raw prediction record as JSON")
	rootCmd.AddCommand(predictCmd)
}
