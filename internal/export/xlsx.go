// Package export writes claim listings to spreadsheet files for
// finance-side review.
package export

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/claims-cli/internal/model"
)

var claimHeader = []string{
	"ID", "Title", "Status", "Amount", "Settlement", "Confidence", "Created",
}

// WriteClaims writes the claims to a single-sheet XLSX file at path.
func WriteClaims(path string, claims []model.Claim) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Claims")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range claimHeader {
		header.AddCell().SetString(h)
	}

	for _, c := range claims {
		row := sheet.AddRow()
		row.AddCell().SetString(c.ID)
		row.AddCell().SetString(c.Title)
		row.AddCell().SetString(string(c.Status))
		row.AddCell().SetFloat(c.Amount)

		if c.MLPrediction != nil {
			row.AddCell().SetFloat(c.MLPrediction.SettlementAmount)
			row.AddCell().SetString(fmt.Sprintf("%.0f%%", c.MLPrediction.ConfidenceScore*100))
		} else {
			row.AddCell().SetString("")
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(c.CreatedAt.Format("2006-01-02"))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save file")
	}
	return nil
}
