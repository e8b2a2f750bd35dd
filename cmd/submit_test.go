package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/wizard"
)

func writeAnswers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAnswers(t *testing.T) {
	path := writeAnswers(t, `
AccidentDate: "2026-02-01"
AccidentType: Rear end
DriverAge: 34
Whiplash: true
SpecialHealthExpenses: 120.50
`)

	fields, err := loadAnswers(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", fields[model.FieldAccidentDate])
	assert.Equal(t, "Rear end", fields[model.FieldAccidentType])
	assert.Equal(t, 34, fields[model.FieldDriverAge])
	assert.Equal(t, true, fields[model.FieldWhiplash])
	assert.Equal(t, 120.50, fields[model.FieldSpecialHealthExpenses])
}

func TestLoadAnswers_Missing(t *testing.T) {
	_, err := loadAnswers("")
	require.Error(t, err)

	_, err = loadAnswers(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadAnswers_Empty(t *testing.T) {
	path := writeAnswers(t, "")
	_, err := loadAnswers(path)
	require.Error(t, err)
}

func TestWalkToReview(t *testing.T) {
	session := wizard.NewSession(stubPredictor{}, stubSubmitter{})
	defer session.Close()
	session.SetFields(validFields())

	require.NoError(t, walkToReview(session))
	assert.Equal(t, wizard.StepReviewAndSubmit, session.Step())
}

func TestWalkToReview_MissingFieldsNamesStep(t *testing.T) {
	session := wizard.NewSession(stubPredictor{}, stubSubmitter{})
	defer session.Close()
	session.SetFields(model.FieldValues{
		model.FieldAccidentDate: "2026-02-01",
	})

	err := walkToReview(session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incident_details")
	assert.Contains(t, err.Error(), model.FieldAccidentType)
	assert.Equal(t, wizard.StepIncidentDetails, session.Step())
}
