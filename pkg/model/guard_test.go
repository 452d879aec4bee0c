/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: guard_test.go
Description: Tests for reserved name repair, maxd normalisation and the correction toggle.
*/

package model_test

import (
	"strings"
	"testing"

	"github.com/kleascm/cubist-go/pkg/dataset"
	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/kleascm/cubist-go/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReservedNameRepair tests the substitution and splice on a weighted schema
func TestReservedNameRepair(t *testing.T) {
	table := dataset.NewTable(dataset.NumericColumn("x1", []float64{1, 2, 3}))
	schema, err := encoding.BuildSchema(table, encoding.SchemaOptions{Label: "outcome", Weighted: true})
	require.NoError(t, err)
	names := schema.Names("seed: 1")
	require.True(t, model.NeedsRepair(names))

	repaired, err := model.RepairModel(reservedModel)
	require.NoError(t, err)
	assert.NotContains(t, repaired, encoding.ReservedWeightName)
	assert.NotContains(t, repaired, model.DisplayLabel)

	marker := strings.Index(reservedModel, model.MarkerToken)
	assert.True(t, strings.HasSuffix(repaired, reservedModel[marker:]))
	assert.Equal(t,
		"id=\"Cubist 2.07 GPL Edition 2024-01-01\"\n"+
			"prec=\"2\" globalmean=\"2\" extrap=\"1\" insts=\"1\" nn=\"1\" maxd=\"1.5\"\n"+
			reservedModel[marker:],
		repaired)

	desc, err := model.Parse(repaired, schema.FeatureNames())
	require.NoError(t, err)
	assert.Equal(t, model.Some(0.5), desc.Rules()[0].Coefficients[0])

	diagnostics := model.RepairDiagnostics(reservedDiagnostics)
	assert.NotContains(t, diagnostics, encoding.ReservedWeightName)
	assert.Contains(t, diagnostics, "Case weights: sample")
}

// TestRepairModelNameCollisions tests columns whose names contain the display
// label or the entries marker
func TestRepairModelNameCollisions(t *testing.T) {
	repaired, err := model.RepairModel(collidingModel)
	require.NoError(t, err)
	assert.NotContains(t, repaired, encoding.ReservedWeightName)

	marker := strings.Index(collidingModel, "\nentries=") + 1
	label := strings.Index(collidingModel, encoding.ReservedWeightName)
	assert.Equal(t, collidingModel[:label]+collidingModel[marker:], repaired)

	desc, err := model.Parse(repaired, []string{"subsample_rate", "num_entries"})
	require.NoError(t, err)
	r := desc.Rules()[0]
	assert.Equal(t, "num_entries", r.Conditions[0].Attribute)
	assert.Equal(t, []model.NullFloat{model.Some(-1), model.Some(0.5)}, r.Coefficients)
}

// TestNeedsRepair tests detection of the reserved declaration
func TestNeedsRepair(t *testing.T) {
	assert.True(t, model.NeedsRepair("y.\n\nx: continuous.\n__Sample: continuous.\n"))
	assert.True(t, model.NeedsRepair("__Sample: continuous.\n"))
	assert.False(t, model.NeedsRepair("y.\n\nx: continuous.\nw: continuous.\n"))
	assert.False(t, model.NeedsRepair("y.\n\n__Sample_2: continuous.\n"))
}

// TestRepairModelFailures tests malformed engine output around the splice
func TestRepairModelFailures(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"label missing", `id="x"` + "\nentries=\"1\"\n"},
		{"marker missing", "__Sample=\"w\"\nrules=\"1\"\n"},
		{"marker repeated", "__Sample=\"w\"\nentries=\"1\"\nentries=\"1\"\n"},
		{"marker before label", "entries=\"1\"\n__Sample=\"w\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := model.RepairModel(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, interfaces.ErrModelParse)
		})
	}
}

// TestNormalize tests maxd extraction and the disabled form
func TestNormalize(t *testing.T) {
	maxd, err := model.ExtractMaxDistance(twoRuleModel)
	require.NoError(t, err)
	assert.Equal(t, model.Some(2.25), maxd)

	stored, maxd, err := model.Normalize(twoRuleModel)
	require.NoError(t, err)
	assert.Equal(t, model.Some(2.25), maxd)
	assert.Contains(t, stored, model.InstancesOff)
	assert.NotContains(t, stored, "maxd=")
	assert.Equal(t, 1, strings.Count(stored, model.InstancesOff))

	again, none, err := model.Normalize(stored)
	require.NoError(t, err)
	assert.Equal(t, stored, again)
	assert.False(t, none.Valid)
}

// TestToggleRoundTrip tests enabling correction on the stored text
func TestToggleRoundTrip(t *testing.T) {
	stored, maxd, err := model.Normalize(twoRuleModel)
	require.NoError(t, err)

	same, err := model.Toggle(stored, 0, maxd)
	require.NoError(t, err)
	assert.Equal(t, stored, same)

	on, err := model.Toggle(stored, 5, maxd)
	require.NoError(t, err)
	assert.Contains(t, on, `insts="1" nn="5" maxd="2.25"`)
	assert.NotContains(t, on, model.InstancesOff)

	extracted, err := model.ExtractMaxDistance(on)
	require.NoError(t, err)
	assert.Equal(t, maxd, extracted)

	off, err := model.Toggle(stored, 0, maxd)
	require.NoError(t, err)
	assert.Equal(t, stored, off)
	assert.Contains(t, stored, model.InstancesOff)
}

// TestToggleErrors tests the model state failures
func TestToggleErrors(t *testing.T) {
	stored, maxd, err := model.Normalize(twoRuleModel)
	require.NoError(t, err)

	_, err = model.Toggle(stored, 10, maxd)
	assert.ErrorIs(t, err, interfaces.ErrModelState)

	_, err = model.Toggle(stored, -1, maxd)
	assert.ErrorIs(t, err, interfaces.ErrModelState)

	_, err = model.Toggle(stored, 1, model.NullFloat{})
	assert.ErrorIs(t, err, interfaces.ErrModelState)

	_, err = model.Toggle(twoRuleModel, 1, maxd)
	assert.ErrorIs(t, err, interfaces.ErrModelState)
}
