/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: Tests for configuration mapping, table loading and the inspect report.
*/

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/interfaces"
	"github.com/kleascm/cubist-go/pkg/model"
	"github.com/kleascm/cubist-go/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const inspectModel = `id="Cubist 2.07 GPL Edition 2024-01-01"
prec="2" globalmean="3" extrap="1" insts="0"
entries="1"
rules="2"
conds="1" cover="3" mean="2" loval="1" hival="3" esterr="0.5"
type="2" att="x1" cut="2" result="<"
coeff="1" att="x1" coeff="0.5" att="x2" coeff="-0.25"
conds="1" cover="2" mean="4" loval="3.5" hival="4.5" esterr="0.25"
type="3" att="grade" elts="a","b"
coeff="4"
`

func inspectSnapshot() *storage.Snapshot {
	return &storage.Snapshot{
		Version: storage.SnapshotVersion,
		ID:      "model-1",
		Seed:    12,
		Schema: &encoding.Schema{
			Target: "price",
			Attributes: []encoding.Attribute{
				{Name: "x1", Kind: encoding.KindContinuous},
				{Name: "x2", Kind: encoding.KindContinuous},
				{Name: "grade", Kind: encoding.KindCategorical, Labels: []string{"a", "b", "c"}},
				{Name: "price", Kind: encoding.KindLabel},
			},
		},
		Model:       inspectModel,
		MaxDistance: model.Some(1.75),
		Usage: []model.UsageStat{
			{Variable: "x1", Conditions: 60, Model: 60},
			{Variable: "x2", Conditions: 0, Model: 60},
			{Variable: "grade", Conditions: 40, Model: 0},
		},
	}
}

// TestBuildReport tests rule rows and formulas
func TestBuildReport(t *testing.T) {
	report, err := BuildReport(inspectSnapshot())
	require.NoError(t, err)

	assert.Equal(t, "model-1", report.ID)
	assert.Equal(t, "1.75", report.MaxDistance)
	assert.Equal(t, 1, report.Committees)
	assert.Equal(t, []string{"x1", "x2", "grade"}, report.Variables.Used)
	require.Len(t, report.Rules, 2)

	r1 := report.Rules[0]
	assert.Equal(t, 3.0, r1.Cover)
	assert.Equal(t, "[1, 3]", r1.Range)
	assert.Equal(t, []string{"x1 <= 2"}, r1.Conditions)
	assert.Equal(t, "price = 1 + 0.5 * x1 - 0.25 * x2", r1.Formula)

	r2 := report.Rules[1]
	assert.Equal(t, []string{"grade in {a, b}"}, r2.Conditions)
	assert.Equal(t, "price = 4", r2.Formula)

	bad := inspectSnapshot()
	bad.Model = `id="x"` + "\n"
	_, err = BuildReport(bad)
	assert.ErrorIs(t, err, interfaces.ErrModelParse)
}

// TestRunInspect tests text and YAML output of a saved model
func TestRunInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, storage.Save(path, inspectSnapshot()))

	run := func(format string) (string, error) {
		cmd := &cobra.Command{RunE: RunInspect}
		cmd.Flags().String("model", path, "")
		cmd.Flags().String("format", format, "")
		var out bytes.Buffer
		cmd.SetOut(&out)
		err := RunInspect(cmd, nil)
		return out.String(), err
	}

	text, err := run("text")
	require.NoError(t, err)
	assert.Contains(t, text, "Model model-1 (seed 12, maxd 1.75)")
	assert.Contains(t, text, "Rule 1/1: [3 cases, mean 2, range [1, 3], est err 0.5]")
	assert.Contains(t, text, "      x1 <= 2\n")
	assert.Contains(t, text, "price = 4")
	assert.Contains(t, text, "Variables used: 3 of 3")

	out, err := run("yaml")
	require.NoError(t, err)
	var decoded ModelReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "model-1", decoded.ID)
	assert.Len(t, decoded.Rules, 2)

	_, err = run("xml")
	assert.Error(t, err)
}

// TestParamsFromViper tests flag and config mapping onto estimator parameters
func TestParamsFromViper(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	p := ParamsFromViper()
	assert.Nil(t, p.Seed)
	assert.Equal(t, 100, p.Rules)
	assert.Equal(t, interfaces.CompositeYes, p.Composite)

	viper.Set("model.rules", 20)
	viper.Set("model.committees", 3)
	viper.Set("model.seed", 9)
	viper.Set("model.neighbors", 5)
	viper.Set("model.composite", "auto")
	viper.Set("model.label", "price")
	p = ParamsFromViper()
	assert.Equal(t, 20, p.Rules)
	assert.Equal(t, 3, p.Committees)
	require.NotNil(t, p.Seed)
	assert.Equal(t, 9, *p.Seed)
	assert.Equal(t, 5, p.Neighbors)
	assert.Equal(t, interfaces.CompositeAuto, p.Composite)
	assert.Equal(t, "price", p.TargetLabel)
	require.NoError(t, p.Validate())

	viper.Set("model.seed", -1)
	seed := ParamsFromViper().Seed
	require.NotNil(t, seed)
	assert.Equal(t, -1, *seed)
}

// TestLoadTable tests splitting target and weights off a CSV file
func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	csv := "x1,grade,y,w\n1,a,10,1\n2,b,20,0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	table, y, w, err := LoadTable(path, "y", "w", []string{"grade"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "grade"}, table.Names())
	assert.Equal(t, []float64{10, 20}, y)
	assert.Equal(t, []float64{1, 0.5}, w)

	table, y, w, err = LoadTable(path, "", "", nil)
	require.NoError(t, err)
	assert.Len(t, table.Names(), 4)
	assert.Nil(t, y)
	assert.Nil(t, w)

	_, _, _, err = LoadTable(path, "missing", "", nil)
	assert.Error(t, err)

	_, _, _, err = LoadTable(filepath.Join(t.TempDir(), "none.csv"), "y", "", nil)
	assert.Error(t, err)
}
