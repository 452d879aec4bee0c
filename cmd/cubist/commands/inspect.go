/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inspect.go
Description: The inspect command. Prints the committees, rules, formulas, attribute
usage and variable summary of a saved model as text or YAML.
*/

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/cubist-go/pkg/encoding"
	"github.com/kleascm/cubist-go/pkg/model"
	"github.com/kleascm/cubist-go/pkg/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RuleReport is one rule in inspect output
type RuleReport struct {
	Committee  int      `yaml:"committee"`
	Rule       int      `yaml:"rule"`
	Cover      float64  `yaml:"cover"`
	Mean       float64  `yaml:"mean"`
	Range      string   `yaml:"range"`
	EstErr     float64  `yaml:"est_err"`
	Conditions []string `yaml:"conditions"`
	Formula    string   `yaml:"formula"`
}

// ModelReport is the inspect output
type ModelReport struct {
	ID          string            `yaml:"id"`
	Seed        int               `yaml:"seed"`
	MaxDistance string            `yaml:"maxd"`
	Committees  int               `yaml:"committees"`
	Variables   model.Summary     `yaml:"variables"`
	Usage       []model.UsageStat `yaml:"usage"`
	Rules       []RuleReport      `yaml:"rules"`
}

// RunInspect prints a saved model
func RunInspect(cmd *cobra.Command, args []string) error {
	modelPath, _ := cmd.Flags().GetString("model")
	format, _ := cmd.Flags().GetString("format")

	snap, err := storage.Load(modelPath)
	if err != nil {
		return err
	}
	report, err := BuildReport(snap)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(report)
	case "text":
		return writeReport(out, report)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// BuildReport parses the snapshot model into an inspect report
func BuildReport(snap *storage.Snapshot) (*ModelReport, error) {
	variables := snap.Schema.FeatureNames()
	desc, err := model.Parse(snap.Model, variables)
	if err != nil {
		return nil, err
	}

	report := &ModelReport{
		ID:          snap.ID,
		Seed:        snap.Seed,
		MaxDistance: snap.MaxDistance.String(),
		Committees:  len(desc.Committees),
		Variables:   desc.Summary(),
		Usage:       snap.Usage,
	}
	for _, r := range desc.Rules() {
		rr := RuleReport{
			Committee: r.Committee,
			Rule:      r.Number,
			Cover:     r.Cover,
			Mean:      r.Mean,
			Range:     fmt.Sprintf("[%s, %s]", encoding.FormatFloat(r.Low), encoding.FormatFloat(r.High)),
			EstErr:    r.EstErr,
			Formula:   formula(snap.Schema.Target, r, variables),
		}
		for _, c := range r.Conditions {
			rr.Conditions = append(rr.Conditions, c.String())
		}
		report.Rules = append(report.Rules, rr)
	}
	return report, nil
}

func formula(target string, r model.Rule, variables []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s", target, encoding.FormatFloat(r.Intercept))
	for i, c := range r.Coefficients {
		if !c.Valid {
			continue
		}
		sign, v := "+", c.Value
		if v < 0 {
			sign, v = "-", -v
		}
		fmt.Fprintf(&b, " %s %s * %s", sign, encoding.FormatFloat(v), variables[i])
	}
	return b.String()
}

func writeReport(out io.Writer, report *ModelReport) error {
	fmt.Fprintf(out, "Model %s (seed %d, maxd %s)\n\n", report.ID, report.Seed, report.MaxDistance)

	committee := 0
	for _, r := range report.Rules {
		if r.Committee != committee {
			committee = r.Committee
			if report.Committees > 1 {
				fmt.Fprintf(out, "Model %d:\n\n", committee)
			}
		}
		fmt.Fprintf(out, "  Rule %d/%d: [%s cases, mean %s, range %s, est err %s]\n",
			r.Committee, r.Rule, encoding.FormatFloat(r.Cover), encoding.FormatFloat(r.Mean), r.Range, encoding.FormatFloat(r.EstErr))
		if len(r.Conditions) > 0 {
			fmt.Fprintln(out, "    if")
			for _, c := range r.Conditions {
				fmt.Fprintf(out, "      %s\n", c)
			}
			fmt.Fprintln(out, "    then")
		}
		fmt.Fprintf(out, "      %s\n\n", r.Formula)
	}

	fmt.Fprintln(out, "Attribute usage:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Conds\tModel\t\t")
	for _, u := range report.Usage {
		fmt.Fprintf(tw, "%.0f%%\t%.0f%%\t\t%s\n", u.Conditions, u.Model, u.Variable)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nVariables used: %d of %d\n", len(report.Variables.Used), len(report.Variables.All))
	fmt.Fprintf(out, "  %s\n", strings.Join(report.Variables.Used, ", "))
	return nil
}
