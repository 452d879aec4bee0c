/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Built-in self-checks: configuration, engine binaries and work directory.
*/

package commands

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// SelfCheck is one named check
type SelfCheck struct {
	Name     string
	Function func() error
}

// SelfChecks lists the checks run by the check command
func SelfChecks() []SelfCheck {
	return []SelfCheck{
		{"Configuration Validation", checkConfiguration},
		{"Engine Binaries", checkEngineBinaries},
		{"Work Directory", checkWorkDirectory},
	}
}

// PerformSelfCheck runs every self-check and fails if any check fails
func PerformSelfCheck(cmd *cobra.Command, args []string) error {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "cubist - System Self-Check")
	fmt.Fprintln(out, "==========================")
	fmt.Fprintln(out)

	checks := SelfChecks()
	passed := 0
	for _, check := range checks {
		fmt.Fprintf(out, "%s... ", check.Name)
		if err := check.Function(); err != nil {
			fmt.Fprintf(out, "FAILED: %v\n", err)
			continue
		}
		fmt.Fprintln(out, "PASSED")
		passed++
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Results: %d/%d checks passed\n", passed, len(checks))
	if passed != len(checks) {
		return fmt.Errorf("%d/%d checks failed", len(checks)-passed, len(checks))
	}
	return nil
}

func checkConfiguration() error {
	params := ParamsFromViper()
	if err := params.Validate(); err != nil {
		return err
	}
	return LoggerConfigFromViper().Validate()
}

func checkEngineBinaries() error {
	cfg := EngineConfigFromViper()
	if cfg.TrainBinary == "" {
		return fmt.Errorf("no train binary configured")
	}
	if _, err := exec.LookPath(cfg.TrainBinary); err != nil {
		return fmt.Errorf("train binary: %w", err)
	}
	if cfg.PredictBinary != "" {
		if _, err := exec.LookPath(cfg.PredictBinary); err != nil {
			return fmt.Errorf("predict binary: %w", err)
		}
	}
	return nil
}

func checkWorkDirectory() error {
	dir, err := os.MkdirTemp(EngineConfigFromViper().WorkDir, "cubist-check-")
	if err != nil {
		return fmt.Errorf("work directory is not writable: %w", err)
	}
	return os.RemoveAll(dir)
}
