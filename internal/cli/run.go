package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/hotspan"
	"github.com/wesleyorama2/hotspan/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scenarios from a configuration file",
	Long: `Execute instrumentation scenarios described in a YAML or JSON file,
print the telemetry report, and evaluate the file's checks against the
JSON report. Exits non-zero if any check fails.

Example:
  hotspan run --config scenarios.yaml
  hotspan run --config scenarios.yaml --json report.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		jsonPath, _ := cmd.Flags().GetString("json")
		noColor, _ := cmd.Flags().GetBool("no-color")
		scheme := schemeFor(noColor)

		if configFile == "" {
			return fmt.Errorf("--config is required")
		}

		cfg, err := scenario.Load(configFile)
		if err != nil {
			return err
		}

		unit, data, err := parseReportModes(cfg.Report.Unit, cfg.Report.Data)
		if err != nil {
			return err
		}

		if cfg.Name != "" {
			scheme.Header.Printf("Running %s\n", cfg.Name)
		}

		hotspan.Calibrate()
		if err := scenario.Run(cfg); err != nil {
			return err
		}

		if err := hotspan.DumpToStream(os.Stdout, unit, data); err != nil {
			return err
		}
		if cfg.Report.Percentiles {
			if err := hotspan.DumpPercentiles(os.Stdout); err != nil {
				return err
			}
		}

		// The JSON document feeds both the optional export and the
		// checks, so build it once.
		var jsonDoc bytes.Buffer
		if err := hotspan.DumpJSON(&jsonDoc, unit, data); err != nil {
			return err
		}
		if jsonPath != "" {
			if err := os.WriteFile(jsonPath, jsonDoc.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write JSON report: %w", err)
			}
		}

		if len(cfg.Checks) == 0 {
			return nil
		}
		results := scenario.EvalChecks(jsonDoc.Bytes(), cfg.Checks)
		printCheckResults(scheme, results)
		if !scenario.AllPassed(results) {
			return fmt.Errorf("%d of %d checks failed", countFailed(results), len(results))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().String("config", "", "scenario configuration file (YAML or JSON)")
	runCmd.Flags().String("json", "", "write the JSON report to this path")
	runCmd.Flags().Bool("no-color", false, "disable colored output")
}

func printCheckResults(scheme *ColorScheme, results []scenario.CheckResult) {
	fmt.Println()
	scheme.Header.Println("CHECKS")
	for _, r := range results {
		icon := scheme.PassIcon()
		if !r.Passed {
			icon = scheme.FailIcon()
		}
		switch {
		case r.Missing:
			fmt.Printf("  %s %s %s %v (path not found)\n", icon, r.Path, r.Op, r.Value)
		default:
			fmt.Printf("  %s %s %s %v (actual %v)\n", icon, r.Path, r.Op, r.Value, r.Actual)
		}
	}
}

func countFailed(results []scenario.CheckResult) int {
	n := 0
	for _, r := range results {
		if !r.Passed {
			n++
		}
	}
	return n
}
