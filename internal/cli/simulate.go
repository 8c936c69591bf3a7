package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/namedump/internal/harness"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
	Golden string // golden directory; empty skips trace comparison
	Update bool   // regenerate golden files
	Keep   string // directory that keeps the catalogs
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name     string   `json:"name"`
	Pass     bool     `json:"pass"`
	Session  string   `json:"session,omitempty"`
	State    string   `json:"state,omitempty"`
	Recorded int64    `json:"recorded"`
	Errors   []string `json:"errors,omitempty"`
}

// SimulateResult holds the overall simulation result.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml|dir>...",
		Short: "Run capture scenarios against a simulated host",
		Long: `Replay host call sequences against a simulated host with the capture
hooks attached, checking that every call still reaches the original
function and that the catalog ends up as expected.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  namedump simulate ./scenarios
  namedump simulate ./scenarios --filter "seeded_*"
  namedump simulate ./scenarios --golden ./golden
  namedump simulate ./scenarios --golden ./golden --update
  namedump simulate capture_dedup.yaml --keep ./out`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "compare traces with golden files in this directory")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files (requires --golden)")
	cmd.Flags().StringVar(&opts.Keep, "keep", "", "write catalogs to this directory instead of a temporary one")

	return cmd
}

func runSimulate(opts *SimulateOptions, paths []string, cmd *cobra.Command) error {
	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}

	var scenarioFiles []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", p))
		}
		if !info.IsDir() {
			scenarioFiles = append(scenarioFiles, p)
			continue
		}
		found, err := findScenarioFiles(p, opts.Filter)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find scenarios", err)
		}
		scenarioFiles = append(scenarioFiles, found...)
	}

	result := SimulateResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}
	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputSimulateJSON(cmd, result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputSimulateJSON(cmd, result)
	}
	return outputSimulateText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files directly in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(entry.Name(), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				continue
			}
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *SimulateOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return fail(filepath.Base(scenarioFile), fmt.Sprintf("failed to load scenario: %v", err))
	}

	var runOpts []harness.Option
	if opts.Keep != "" {
		dir := filepath.Join(opts.Keep, scenario.Name)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to create catalog dir: %v", err))
		}
		runOpts = append(runOpts, harness.WithDir(dir))
	}

	result, err := harness.Run(scenario, runOpts...)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}
	out := ScenarioResult{
		Name:     scenario.Name,
		Session:  result.Session,
		State:    result.State,
		Recorded: result.Recorded,
	}

	if opts.Golden != "" {
		goldenPath := filepath.Join(opts.Golden, scenario.Name+".golden")
		if opts.Update {
			if err := updateGoldenFile(goldenPath, scenario.Name, result); err != nil {
				return fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err))
			}
		} else {
			match, err := compareWithGolden(goldenPath, scenario.Name, result)
			if err != nil {
				return fail(scenario.Name, fmt.Sprintf("golden comparison failed: %v", err))
			}
			if !match {
				return fail(scenario.Name, "trace does not match golden file (run with --update to regenerate)")
			}
		}
	}

	if !result.Pass {
		failed := fail(scenario.Name, result.Errors...)
		failed.Session, failed.State, failed.Recorded = out.Session, out.State, out.Recorded
		return failed
	}

	out.Pass = true
	if text {
		fmt.Fprintf(w, "✓ %s (%s, %d recorded)\n", scenario.Name, result.State, result.Recorded)
	}
	return out
}

// updateGoldenFile writes the current trace as the golden file.
func updateGoldenFile(goldenPath, name string, result *harness.Result) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	data, err := harness.Snapshot(name, result).Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal trace: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden compares the result trace against the golden file.
func compareWithGolden(goldenPath, name string, result *harness.Result) (bool, error) {
	goldenData, err := os.ReadFile(goldenPath)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	currentData, err := harness.Snapshot(name, result).Marshal()
	if err != nil {
		return false, fmt.Errorf("failed to marshal current trace: %w", err)
	}
	return bytes.Equal(goldenData, currentData), nil
}

// outputSimulateJSON outputs the simulation result as JSON.
func outputSimulateJSON(cmd *cobra.Command, result SimulateResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    CodeScenario,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputSimulateText outputs the simulation result as text.
func outputSimulateText(cmd *cobra.Command, result SimulateResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Simulation Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
