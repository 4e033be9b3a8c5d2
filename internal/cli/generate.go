package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/diagramsmith/internal/config"
	"github.com/matzehuels/diagramsmith/pkg/diagram"
	"github.com/matzehuels/diagramsmith/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output       string // output base path (extension is stripped)
	diagramType  string // forced diagram type
	pickType     bool   // open the interactive type picker
	instructions string // bypass analysis with explicit instructions
	candidates   int    // candidate fan-out
	refine       bool   // enable the quality refinement loop
	threshold    float64
	iterations   int
	width        int
	height       int
	noModel      bool // deterministic Graphviz path, no API calls
	noPNG        bool // skip the raster output
	noCache      bool
}

// newGenerateCmd creates the generate command, the main entry point of the
// CLI: it runs the full pipeline on one content file and writes the
// resulting SVG (and PNG) next to it.
func newGenerateCmd(cfgPath *string) *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate a diagram from a content file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *cfgPath, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name)")
	cmd.Flags().StringVarP(&opts.diagramType, "type", "t", "", "force a diagram type (flowchart, concept_map, ...)")
	cmd.Flags().BoolVar(&opts.pickType, "pick-type", false, "choose the diagram type interactively")
	cmd.Flags().StringVar(&opts.instructions, "instructions", "", "skip content analysis and generate from these instructions")
	cmd.Flags().IntVarP(&opts.candidates, "candidates", "n", 0, "number of candidates to generate")
	cmd.Flags().BoolVar(&opts.refine, "refine", false, "enable the quality refinement loop")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "quality threshold for refinement (0-5)")
	cmd.Flags().IntVar(&opts.iterations, "iterations", 0, "max refinement iterations")
	cmd.Flags().IntVar(&opts.width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", 0, "canvas height in pixels")
	cmd.Flags().BoolVar(&opts.noModel, "no-model", false, "skip model calls and use the deterministic layout")
	cmd.Flags().BoolVar(&opts.noPNG, "no-png", false, "skip the PNG output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

func runGenerate(ctx context.Context, cfgPath, input string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	content, err := resolveContent(input)
	if err != nil {
		return err
	}

	if opts.pickType {
		t, err := pickType()
		if err != nil {
			return err
		}
		if t == "" {
			printInfo("No type selected, aborting")
			return nil
		}
		opts.diagramType = string(t)
	}

	deps, err := buildDeps(cfg, logger, opts.noModel)
	if err != nil {
		return err
	}

	var runner *pipeline.Runner
	if opts.noCache {
		runner = pipeline.NewRunner(deps, nil, nil)
	} else {
		c, keyer, err := openCache(ctx, cfg.Cache, "file")
		if err != nil {
			return err
		}
		if c != nil {
			defer c.Close()
		}
		runner = pipeline.NewRunner(deps, c, keyer)
	}

	pipeOpts := pipelineOptions(cfg, opts)

	spinner := newSpinner(ctx, "Generating diagram...")
	spinner.Start()
	prog := newProgress(logger)

	result, err := runner.Generate(ctx, content, pipeOpts)
	if err != nil {
		spinner.StopWithError(err.Error())
		return err
	}
	spinner.Stop()

	if !result.Success {
		printError("%s", result.Error)
		return fmt.Errorf("no diagram generated")
	}
	prog.done("Pipeline complete")

	base := outputBase(opts.output, input)
	svgPath := base + ".svg"
	if err := os.WriteFile(svgPath, result.SVG, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", svgPath, err)
	}

	printSuccess("Generated %s", StyleValue.Render(result.Analysis.Title))
	printSummary(result)
	printFile(svgPath)

	if !opts.noPNG && len(result.PNG) > 0 {
		pngPath := base + ".png"
		if err := os.WriteFile(pngPath, result.PNG, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", pngPath, err)
		}
		printFile(pngPath)
	}

	if result.Error != "" {
		printWarning("%s", result.Error)
	}
	return nil
}

// pipelineOptions merges config-file defaults with command-line flags.
// Flags win.
func pipelineOptions(cfg config.Config, opts *generateOpts) pipeline.Options {
	dc := cfg.Diagram.ToDiagram()
	if opts.candidates > 0 {
		dc.NumCandidates = opts.candidates
	}
	if opts.width > 0 {
		dc.Width = opts.width
	}
	if opts.height > 0 {
		dc.Height = opts.height
	}
	if opts.refine {
		dc.EnableRefinementLoop = true
	}
	if opts.threshold > 0 {
		dc.QualityThreshold = opts.threshold
	}
	if opts.iterations > 0 {
		dc.MaxRefinementIterations = opts.iterations
	}

	p := pipeline.Options{
		Config:             dc,
		CustomInstructions: opts.instructions,
	}
	if opts.diagramType != "" {
		p.ForceType = diagram.ParseType(opts.diagramType)
	}
	return p
}

// resolveContent reads the content file, or stdin for "-".
func resolveContent(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// outputBase derives the output base path: an explicit --output with its
// extension stripped, otherwise the input file's stem, otherwise
// "diagram" for stdin input.
func outputBase(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	if input == "-" {
		return "diagram"
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// printSummary prints the generation statistics block.
func printSummary(result *diagram.Result) {
	printKeyValue("Type", string(result.Analysis.DiagramType))
	printKeyValue("Candidates", fmt.Sprintf("%d", result.GenerationAttempts))
	if result.SelectedCandidate > 0 {
		printKeyValue("Selected", fmt.Sprintf("#%d", result.SelectedCandidate))
	}
	if result.FinalQualityScore != nil {
		printKeyValue("Quality", fmt.Sprintf("%.1f/5 after %d iteration(s)", *result.FinalQualityScore, result.RefinementIterations))
	}
	for _, imp := range result.ImprovementsMade {
		printDetail("%s", imp)
	}
}
