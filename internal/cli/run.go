package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/presentation/graph"
	"github.com/aretw0/cascade/internal/presentation/tui"
	"github.com/aretw0/cascade/internal/validator"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/export"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Format selects how a result is written.
type Format string

const (
	FormatReport   Format = "report"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMermaid  Format = "mermaid"
)

// ParseFormat validates a --format value.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatReport, FormatMarkdown, FormatJSON, FormatCSV, FormatMermaid:
		return f, nil
	case "":
		return FormatReport, nil
	}
	return "", fmt.Errorf("unknown format %q (supported: report, markdown, json, csv, mermaid)", raw)
}

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Params domain.Parameters
	Format Format
	// Top bounds the product table of reports.
	Top int
	// Progress prints one line per loop on Err.
	Progress bool
	// Pretty renders reports with glamour.
	Pretty bool
	// Verify audits the result after it is written.
	Verify bool

	Out    io.Writer
	Err    io.Writer
	Hooks  domain.Hooks
	Logger *slog.Logger
}

// Execute runs one cascade and writes its result to opts.Out.
// Cancelled and failed runs still write their partial result.
func Execute(ctx context.Context, source ports.ReactionSource, opts RunOptions) (*domain.Result, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	eng, err := cascade.New(source, cascade.WithLogger(opts.Logger), cascade.WithLifecycleHooks(opts.Hooks))
	if err != nil {
		return nil, err
	}
	run, err := eng.Start(ctx, opts.Params)
	if err != nil {
		return nil, err
	}

	for u := range run.Updates() {
		if u.Progress != nil && opts.Progress {
			printSystemMessage(opts.Err, "loop %d: %d nuclides, %d reactions", u.Progress.LoopIndex, u.Progress.PoolSize, u.Progress.ReactionsFound)
		}
	}

	result, runErr := run.Wait()
	if result == nil {
		return nil, runErr
	}
	if opts.Progress && result.Reason == domain.ReasonCancelled {
		printSystemMessage(opts.Err, "Interrupted after %d loops.", result.LoopsExecuted)
	}
	if err := WriteResult(opts.Out, result, opts); err != nil {
		return result, err
	}
	if opts.Verify && runErr == nil {
		if err := validator.ValidateResult(result); err != nil {
			return result, fmt.Errorf("result verification failed: %w", err)
		}
		printSystemMessage(opts.Err, "Verified %d reactions.", len(result.Reactions))
	}
	return result, runErr
}

// WriteResult renders result in opts.Format.
func WriteResult(w io.Writer, result *domain.Result, opts RunOptions) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatCSV:
		return export.WriteCSV(w, result)
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(result, &graph.Overlay{Fuel: opts.Params.Fuel}))
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, tui.Report(result, opts.Params, opts.Top))
		return err
	}

	md := tui.Report(result, opts.Params, opts.Top)
	if opts.Pretty {
		rendered, err := tui.NewRenderer(0)(md)
		if err == nil {
			md = rendered
		}
	}
	_, err := io.WriteString(w, md)
	return err
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paramFlags lists the command line flags that override run parameters.
var paramFlags = map[string]string{
	"fuel":               "fuel",
	"temperature":        "temperature_k",
	"min-fusion-mev":     "min_fusion_mev",
	"min-two-to-two-mev": "min_two_to_two_mev",
	"max-nuclides":       "max_nuclides",
	"max-loops":          "max_loops",
	"feedback-bosons":    "feedback_bosons",
	"feedback-fermions":  "feedback_fermions",
	"allow-dimers":       "allow_dimers",
	"exclude-melted":     "exclude_melted",
	"exclude-boiled-off": "exclude_boiled_off",
	"basis":              "statistics_basis",
}

// RegisterParamFlags adds the parameter override flags to fs.
func RegisterParamFlags(fs *pflag.FlagSet) {
	fs.String("fuel", "", "Comma separated fuel nuclides, e.g. \"H-1,Li-7,Ni-58\"")
	fs.Float64("temperature", domain.DefaultTemperatureK, "Reactor temperature in kelvin")
	fs.Float64("min-fusion-mev", 0, "Minimum energy of admitted fusion reactions")
	fs.Float64("min-two-to-two-mev", 0, "Minimum energy of admitted two-to-two reactions")
	fs.Int("max-nuclides", domain.DefaultMaxNuclides, "Pool capacity")
	fs.Int("max-loops", domain.DefaultMaxLoops, "Maximum number of loops")
	fs.Bool("feedback-bosons", true, "Feed boson products back into the pool")
	fs.Bool("feedback-fermions", true, "Feed fermion products back into the pool")
	fs.Bool("allow-dimers", true, "Allow reactions between two atoms of a diatomic element")
	fs.Bool("exclude-melted", false, "Drop reactions with a melted input")
	fs.Bool("exclude-boiled-off", false, "Drop reactions with a boiled off input")
	fs.String("basis", string(domain.BasisNuclear), "Spin statistics basis: nuclear or atomic")
}

// ParamOverrides collects the parameter flags the user actually set, keyed by
// parameter name. Values stay strings and are decoded by config.DecodeParameters.
func ParamOverrides(fs *pflag.FlagSet) map[string]any {
	raw := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		if key, ok := paramFlags[f.Name]; ok {
			raw[key] = f.Value.String()
		}
	})
	return raw
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
