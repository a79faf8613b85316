package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/cascade"
	"github.com/aretw0/cascade/internal/cli"
	"github.com/aretw0/cascade/internal/config"
	"github.com/aretw0/cascade/internal/presentation/tui"
	"github.com/aretw0/cascade/pkg/observability"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a reaction cascade",
	Long: `Runs one cascade from the configured defaults, overridden by flags,
and writes the result as a report, markdown, JSON, CSV or a Mermaid graph.

  cascade run --fuel H-1,Li-7,Ni-58 --max-loops 5 --temperature 1200`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err := cli.NewLogger(cfg.Log)
		if err != nil {
			return err
		}

		params, err := config.DecodeParameters(cli.ParamOverrides(cmd.Flags()), cfg.Defaults)
		if err != nil {
			return err
		}
		rawFormat, _ := cmd.Flags().GetString("format")
		format, err := cli.ParseFormat(rawFormat)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")
		quiet, _ := cmd.Flags().GetBool("quiet")
		outPath, _ := cmd.Flags().GetString("output")
		verify, _ := cmd.Flags().GetBool("verify")

		// Setup signal handling
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		src, err := cli.OpenSource(sigCtx, cfg.Source)
		if err != nil {
			return err
		}
		if c, ok := src.(io.Closer); ok {
			defer c.Close()
		}

		var out io.Writer = cmd.OutOrStdout()
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("error creating output: %w", err)
			}
			defer f.Close()
			out = f
		}

		pretty := format == cli.FormatReport && cli.IsTerminal(out)
		if pretty && !quiet {
			tui.PrintBanner(out, cascade.Version)
		}

		_, err = cli.Execute(sigCtx, src, cli.RunOptions{
			Params:   params,
			Format:   format,
			Top:      top,
			Progress: !quiet && cli.IsTerminal(os.Stderr),
			Pretty:   pretty,
			Verify:   verify,
			Out:      out,
			Err:      cmd.ErrOrStderr(),
			Hooks:    observability.LogHooks(logger),
			Logger:   logger,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	cli.RegisterParamFlags(runCmd.Flags())
	runCmd.Flags().StringP("format", "f", "report", "Output format: report, markdown, json, csv, mermaid")
	runCmd.Flags().Int("top", 20, "Number of products listed in reports (0 for all)")
	runCmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress banner and progress lines")
	runCmd.Flags().Bool("verify", false, "Audit the result for consistency after the run")
}
