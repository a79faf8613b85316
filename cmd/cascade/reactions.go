package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/cascade/internal/cli"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/ports"
	"github.com/spf13/cobra"
)

var reactionsCmd = &cobra.Command{
	Use:   "reactions <nuclide>",
	Short: "List the dataset reactions consuming a nuclide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nuclide, err := domain.ParseNuclide(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		jsonMode, _ := cmd.Flags().GetBool("json")

		src, err := cli.OpenSource(cmd.Context(), cfg.Source)
		if err != nil {
			return err
		}
		if c, ok := src.(io.Closer); ok {
			defer c.Close()
		}
		browser, ok := src.(ports.ReactionBrowser)
		if !ok {
			return errors.New("the configured dataset cannot be browsed")
		}

		reactions, err := browser.ReactionsWith(cmd.Context(), nuclide)
		if err != nil {
			return err
		}
		fission, err := browser.FissionOf(cmd.Context(), nuclide)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonMode {
			records := make([]domain.ReactionRecord, 0, len(reactions))
			for _, r := range reactions {
				records = append(records, domain.AdmittedReaction{Reaction: r}.Record())
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"nuclide": nuclide, "reactions": records, "fission": fission})
		}

		fmt.Fprintf(out, "%s: %d reactions, %d fission channels\n", nuclide, len(reactions), len(fission))
		for _, r := range reactions {
			fmt.Fprintf(out, "  %-10s %s\n", r.Family(), r)
		}
		for _, f := range fission {
			fmt.Fprintf(out, "  %-10s %s\n", "fission", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reactionsCmd)
	reactionsCmd.Flags().Bool("json", false, "Print JSON instead of text")
}
