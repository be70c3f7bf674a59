package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"promptbench/pkg/types"
)

func newModelsCmd(st *cliState) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models the backend offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(st.cfg, st.log, nil)
			if err != nil {
				return err
			}
			if err := sess.Reload(cmd.Context()); err != nil {
				st.log.Warn().Err(err).Msg("catalog load incomplete")
			}
			models := sess.ListModels()
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), types.ModelsResponse{Models: models})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFAMILY\tPARAMS\tQUANT")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Family, m.ParameterSize, m.Quant)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newPromptsCmd(st *cliState) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "List the prompts in the prompt source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(st.cfg, st.log, nil)
			if err != nil {
				return err
			}
			if err := sess.Reload(cmd.Context()); err != nil {
				st.log.Warn().Err(err).Msg("catalog load incomplete")
			}
			prompts := sess.ListPrompts()
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), types.PromptsResponse{Prompts: prompts})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tCHARS")
			for _, p := range prompts {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Name, len([]rune(p.Content)))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
