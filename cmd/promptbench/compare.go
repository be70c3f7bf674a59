package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"promptbench/internal/app"
	"promptbench/internal/batch"
	"promptbench/internal/present"
	"promptbench/internal/selection"
	"promptbench/pkg/types"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type compareOptions struct {
	prompts []string
	models  []string
	output  string
	width   int
	noInput bool
}

func newCompareCmd(st *cliState) *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run a batch and print the answers grouped by model",
		Example: "  promptbench compare --prompt haiku --prompt summary --model llama3.2:3b --model qwen2.5:7b\n" +
			"  promptbench compare --output json > results.json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sess, err := newSession(st.cfg, st.log, nil)
			if err != nil {
				return err
			}
			if err := sess.Reload(ctx); err != nil {
				st.log.Warn().Err(err).Msg("catalog load incomplete")
			}
			interactive := !opts.noInput && opts.output == outputText && isTerminal(os.Stdin) && isTerminal(os.Stdout)
			return runCompare(ctx, sess, opts, interactive, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringArrayVarP(&opts.prompts, "prompt", "p", nil, "Prompt id to run (repeatable, in display order)")
	cmd.Flags().StringArrayVarP(&opts.models, "model", "m", nil, "Model id to run (repeatable, in display order)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text|json")
	cmd.Flags().IntVar(&opts.width, "width", 0, "Wrap width for text output (default 80)")
	cmd.Flags().BoolVar(&opts.noInput, "no-input", false, "Never prompt interactively")
	return cmd
}

func runCompare(ctx context.Context, sess *app.Session, opts *compareOptions, interactive bool, out io.Writer) error {
	if opts.output != outputText && opts.output != outputJSON {
		return fmt.Errorf("unsupported output format: %s", opts.output)
	}
	promptIDs, modelIDs := opts.prompts, opts.models
	if interactive && (len(promptIDs) == 0 || len(modelIDs) == 0) {
		var err error
		if promptIDs, modelIDs, err = askSelection(sess, promptIDs, modelIDs); err != nil {
			return err
		}
	}
	if err := sess.Select(selection.KindPrompt, promptIDs); err != nil {
		return err
	}
	if err := sess.Select(selection.KindModel, modelIDs); err != nil {
		return err
	}

	var runErr error
	if interactive {
		action := func() { _, runErr = sess.Run(ctx) }
		if err := spinner.New().Title("Running batch...").Context(ctx).Action(action).Run(); err != nil {
			return err
		}
	} else {
		_, runErr = sess.Run(ctx)
	}
	switch {
	case errors.Is(runErr, batch.ErrEmptySelection):
		return errors.New("nothing to run: select at least one prompt (--prompt) and one model (--model)")
	case runErr != nil:
		return fmt.Errorf("run failed: %w", runErr)
	}

	cmp := sess.Comparison()
	if opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}
	return present.NewTextRenderer(out, opts.width).Render(out, cmp.Groups)
}

// askSelection fills the missing selections with multi-select forms.
func askSelection(sess *app.Session, promptIDs, modelIDs []string) ([]string, []string, error) {
	var fields []huh.Field
	if len(promptIDs) == 0 {
		fields = append(fields, multiSelect("Prompts", promptOptions(sess.ListPrompts()), &promptIDs))
	}
	if len(modelIDs) == 0 {
		fields = append(fields, multiSelect("Models", modelOptions(sess.ListModels()), &modelIDs))
	}
	if len(fields) == 0 {
		return promptIDs, modelIDs, nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm()).Run(); err != nil {
		return nil, nil, err
	}
	return promptIDs, modelIDs, nil
}

func multiSelect(title string, options []huh.Option[string], value *[]string) huh.Field {
	return huh.NewMultiSelect[string]().
		Title(title).
		Options(options...).
		Validate(func(v []string) error {
			if len(v) == 0 {
				return errors.New("select at least one")
			}
			return nil
		}).
		Value(value)
}

func promptOptions(prompts []types.Prompt) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(prompts))
	for _, p := range prompts {
		out = append(out, huh.NewOption(p.Name, p.ID))
	}
	return out
}

func modelOptions(models []types.Model) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		label := m.Name
		if m.ParameterSize != "" {
			label += " (" + m.ParameterSize + ")"
		}
		out = append(out, huh.NewOption(label, m.ID))
	}
	return out
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
