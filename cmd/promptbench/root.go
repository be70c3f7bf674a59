package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"promptbench/internal/config"
	"promptbench/internal/logging"
)

// cliState is shared by the command tree and filled in PersistentPreRunE.
type cliState struct {
	configPath string
	flags      config.Config
	cfg        config.Config
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	st := &cliState{}
	root := &cobra.Command{
		Use:           "promptbench",
		Short:         "Run every selected prompt against every selected model and compare the answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&st.configPath, "config", "", "Path to config file (.yaml|.yml|.json|.toml)")
	pf.StringVar(&st.flags.Backend, "backend", "", "Inference backend: ollama|openai|llama")
	pf.StringVar(&st.flags.BackendURL, "backend-url", "", "Backend base URL (default depends on backend)")
	pf.StringVar(&st.flags.APIKey, "api-key", "", "API key for the openai backend")
	pf.StringVar(&st.flags.PromptsSource, "prompts", "", "Prompt source: directory or http(s) URL holding manifest.json")
	pf.StringVar(&st.flags.ModelsDir, "models-dir", "", "Directory of *.gguf files for the llama backend")
	pf.Var(&durationFlag{&st.flags.RequestTimeout}, "request-timeout", "Per inference call timeout, e.g. 2m")
	pf.StringVar(&st.flags.LogLevel, "log-level", "", "Log level: debug|info|warn|error|off")
	pf.StringVar(&st.flags.LogFormat, "log-format", "", "Log format: console|json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(st.configPath, os.LookupEnv, st.flags)
		if err != nil {
			return err
		}
		st.cfg = cfg
		log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		st.log = log
		return nil
	}

	root.AddCommand(
		newServeCmd(st),
		newCompareCmd(st),
		newModelsCmd(st),
		newPromptsCmd(st),
		newVersionCmd(),
	)
	return root
}

// resolveConfig layers defaults, the config file, PROMPTBENCH_* variables
// and explicit flags, later layers winning.
func resolveConfig(path string, lookup func(string) (string, bool), flags config.Config) (config.Config, error) {
	cfg := config.Defaults()
	if path != "" {
		fileCfg, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = config.Merge(cfg, fileCfg)
	}
	envCfg, err := config.FromEnv(lookup)
	if err != nil {
		return cfg, err
	}
	cfg = config.Merge(cfg, envCfg)
	return config.Merge(cfg, flags), nil
}

// durationFlag adapts config.Duration to pflag.Value.
type durationFlag struct{ d *config.Duration }

func (f *durationFlag) String() string {
	if f.d == nil || *f.d == 0 {
		return ""
	}
	b, _ := f.d.MarshalText()
	return string(b)
}

func (f *durationFlag) Set(s string) error { return f.d.UnmarshalText([]byte(s)) }
func (f *durationFlag) Type() string       { return "duration" }
