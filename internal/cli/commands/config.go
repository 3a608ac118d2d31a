package commands

import (
	"maps"
	"strings"

	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/cli/config"
	"github.com/rahulmdinesh/stock-market-data-pipeline/internal/secret"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, datespine.yaml, DATESPINE_
environment variables, flags and the selected environment are applied.
Passwords and secret-like options are redacted.`,
		Example: `  datespine config
  datespine config -t prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContextWithoutEngine(cmd)
			if err != nil {
				return err
			}

			if path := config.GetConfigFileUsed(); path != "" {
				cmdCtx.Renderer.Printf("# %s\n", path)
			}
			b, err := yaml.Marshal(redactConfig(cmdCtx.Cfg))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}

// redactConfig returns a copy of cfg with secrets masked.
func redactConfig(cfg *config.Config) *config.Config {
	out := *cfg
	if cfg.Target != nil {
		out.Target = redactTarget(cfg.Target)
	}
	if cfg.Environments != nil {
		out.Environments = make(map[string]config.EnvConfig, len(cfg.Environments))
		for name, env := range cfg.Environments {
			if env.Target != nil {
				env.Target = redactTarget(env.Target)
			}
			out.Environments[name] = env
		}
	}
	return &out
}

func redactTarget(t *config.TargetConfig) *config.TargetConfig {
	rt := *t
	rt.Password = secret.Redact(t.Password)
	if t.Options != nil {
		rt.Options = maps.Clone(t.Options)
		for k := range rt.Options {
			if isSecretKey(k) {
				rt.Options[k] = secret.Redact(rt.Options[k])
			}
		}
	}
	return &rt
}

func isSecretKey(k string) bool {
	k = strings.ToLower(k)
	for _, s := range []string{"password", "secret", "token", "passphrase"} {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}
