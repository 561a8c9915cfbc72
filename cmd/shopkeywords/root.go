package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/logger"
)

const envPrefix = "ETSY"

// settings is resolved once per invocation from flags, ETSY_* env and the
// config file, in that order of precedence.
type settings struct {
	v *viper.Viper

	cfg     config.Config
	vr      config.Validation
	cfgPath string
	dataDir string
	apiKey  string
}

// valid fails when the loaded config has validation errors.
func (s *settings) valid() error {
	return s.vr.Err()
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "shopkeywords [flags] store [store...]",
		Short: "Find the weighted keywords of Etsy shops",
		Long: `Fetches every active listing of each store, tags titles and descriptions,
and prints the highest weighted keywords and phrases per store.`,
		Example:       "  shopkeywords --api-key XXXX --top 5 printandclay",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.valid(); err != nil {
				return err
			}
			top := s.cfg.Output.Top
			if s.v.IsSet("top") {
				top = s.v.GetInt("top")
			}
			if top < 0 {
				return errors.New("--top must be >= 0")
			}
			return runAnalyze(cmd.Context(), s, args, top, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("api-key", "a", "", "Etsy API key (env ETSY_API_KEY, falls back to the OS keychain)")
	pf.Bool("debug", false, "enable debug logging (env ETSY_DEBUG)")
	pf.String("config", "", "config file (default <data-dir>/config.yml)")
	pf.String("data-dir", ".", "directory for config and cache (env ETSY_DATA_DIR)")
	cmd.Flags().IntP("top", "t", 5, "number of keywords to print per store, 0 for all (env ETSY_TOP)")

	s.v.SetEnvPrefix(envPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()
	_ = s.v.BindPFlags(pf)
	_ = s.v.BindPFlags(cmd.Flags())

	cmd.AddCommand(newServeCmd(s), newKeyCmd(), newConfigCmd(s))
	return cmd
}

func (s *settings) load() error {
	s.dataDir = s.v.GetString("data-dir")
	if strings.TrimSpace(s.dataDir) == "" {
		s.dataDir = "."
	}
	s.apiKey = s.v.GetString("api-key")

	explicit := s.v.GetString("config")
	s.cfgPath = explicit
	if s.cfgPath == "" {
		s.cfgPath = config.UserConfigPath(s.dataDir)
	}

	var (
		cfg config.Config
		err error
	)
	if explicit != "" {
		cfg, err = config.Load(s.cfgPath)
	} else {
		cfg, err = config.LoadOptional(s.cfgPath)
	}
	if err != nil {
		return fmt.Errorf("config %s: %w", s.cfgPath, err)
	}
	if s.v.IsSet("data-dir") || cfg.App.DataDir == "" {
		cfg.App.DataDir = s.dataDir
	}

	s.cfg, s.vr = config.NormalizeAndValidate(cfg)

	logger.Init(s.cfg.App.LogLevel)
	if s.v.GetBool("debug") {
		logger.SetLevel(logger.DEBUG)
	}
	for _, w := range s.vr.Warnings {
		logger.Warn("[config] %s", w)
	}
	logger.Debug("[config] path=%s data_dir=%s", s.cfgPath, s.cfg.App.DataDir)
	return nil
}
