package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ltimer-go/types"
	"ltimer-go/x/logx"
)

const rootName = "ltimer-probe"

type rootParams struct {
	logLevel   string
	logFormat  string
	configFile string

	backend    string
	tscHz      uint64
	hpetBase   uint64
	ttcChannel string
}

func newRootCommand() *cobra.Command {
	var p rootParams
	root := &cobra.Command{
		Use:   rootName,
		Short: "Inspect the logical timer",
		Long: `Inspect the logical timer on this host.

Every flag can also be set through the environment: LTIMER_<FLAG> for
global flags and LTIMER_<COMMAND>_<FLAG> for command flags, with dashes
replaced by underscores (e.g. LTIMER_TIME_SAMPLES=10).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnvironmentVariables(cmd); err != nil {
				return err
			}
			if err := logx.SetLevel(p.logLevel); err != nil {
				return err
			}
			logx.SetFormat(p.logFormat)
			logx.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	fl := root.PersistentFlags()
	fl.StringVar(&p.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fl.StringVar(&p.logFormat, "log-format", "text", "log format: text or json")
	fl.StringVarP(&p.configFile, "config", "c", "", "timer config file (yaml or json, same keys as config/timer)")
	fl.StringVarP(&p.backend, "backend", "b", "auto", "timer backend: auto, hpet, pit or ttc")
	fl.Uint64Var(&p.tscHz, "tsc-hz", 0, "reference counter rate for the pit backend (0 calibrates)")
	fl.Uint64Var(&p.hpetBase, "hpet-base", 0, "hpet register block address (0 reads ACPI)")
	fl.StringVar(&p.ttcChannel, "ttc-channel", "ttc0_timer1", "ttc channel for the ttc backend")

	root.AddCommand(newDescribeCommand(&p), newTimeCommand(&p))
	return root
}

// timerConfig merges the config file (if any) with flags. Flags that were
// set, on the command line or through the environment, win.
func (p *rootParams) timerConfig(cmd *cobra.Command, defaultTSCHz uint64) (types.TimerConfig, error) {
	var cfg types.TimerConfig
	if p.configFile != "" {
		v := viper.New()
		v.SetConfigFile(p.configFile)
		if err := v.ReadInConfig(); err != nil {
			return cfg, err
		}
		cfg = types.TimerConfig{
			Backend: v.GetString("backend"),
			HPET: types.HPETParams{
				Base:      v.GetUint64("hpet.base"),
				Length:    v.GetUint64("hpet.length"),
				MSIVector: v.GetUint32("hpet.msi_vector"),
			},
			PIT: types.PITParams{TSCHz: v.GetUint64("pit.tsc_hz")},
			TTC: types.TTCParams{Channel: v.GetString("ttc.channel")},
		}
	}

	fl := cmd.Flags()
	if cfg.Backend == "" || fl.Changed("backend") {
		cfg.Backend = p.backend
	}
	if fl.Changed("tsc-hz") {
		cfg.PIT.TSCHz = p.tscHz
	}
	if cfg.PIT.TSCHz == 0 {
		cfg.PIT.TSCHz = defaultTSCHz
	}
	if fl.Changed("hpet-base") {
		cfg.HPET.Base = p.hpetBase
	}
	if cfg.TTC.Channel == "" || fl.Changed("ttc-channel") {
		cfg.TTC.Channel = p.ttcChannel
	}
	return cfg, nil
}
