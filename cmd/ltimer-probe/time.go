package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ltimer-go/ltimer"
	"ltimer-go/x/logx"
)

func newTimeCommand(p *rootParams) *cobra.Command {
	var (
		samples  int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Initialise the selected timer and print its time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plat, err := openPlatform()
			if err != nil {
				return err
			}
			defer plat.close()

			cfg, err := p.timerConfig(cmd, plat.tscHz)
			if err != nil {
				return err
			}
			lt, err := ltimer.FromConfig(plat.ops, cfg)
			if err != nil {
				return err
			}
			defer lt.Destroy()
			logx.New("probe").Infof("using %s", lt.Kind())

			out := cmd.OutOrStdout()
			var prev uint64
			for i := 0; i < samples; i++ {
				if i > 0 {
					time.Sleep(interval)
				}
				now, err := lt.GetTime()
				if err != nil {
					return err
				}
				if i == 0 {
					fmt.Fprintf(out, "%s %d ns\n", lt.Kind(), now)
				} else {
					fmt.Fprintf(out, "%s %d ns (+%d)\n", lt.Kind(), now, now-prev)
				}
				prev = now
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&samples, "samples", "n", 5, "number of readings")
	cmd.Flags().DurationVar(&interval, "interval", 100*time.Millisecond, "delay between readings")
	return cmd
}
