package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"ltimer-go/ltimer"
)

func newDescribeCommand(p *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show the selected timer and the resources it needs",
		Long: `Run the backend selection and print the interrupts and memory regions the
chosen timer declares. The timer is not initialised.`,
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
			lt, err := ltimer.DescribeFromConfig(plat.ops, cfg)
			if err != nil {
				return err
			}
			defer lt.Destroy()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(lt.Resources())
		},
	}
}
