package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ltimer"

func envReader(prefix string) *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix(prefix)
	return v
}

// checkEnvironmentVariables sets every flag not given on the command line
// from the environment: LTIMER_<FLAG> for global flags and
// LTIMER_<COMMAND>_<FLAG> for the command's own flags. Dashes in flag names
// become underscores.
func checkEnvironmentVariables(command *cobra.Command) error {
	var errs []string
	global := envReader(envPrefix)
	local := envReader(fmt.Sprintf("%s_%s", envPrefix, command.Name()))
	persistent := command.Root().PersistentFlags()

	command.Flags().VisitAll(func(f *pflag.Flag) {
		v := local
		if command == command.Root() || persistent.Lookup(f.Name) != nil {
			v = global
		}
		name := strings.ReplaceAll(f.Name, "-", "_")
		if !f.Changed && v.IsSet(name) {
			if err := command.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(name))); err != nil {
				errs = append(errs, err.Error())
			}
		}
	})

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error mapping environment variables to command flags: %s", strings.Join(errs, "; "))
}
