package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "levelup",
		Short:         "levelup: gamified task progression server",
		Long:          "levelup runs the progression server and offers export, import and admin tooling for its stores.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "levelup.yml", "path to the YAML config file")

	cmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newImportCmd(),
		newAdminCmd(),
		newStatusCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, Bad.Render(IconError+" "+err.Error()))
		os.Exit(1)
	}
}
