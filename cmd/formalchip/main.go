// Command formalchip drives the property-synthesis and propose/prove/
// repair loop described in internal/loop, internal/doctor, and
// internal/report against a project's formalchip.toml.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/cmd/formalchip/commands"
)

var (
	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:     "formalchip",
	Short:   "Synthesise and iterate SVA properties against a formal engine",
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "formalchip.toml", "Path to project config")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(commands.NewRunCmd())
	rootCmd.AddCommand(commands.NewDoctorCmd())
	rootCmd.AddCommand(commands.NewGateCmd())
	rootCmd.AddCommand(commands.NewReportCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
