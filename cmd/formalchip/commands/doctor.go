package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulamai/formalchip/internal/doctor"
	"github.com/ulamai/formalchip/internal/engine"
)

// NewDoctorCmd wires the preflight report, exiting 0 when the report
// carries no fatal errors and 2 otherwise (spec.md §6).
func NewDoctorCmd() *cobra.Command {
	var printTemplate bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run preflight checks against the project config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if printTemplate {
				fmt.Print(engine.DefaultSBYTemplate())
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			report, err := doctor.Run(cfg)
			if err != nil {
				return err
			}

			for _, e := range report.Errors {
				fmt.Printf("error: %s\n", e)
			}
			for _, w := range report.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			for _, i := range report.Infos {
				fmt.Printf("info: %s\n", i)
			}
			fmt.Printf("candidates=%d placeholders=%d\n", report.CandidateCount, report.PlaceholderCount)

			if !report.OK() {
				os.Exit(2)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&printTemplate, "print-template", false, "Print the default SymbiYosys .sby template and exit")
	return cmd
}
