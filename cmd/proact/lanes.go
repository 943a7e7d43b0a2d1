package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func lanesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "lanes",
		Short: "Print the resolved scheduler lanes",
		Long: `Print the lanes of the scheduler in drain order, marking the lane
used by default and the lane effects run on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "lanes:")
			for i, lane := range cfg.Lanes {
				var marks string
				if lane == cfg.DefaultLane {
					marks += " (default)"
				}
				if lane == cfg.EffectLane {
					marks += " (effects)"
				}
				fmt.Fprintf(w, "  %d. %s%s\n", i+1, lane, marks)
			}
			fmt.Fprintf(w, "closing lane: %s\n", cfg.ClosingLane)
			fmt.Fprintf(w, "log level: %s\n", cfg.LogLevel)

			return nil
		},
	}
}
