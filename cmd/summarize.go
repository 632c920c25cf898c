package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <url>",
	Short: "Summarize a hospital website into narrative lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.OpenAI.Key == "" {
			return eris.New("missing API credential")
		}

		lines, err := buildGenerator().SummarizeSite(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "summarize site")
		}
		for _, line := range lines.Lines {
			fmt.Println("- " + line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
