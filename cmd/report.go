package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yukiharu/aivis/internal/model"
)

var reportPersonasFile string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a visibility report from a personas JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.OpenAI.Key == "" {
			return eris.New("missing API credential")
		}

		raw, err := os.ReadFile(reportPersonasFile)
		if err != nil {
			return eris.Wrap(err, "read personas file")
		}
		var personas []model.ReportPersona
		if err := json.Unmarshal(raw, &personas); err != nil {
			return eris.Wrap(err, "parse personas file")
		}
		if len(personas) == 0 {
			return eris.New("no personas in file")
		}

		zap.L().Info("running report", zap.Int("personas", len(personas)))
		result, err := buildReportRunner().Run(cmd.Context(), personas)
		if err != nil {
			return eris.Wrap(err, "run report")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPersonasFile, "personas", "personas.json", "path to personas JSON file")
	rootCmd.AddCommand(reportCmd)
}
