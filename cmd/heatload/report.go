package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Agrid-Dev/heatload/internal/builder"
	"github.com/Agrid-Dev/heatload/internal/report"
)

func (c *cli) reportCmd() *cobra.Command {
	var (
		file     string
		format   string
		xlsxPath string
		pdfPath  string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Calculate a building configuration file and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if file == "" {
				file = c.cfg.Building.Path
			}

			b, err := builder.FileSource{Path: file, Logger: c.logger}.Build(cmd.Context())
			if err != nil {
				return err
			}
			s := report.Summarize(c.cfg.ProjectID, b)

			if xlsxPath != "" {
				if err := writeExport(xlsxPath, s, report.BuildXLSX); err != nil {
					return err
				}
				c.logger.Info("xlsx report written", zap.String("path", xlsxPath))
			}
			if pdfPath != "" {
				if err := writeExport(pdfPath, s, report.BuildPDF); err != nil {
					return err
				}
				c.logger.Info("pdf report written", zap.String("path", pdfPath))
			}
			return report.Write(c.out, s, f)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "building configuration (defaults to building.path of the app config)")
	cmd.Flags().StringVar(&format, "format", string(report.FormatText), "output format: text|json|yaml|csv")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an XLSX workbook to this path")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "also write a PDF report to this path")
	return cmd
}

func writeExport(path string, s report.Summary, build func(report.Summary) ([]byte, error)) error {
	data, err := build(s)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
