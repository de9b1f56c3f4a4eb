package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// Format is a textual output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("invalid report format: %q", s)
	}
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain; charset=utf-8"
	}
}

func Write(w io.Writer, s Summary, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return WriteCSV(w, s)
	default:
		return fmt.Errorf("invalid report format: %q", f)
	}
}

var csvHeader = []string{
	"room", "setpoint_temp_c", "delta_t_supply_return_k",
	"transmission_loss_w", "ventilation_loss_w", "total_heat_load_w", "flow_rate_l_h",
}

// WriteCSV writes one row per room.
func WriteCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range s.Rooms {
		row := []string{
			r.Name,
			formatFloat(r.SetpointC),
			formatOptional(r.SupplyReturnDeltaK),
			formatFloat(r.TransmissionLossW),
			formatFloat(r.VentilationLossW),
			formatFloat(r.TotalHeatLoadW),
			formatOptional(r.FlowRateLH),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// BuildXLSX renders a workbook with a summary sheet, one row per room and
// one row per surface.
func BuildXLSX(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const (
		summarySheet  = "summary"
		roomsSheet    = "rooms"
		surfacesSheet = "surfaces"
	)
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(roomsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(surfacesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Heating load report")
	_ = f.SetCellValue(summarySheet, "A3", "Project")
	_ = f.SetCellValue(summarySheet, "B3", s.ProjectID)
	_ = f.SetCellValue(summarySheet, "A4", "Rooms")
	_ = f.SetCellValue(summarySheet, "B4", len(s.Rooms))
	_ = f.SetCellValue(summarySheet, "A5", "Total building load (W)")
	_ = f.SetCellValue(summarySheet, "B5", s.TotalHeatLoadW)
	_ = f.SetCellValue(summarySheet, "A6", "Total building load (kW)")
	_ = f.SetCellValue(summarySheet, "B6", s.TotalHeatLoadKW)

	if err := setRow(f, roomsSheet, 1, []any{
		"Room", "Setpoint (°C)", "Delta T supply-return (K)", "Transmission (W)",
		"Ventilation (W)", "Total (W)", "Total (kW)", "Flow rate (l/h)", "Flow rate (l/min)",
	}); err != nil {
		return nil, err
	}
	if err := setRow(f, surfacesSheet, 1, []any{
		"Room", "Surface", "Area (m²)", "U-value (W/m²K)", "Delta T (K)", "Loss (W)",
	}); err != nil {
		return nil, err
	}

	surfaceRow := 2
	for i, r := range s.Rooms {
		row := []any{
			r.Name, r.SetpointC, optionalCell(r.SupplyReturnDeltaK), r.TransmissionLossW,
			r.VentilationLossW, r.TotalHeatLoadW, r.TotalHeatLoadKW,
			optionalCell(r.FlowRateLH), optionalCell(r.FlowRateLMin),
		}
		if r.FlowRateError != "" {
			row[7] = r.FlowRateError
		}
		if err := setRow(f, roomsSheet, i+2, row); err != nil {
			return nil, err
		}
		for _, sf := range r.Surfaces {
			if err := setRow(f, surfacesSheet, surfaceRow, []any{
				r.Name, sf.Name, sf.AreaM2, sf.UValue, sf.DeltaTK, sf.HeatLossW,
			}); err != nil {
				return nil, err
			}
			surfaceRow++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func optionalCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// BuildPDF renders a one-table PDF of the report.
func BuildPDF(s Summary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Heating load report")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	if s.ProjectID != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", tr(s.ProjectID)))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Total building load: %.1f W (%.3f kW)", s.TotalHeatLoadW, s.TotalHeatLoadKW))
	pdf.Ln(8)

	widths := []float64{50, 22, 28, 28, 28, 30}
	headers := []string{"Room", tr("Setpoint (°C)"), "Transmission (W)", "Ventilation (W)", "Total (W)", "Flow (l/min)"}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, r := range s.Rooms {
		flow := "-"
		switch {
		case r.FlowRateLMin != nil:
			flow = fmt.Sprintf("%.1f", *r.FlowRateLMin)
		case r.FlowRateError != "":
			flow = "undefined"
		}
		cells := []string{
			tr(r.Name),
			fmt.Sprintf("%.1f", r.SetpointC),
			fmt.Sprintf("%.1f", r.TransmissionLossW),
			fmt.Sprintf("%.1f", r.VentilationLossW),
			fmt.Sprintf("%.1f", r.TotalHeatLoadW),
			flow,
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
