package report

import (
	"fmt"
	"io"
	"strings"
)

const (
	labelWidth = 30
	valueWidth = 12
	ruleWidth  = 70
)

// WriteText renders the fixed-width terminal report.
func WriteText(w io.Writer, s Summary) error {
	ew := &errWriter{w: w}
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	ew.printf("%s\nHeating load report\n%s\n", heavy, heavy)
	for _, r := range s.Rooms {
		ew.printf("Room: %s\n", r.Name)
		ew.line("Setpoint temperature", fmt.Sprintf("%*.1f °C", valueWidth, r.SetpointC))
		if r.SupplyReturnDeltaK != nil {
			ew.line("Delta T supply-return flow", fmt.Sprintf("%*.1f K", valueWidth, *r.SupplyReturnDeltaK))
		}
		ew.line("Transmission losses", fmt.Sprintf("%*.1f W", valueWidth, r.TransmissionLossW))
		ew.line("Ventilation losses", fmt.Sprintf("%*.1f W", valueWidth, r.VentilationLossW))
		ew.line("Total room load", watts(r.TotalHeatLoadW))
		switch {
		case r.FlowRateLMin != nil:
			ew.line("Flow rate", fmt.Sprintf("%*.1f l/min", valueWidth, *r.FlowRateLMin))
		case r.FlowRateError != "":
			ew.line("Flow rate", fmt.Sprintf("%*s (%s)", valueWidth, "undefined", r.FlowRateError))
		}
		ew.printf("%s\n", light)
	}
	ew.printf("%-*s %s\n", labelWidth+2, "Total building load           :", watts(s.TotalHeatLoadW))
	ew.printf("%s\n", heavy)
	return ew.err
}

func watts(w float64) string {
	return fmt.Sprintf("%*.1f W      (%*.3f kW)", valueWidth, w, valueWidth, w/1000)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// line renders "  Transmission losses         :        75.0 W".
func (e *errWriter) line(label, value string) {
	e.printf("  %-*s %s\n", labelWidth, fmt.Sprintf("%-28s:", label), value)
}
