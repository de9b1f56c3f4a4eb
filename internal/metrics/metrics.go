package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Agrid-Dev/heatload/internal/report"
)

const (
	metricPrefix = "heatload_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	calculationsTotal  *prometheus.CounterVec
	calculationLatency *prometheus.HistogramVec

	buildingLoad *prometheus.GaugeVec
	roomLoad     *prometheus.GaugeVec
	roomFlowRate *prometheus.GaugeVec

	exportsTotal *prometheus.CounterVec
)

// Init registers the collectors on the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		calculationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculations_total",
				Help: "Total heating load calculations by result",
			},
			[]string{"result"},
		)
		calculationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calculation_latency_seconds",
				Help:    "Time to build and summarize a building",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		buildingLoad = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "building_heat_load_watts",
				Help: "Total heating load of the building",
			},
			[]string{"project"},
		)
		roomLoad = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "room_heat_load_watts",
				Help: "Room heating load by component (transmission, ventilation, total)",
			},
			[]string{"project", "room", "component"},
		)
		roomFlowRate = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "room_flow_rate_liters_per_hour",
				Help: "Required heating water flow per room",
			},
			[]string{"project", "room"},
		)
		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			calculationsTotal,
			calculationLatency,
			buildingLoad,
			roomLoad,
			roomFlowRate,
			exportsTotal,
		)
	})
}

func ObserveCalculation(result string, duration time.Duration) {
	if calculationsTotal == nil {
		return
	}
	calculationsTotal.WithLabelValues(result).Inc()
	calculationLatency.WithLabelValues(result).Observe(duration.Seconds())
}

// SetLoads replaces the load gauges of one project with the values of s.
func SetLoads(s report.Summary) {
	if buildingLoad == nil {
		return
	}
	project := prometheus.Labels{"project": s.ProjectID}
	roomLoad.DeletePartialMatch(project)
	roomFlowRate.DeletePartialMatch(project)

	buildingLoad.WithLabelValues(s.ProjectID).Set(s.TotalHeatLoadW)
	for _, r := range s.Rooms {
		roomLoad.WithLabelValues(s.ProjectID, r.Name, "transmission").Set(r.TransmissionLossW)
		roomLoad.WithLabelValues(s.ProjectID, r.Name, "ventilation").Set(r.VentilationLossW)
		roomLoad.WithLabelValues(s.ProjectID, r.Name, "total").Set(r.TotalHeatLoadW)
		if r.FlowRateLH != nil {
			roomFlowRate.WithLabelValues(s.ProjectID, r.Name).Set(*r.FlowRateLH)
		}
	}
}

func IncExport(format, result string) {
	if exportsTotal == nil {
		return
	}
	exportsTotal.WithLabelValues(format, result).Inc()
}
