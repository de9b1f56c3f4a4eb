package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Agrid-Dev/heatload/internal/builder"
)

// SweepOutdoorTemperature recomputes the building for every outdoor
// temperature in [from, to] and writes one CSV row per room and step.
// Surfaces facing the coldest temperature of the config are treated as
// exterior, as is the ventilation supply air.
func SweepOutdoorTemperature(configPath, filename string, from, to, step float64) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %v", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(configPath)), ".")
	cfg, err := builder.DecodeConfig(data, format)
	if err != nil {
		return err
	}
	outdoor, ok := coldest(cfg)
	if !ok {
		return fmt.Errorf("no exterior temperature found in %s", configPath)
	}

	// Create CSV file
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"Outdoor", "Room", "Transmission", "Ventilation", "Total"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for t := from; t <= to; t += step {
		b, err := withOutdoor(cfg, outdoor, t).Building()
		if err != nil {
			return fmt.Errorf("outdoor %.1f °C: %v", t, err)
		}
		for _, r := range b.Rooms() {
			if err := writer.Write([]string{
				fmt.Sprintf("%.1f", t),
				r.Name,
				fmt.Sprintf("%.2f", r.TransmissionLoss()),
				fmt.Sprintf("%.2f", r.VentilationLoss()),
				fmt.Sprintf("%.2f", r.TotalHeatLoad()),
			}); err != nil {
				return fmt.Errorf("failed to write CSV record: %v", err)
			}
		}
	}
	return nil
}

func coldest(cfg builder.BuildingConfig) (float64, bool) {
	var (
		lowest float64
		found  bool
	)
	see := func(v *float64) {
		if v != nil && (!found || *v < lowest) {
			lowest, found = *v, true
		}
	}
	for _, r := range cfg.Rooms {
		for _, s := range r.Surfaces {
			see(s.OtherSideC)
		}
		if r.Ventilation != nil {
			see(r.Ventilation.SupplyTempC)
		}
	}
	return lowest, found
}

// withOutdoor copies cfg, replacing every temperature equal to outdoor by t.
func withOutdoor(cfg builder.BuildingConfig, outdoor, t float64) builder.BuildingConfig {
	swap := func(v *float64) *float64 {
		if v != nil && *v == outdoor {
			return &t
		}
		return v
	}
	out := builder.BuildingConfig{Rooms: make([]builder.RoomConfig, len(cfg.Rooms))}
	for i, r := range cfg.Rooms {
		r.Surfaces = append([]builder.SurfaceConfig(nil), r.Surfaces...)
		for j := range r.Surfaces {
			r.Surfaces[j].OtherSideC = swap(r.Surfaces[j].OtherSideC)
		}
		if r.Ventilation != nil {
			v := *r.Ventilation
			v.SupplyTempC = swap(v.SupplyTempC)
			r.Ventilation = &v
		}
		out.Rooms[i] = r
	}
	return out
}

func main() {
	path := "rooms.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := SweepOutdoorTemperature(path, "room_loads.csv", -20, 15, 1); err != nil {
		log.Fatal(err)
	}
}
