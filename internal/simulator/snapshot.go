package simulator

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"homenet/internal/storage"
)

// Dataset bundles one full site generation for snapshot export.
type Dataset struct {
	Pumps       []PumpRecord
	Tanks       []TankRecord
	Consumption []ConsumptionRecord
}

// GenerateSite produces a full dataset for a site: four pumps across two
// buildings with their configured scenarios, one tank per pump, and five
// units per building covering every consumption pattern.
func (g *Generator) GenerateSite(buildings []string, start time.Time, days int) Dataset {
	var ds Dataset
	unitPatterns := []UnitPattern{
		PatternNormalFamily, PatternLeak, PatternLowUsage, PatternHighUsage, PatternVariable,
	}
	for _, bld := range buildings {
		for pumpNum := 1; pumpNum <= 2; pumpNum++ {
			pumpID := fmt.Sprintf("PUMP_%s_%02d", bld, pumpNum)
			ds.Pumps = append(ds.Pumps, g.GeneratePumpSeries(pumpID, ScenarioFor(pumpID), start, days)...)

			tankID := fmt.Sprintf("TANK_%s_%02d", bld, pumpNum)
			capacity := 5000
			if pumpNum == 2 {
				capacity = 3000
			}
			ds.Tanks = append(ds.Tanks, g.GenerateTankSeries(tankID, capacity, start, days)...)
		}
		for i, pattern := range unitPatterns {
			unitID := fmt.Sprintf("UNIT_%s_%d", bld, 101+i)
			ds.Consumption = append(ds.Consumption, g.GenerateConsumptionSeries(unitID, pattern, start, days)...)
		}
	}
	return ds
}

// WriteSnapshot exports the dataset as CSV objects under keyPrefix.
// Keys follow snapshots/<prefix>/water_pumps.csv and so on.
func WriteSnapshot(ctx context.Context, st storage.Storage, keyPrefix string, ds Dataset) error {
	files := []struct {
		name string
		csv  func() ([]byte, error)
	}{
		{"water_pumps.csv", func() ([]byte, error) { return pumpsCSV(ds.Pumps) }},
		{"water_tanks.csv", func() ([]byte, error) { return tanksCSV(ds.Tanks) }},
		{"water_consumption.csv", func() ([]byte, error) { return consumptionCSV(ds.Consumption) }},
	}
	for _, f := range files {
		data, err := f.csv()
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.name, err)
		}
		key := fmt.Sprintf("snapshots/%s/%s", keyPrefix, f.name)
		_, err = st.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
			Size:        int64(len(data)),
			ContentType: "text/csv",
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
	}
	return nil
}

func pumpsCSV(records []PumpRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"pump_id", "building_id", "tank_id", "timestamp", "status",
		"current_amps", "vibration_mm_s", "temperature_celsius", "flow_rate_lpm", "pressure_psi"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.PumpID, r.BuildingID, r.TankID, r.Timestamp.Format(time.RFC3339), r.Status,
			formatFloat(r.CurrentAmps), formatFloat(r.VibrationMMS), formatFloat(r.TemperatureCelsius),
			formatFloat(r.FlowRateLPM), formatFloat(r.PressurePSI),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func tanksCSV(records []TankRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"tank_id", "building_id", "timestamp", "capacity_liters",
		"current_level_liters", "level_percentage", "inlet_flow_rate_lpm", "outlet_flow_rate_lpm"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.TankID, r.BuildingID, r.Timestamp.Format(time.RFC3339),
			strconv.Itoa(r.CapacityLiters), strconv.Itoa(r.CurrentLevelLiters),
			formatFloat(r.LevelPercentage), formatFloat(r.InletFlowRateLPM), formatFloat(r.OutletFlowRateLPM),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func consumptionCSV(records []ConsumptionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"timestamp", "building_id", "unit_id", "tank_id",
		"consumption_liters", "flow_rate_lpm"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(time.RFC3339), r.BuildingID, r.UnitID, r.TankID,
			formatFloat(r.ConsumptionLiters), formatFloat(r.FlowRateLPM),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
