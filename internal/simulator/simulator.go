// Package simulator produces synthetic water telemetry for demos and
// model development. Output is deterministic for a given seed so test
// fixtures and demo environments stay reproducible.
package simulator

import (
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"homenet/internal/model"
)

// Scenario selects the health trajectory a pump follows over the window.
type Scenario string

const (
	ScenarioGradualBearingFailure Scenario = "gradual_bearing_failure"
	ScenarioEarlyWarningNormal    Scenario = "early_warning_normal"
	ScenarioSuddenSealFailure     Scenario = "sudden_seal_failure"
	ScenarioHealthyNormal         Scenario = "healthy_normal"
)

// UnitPattern selects the consumption behavior of a residential unit.
type UnitPattern string

const (
	PatternNormalFamily UnitPattern = "normal_family"
	PatternLeak         UnitPattern = "leak"
	PatternLowUsage     UnitPattern = "low_usage"
	PatternHighUsage    UnitPattern = "high_usage"
	PatternVariable     UnitPattern = "variable"
)

var defaultScenarios = map[string]Scenario{
	"PUMP_BLD_001_01": ScenarioGradualBearingFailure,
	"PUMP_BLD_001_02": ScenarioEarlyWarningNormal,
	"PUMP_BLD_002_01": ScenarioSuddenSealFailure,
	"PUMP_BLD_002_02": ScenarioHealthyNormal,
}

// ScenarioFor returns the configured scenario for a pump, healthy by default.
func ScenarioFor(assetID string) Scenario {
	if sc, ok := defaultScenarios[assetID]; ok {
		return sc
	}
	return ScenarioHealthyNormal
}

// PumpRecord is one 30-minute observation of a pump.
type PumpRecord struct {
	PumpID             string
	BuildingID         string
	TankID             string
	Timestamp          time.Time
	Status             string
	CurrentAmps        float64
	VibrationMMS       float64
	TemperatureCelsius float64
	FlowRateLPM        float64
	PressurePSI        float64
}

// TankRecord is one hourly observation of a storage tank.
type TankRecord struct {
	TankID             string
	BuildingID         string
	Timestamp          time.Time
	CapacityLiters     int
	CurrentLevelLiters int
	LevelPercentage    float64
	InletFlowRateLPM   float64
	OutletFlowRateLPM  float64
}

// ConsumptionRecord is one 4-hour consumption observation of a unit.
type ConsumptionRecord struct {
	UnitID            string
	BuildingID        string
	TankID            string
	Timestamp         time.Time
	ConsumptionLiters float64
	FlowRateLPM       float64
}

// Generator produces deterministic synthetic telemetry. Each asset gets
// its own random stream derived from the base seed and the asset ID, so
// adding an asset never shifts the series of another.
type Generator struct {
	seed int64
}

// New creates a Generator with the given base seed.
func New(seed int64) *Generator {
	return &Generator{seed: seed}
}

func (g *Generator) rngFor(assetID string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(assetID))
	return rand.New(rand.NewSource(g.seed + int64(h.Sum64())))
}

func norm(rng *rand.Rand, mean, sd float64) float64 {
	return mean + rng.NormFloat64()*sd
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clampNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// buildingOf extracts BLD_XXX from asset IDs like PUMP_BLD_001_01.
func buildingOf(assetID string) string {
	parts := strings.Split(assetID, "_")
	if len(parts) >= 3 {
		return parts[1] + "_" + parts[2]
	}
	return assetID
}

func pumpSample(rng *rand.Rand, sc Scenario, day, hour int) (vib, temp, current float64, status string) {
	switch sc {
	case ScenarioGradualBearingFailure:
		switch {
		case day <= 5:
			return norm(rng, 3.5, 0.4), norm(rng, 50, 2), norm(rng, 9.5, 0.5), "running"
		case day == 6:
			return norm(rng, 4.8, 0.5), norm(rng, 54, 2), norm(rng, 10.0, 0.5), "running"
		case day == 7:
			return norm(rng, 5.9, 0.6), norm(rng, 58, 2.5), norm(rng, 10.5, 0.5), "running"
		case day == 8:
			return norm(rng, 7.2, 0.7), norm(rng, 63, 2), norm(rng, 11.0, 0.6), "warning"
		case day == 9:
			return norm(rng, 8.5, 0.8), norm(rng, 67, 2.5), norm(rng, 11.5, 0.6), "critical"
		case day == 10:
			return norm(rng, 9.5, 0.9), norm(rng, 72, 3), norm(rng, 12.0, 0.7), "critical"
		default: // failed, ambient temperature only
			return 0, norm(rng, 25, 1), 0, "failed"
		}
	case ScenarioEarlyWarningNormal:
		switch {
		case day <= 7:
			return norm(rng, 3.2, 0.3), norm(rng, 49, 1.5), norm(rng, 9.2, 0.4), "running"
		case day == 8: // vibration spike, loose bolt or debris
			return norm(rng, 7.5, 0.8), norm(rng, 65, 2), norm(rng, 10.8, 0.5), "warning"
		case day == 9: // maintenance performed, still elevated
			return norm(rng, 5.0, 0.5), norm(rng, 56, 2), norm(rng, 9.8, 0.4), "running"
		default:
			return norm(rng, 3.2, 0.3), norm(rng, 49, 1.5), norm(rng, 9.2, 0.4), "running"
		}
	case ScenarioSuddenSealFailure:
		switch {
		case day <= 10:
			return norm(rng, 3.8, 0.4), norm(rng, 51, 2), norm(rng, 9.6, 0.5), "running"
		case day == 11:
			return norm(rng, 5.5, 0.6), norm(rng, 57, 2), norm(rng, 10.2, 0.5), "running"
		case day == 12 && hour < 14:
			return norm(rng, 6.8, 0.7), norm(rng, 62, 2), norm(rng, 10.8, 0.6), "warning"
		default: // seal rupture
			return 0, norm(rng, 25, 1), 0, "failed"
		}
	default: // healthy, mild afternoon lift
		hourFactor := 1.0 + 0.05*math.Sin(float64(hour-12)*math.Pi/12)
		return norm(rng, 3.0*hourFactor, 0.3),
			norm(rng, 48*hourFactor, 1.5),
			norm(rng, 9.0*hourFactor, 0.4),
			"running"
	}
}

// GeneratePumpSeries produces 30-minute pump records following a scenario.
// Day numbering starts at 1 so scenario breakpoints read like a runbook.
func (g *Generator) GeneratePumpSeries(pumpID string, sc Scenario, start time.Time, days int) []PumpRecord {
	rng := g.rngFor(pumpID)
	buildingID := buildingOf(pumpID)
	tankID := "TANK_" + strings.TrimPrefix(pumpID, "PUMP_")

	records := make([]PumpRecord, 0, days*48)
	for i := 0; i < days*48; i++ {
		ts := start.Add(time.Duration(i) * 30 * time.Minute)
		day := int(ts.Sub(start).Hours()/24) + 1
		hour := ts.Hour()

		vib, temp, current, status := pumpSample(rng, sc, day, hour)

		var flowRate, pressure float64
		if status != "failed" {
			// Flow drops as vibration climbs, up to 30 percent.
			degradation := 1.0 - (vib/12.0)*0.3
			flowRate = norm(rng, 180*degradation, 15)
			pressure = norm(rng, 45*degradation, 3)
		}

		records = append(records, PumpRecord{
			PumpID:             pumpID,
			BuildingID:         buildingID,
			TankID:             tankID,
			Timestamp:          ts,
			Status:             status,
			CurrentAmps:        clampNonNeg(current),
			VibrationMMS:       clampNonNeg(vib),
			TemperatureCelsius: temp,
			FlowRateLPM:        clampNonNeg(flowRate),
			PressurePSI:        clampNonNeg(pressure),
		})
	}
	return records
}

// GenerateTankSeries produces hourly tank records with morning and evening
// consumption peaks.
func (g *Generator) GenerateTankSeries(tankID string, capacity int, start time.Time, days int) []TankRecord {
	rng := g.rngFor(tankID)
	buildingID := buildingOf(tankID)

	records := make([]TankRecord, 0, days*24)
	for i := 0; i < days*24; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		day := int(ts.Sub(start).Hours()/24) + 1
		hour := ts.Hour()

		var outletFlow float64
		switch {
		case hour >= 6 && hour <= 9:
			outletFlow = norm(rng, 180, 20)
		case hour >= 18 && hour <= 21:
			outletFlow = norm(rng, 160, 18)
		case hour <= 5:
			outletFlow = norm(rng, 40, 10)
		default:
			outletFlow = norm(rng, 100, 15)
		}
		inletFlow := norm(rng, 150, 15)

		var levelPct float64
		switch {
		case tankID == "TANK_BLD_001_01" && day == 9:
			// Upstream pump failure drains the tank.
			levelPct = uniform(rng, 20, 30)
		case hour == 7 || hour == 8 || hour == 19 || hour == 20:
			levelPct = uniform(rng, 65, 80)
		default:
			levelPct = uniform(rng, 75, 92)
		}

		records = append(records, TankRecord{
			TankID:             tankID,
			BuildingID:         buildingID,
			Timestamp:          ts,
			CapacityLiters:     capacity,
			CurrentLevelLiters: int(math.Round(float64(capacity) * levelPct / 100)),
			LevelPercentage:    levelPct,
			InletFlowRateLPM:   clampNonNeg(inletFlow),
			OutletFlowRateLPM:  clampNonNeg(outletFlow),
		})
	}
	return records
}

// GenerateConsumptionSeries produces 4-hourly unit consumption records.
func (g *Generator) GenerateConsumptionSeries(unitID string, pattern UnitPattern, start time.Time, days int) []ConsumptionRecord {
	rng := g.rngFor(unitID)
	buildingID := buildingOf(unitID)

	records := make([]ConsumptionRecord, 0, days*6)
	for i := 0; i < days*6; i++ {
		ts := start.Add(time.Duration(i) * 4 * time.Hour)
		day := int(ts.Sub(start).Hours()/24) + 1
		hour := ts.Hour()

		var base float64
		switch {
		case (hour >= 6 && hour <= 9) || (hour >= 18 && hour <= 21):
			base = 50
		case hour <= 5:
			base = 8
		default:
			base = 20
		}

		var consumption float64
		switch pattern {
		case PatternLeak:
			if day >= 7 && day <= 10 {
				consumption = norm(rng, base+70, 15)
			} else {
				consumption = norm(rng, base, base*0.2)
			}
		case PatternLowUsage:
			consumption = norm(rng, base*0.4, base*0.1)
		case PatternHighUsage:
			consumption = norm(rng, base*1.8, base*0.3)
		case PatternVariable:
			// Occasional guest spikes.
			if rng.Float64() < 0.3 {
				consumption = norm(rng, base*2.5, base*0.4)
			} else {
				consumption = norm(rng, base*0.5, base*0.15)
			}
		default:
			consumption = norm(rng, base, base*0.2)
		}
		consumption = clampNonNeg(consumption)

		records = append(records, ConsumptionRecord{
			UnitID:            unitID,
			BuildingID:        buildingID,
			TankID:            "TANK_" + buildingID + "_02",
			Timestamp:         ts,
			ConsumptionLiters: consumption,
			FlowRateLPM:       consumption / 4,
		})
	}
	return records
}

// GenerateReadings produces up to nRows sensor readings for one asset,
// ending at the current time. The asset kind is inferred from the ID
// prefix (PUMP_, TANK_, UNIT_).
func (g *Generator) GenerateReadings(siteID, assetID string, nRows int) []model.SensorReading {
	if nRows <= 0 {
		nRows = 100
	}
	now := time.Now().UTC()

	var readings []model.SensorReading
	switch {
	case strings.HasPrefix(assetID, "PUMP_"):
		// Five readings per record, one per sensor channel.
		recordCount := (nRows + 4) / 5
		days := (recordCount + 47) / 48
		if days < 1 {
			days = 1
		}
		start := now.Add(-time.Duration(recordCount) * 30 * time.Minute)
		series := g.GeneratePumpSeries(assetID, ScenarioFor(assetID), start, days)
		if len(series) > recordCount {
			series = series[:recordCount]
		}
		for _, rec := range series {
			readings = append(readings, PumpReadings(siteID, rec, now)...)
		}
	case strings.HasPrefix(assetID, "TANK_"):
		days := (nRows + 23) / 24
		start := now.Add(-time.Duration(nRows) * time.Hour)
		series := g.GenerateTankSeries(assetID, 5000, start, days)
		if len(series) > nRows {
			series = series[:nRows]
		}
		for _, rec := range series {
			readings = append(readings, TankReadings(siteID, rec, now)...)
		}
	default:
		days := (nRows + 5) / 6
		start := now.Add(-time.Duration(nRows) * 4 * time.Hour)
		series := g.GenerateConsumptionSeries(assetID, PatternNormalFamily, start, days)
		if len(series) > nRows {
			series = series[:nRows]
		}
		for _, rec := range series {
			readings = append(readings, ConsumptionReadings(siteID, rec, now)...)
		}
	}
	if len(readings) > nRows {
		readings = readings[:nRows]
	}
	return readings
}

// PumpReadings converts one pump record into its five sensor readings.
func PumpReadings(siteID string, rec PumpRecord, receivedAt time.Time) []model.SensorReading {
	channels := []struct {
		sensorType string
		value      float64
		unit       string
	}{
		{model.SensorVibration, rec.VibrationMMS, "mm/s"},
		{model.SensorTemperature, rec.TemperatureCelsius, "celsius"},
		{model.SensorCurrent, rec.CurrentAmps, "amps"},
		{model.SensorFlowRate, rec.FlowRateLPM, "lpm"},
		{model.SensorPressure, rec.PressurePSI, "psi"},
	}
	out := make([]model.SensorReading, 0, len(channels))
	for _, ch := range channels {
		out = append(out, model.SensorReading{
			ID:         uuid.NewString(),
			SiteID:     siteID,
			BuildingID: rec.BuildingID,
			AssetID:    rec.PumpID,
			AssetType:  model.AssetTypePump,
			SensorType: ch.sensorType,
			Value:      ch.value,
			Unit:       ch.unit,
			RecordedAt: rec.Timestamp,
			ReceivedAt: receivedAt,
		})
	}
	return out
}

// TankReadings converts one tank record into a level reading.
func TankReadings(siteID string, rec TankRecord, receivedAt time.Time) []model.SensorReading {
	return []model.SensorReading{{
		ID:         uuid.NewString(),
		SiteID:     siteID,
		BuildingID: rec.BuildingID,
		AssetID:    rec.TankID,
		AssetType:  model.AssetTypeTank,
		SensorType: model.SensorTankLevel,
		Value:      rec.LevelPercentage,
		Unit:       "percent",
		RecordedAt: rec.Timestamp,
		ReceivedAt: receivedAt,
	}}
}

// ConsumptionReadings converts one consumption record into a consumption reading.
func ConsumptionReadings(siteID string, rec ConsumptionRecord, receivedAt time.Time) []model.SensorReading {
	return []model.SensorReading{{
		ID:         uuid.NewString(),
		SiteID:     siteID,
		BuildingID: rec.BuildingID,
		AssetID:    rec.UnitID,
		AssetType:  model.AssetTypeUnit,
		SensorType: model.SensorConsumption,
		Value:      rec.ConsumptionLiters,
		Unit:       "liters",
		RecordedAt: rec.Timestamp,
		ReceivedAt: receivedAt,
	}}
}
