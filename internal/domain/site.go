package domain

import (
	"fmt"
	"math"
	"time"
)

// SiteAttributes holds the six raw attributes describing a candidate site.
type SiteAttributes struct {
	RenewableProximity float64 `json:"renewable_proximity" db:"renewable_proximity"`
	DemandProximity    float64 `json:"demand_proximity" db:"demand_proximity"`
	TransportScore     float64 `json:"transport_score" db:"transport_score"`
	SubsidyScore       float64 `json:"subsidy_score" db:"subsidy_score"`
	LandCost           float64 `json:"land_cost" db:"land_cost"`
	EnergyCost         float64 `json:"energy_cost" db:"energy_cost"`
}

// TrainingRow is one labeled dataset row: the raw attributes, the two
// regression targets, and the engineered composite features.
type TrainingRow struct {
	SiteAttributes
	EfficiencyScore float64 `json:"efficiency_score" db:"efficiency_score"`
	CostPerKg       float64 `json:"cost_per_kg" db:"cost_per_kg"`

	// Derived features, filled in by EngineerFeatures. Consumed by neither
	// model, but carried in the processed dataset.
	InfrastructureScore float64 `json:"infrastructure_score" db:"-"`
	CostFactor          float64 `json:"cost_factor" db:"-"`
}

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Prediction is the immutable per-request result record. Efficiency is
// rounded to three decimals, cost to two; neither is persisted.
type Prediction struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	Efficiency float64   `json:"efficiency"`
	Cost       float64   `json:"cost"`
	Zone       Zone      `json:"zone"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewPrediction assembles a response record from clamped model outputs,
// stamped with the current UTC time from the package clock.
func NewPrediction(lat, lng, efficiency, cost float64, zone Zone) Prediction {
	return Prediction{
		Lat:        lat,
		Lng:        lng,
		Efficiency: roundTo(efficiency, 3),
		Cost:       roundTo(cost, 2),
		Zone:       zone,
		Timestamp:  Now(),
	}
}

// InfrastructureScore combines the three proximity ratios into a composite score.
func InfrastructureScore(a SiteAttributes) float64 {
	return 0.4*a.RenewableProximity + 0.3*a.DemandProximity + 0.3*a.TransportScore
}

// CostFactor combines the cost attributes and subsidy shortfall into a
// composite cost-burden score. Land cost is expressed in millions and energy
// cost in cents to bring the terms onto comparable scales.
func CostFactor(a SiteAttributes) float64 {
	return 0.4*(a.LandCost/1_000_000) + 0.4*(a.EnergyCost*100) + 0.2*(1-a.SubsidyScore)
}

// EngineerFeatures fills the derived feature columns on every row in place.
func EngineerFeatures(rows []TrainingRow) {
	for i := range rows {
		rows[i].InfrastructureScore = InfrastructureScore(rows[i].SiteAttributes)
		rows[i].CostFactor = CostFactor(rows[i].SiteAttributes)
	}
}

// ValidateCoordinate rejects coordinates outside the valid WGS-84 ranges.
// Callers must validate before the coordinate reaches the prediction core.
func ValidateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90,90]", ErrDataValidation, lat)
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180,180]", ErrDataValidation, lng)
	}
	return nil
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
