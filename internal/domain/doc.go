// Package domain models candidate sites for green hydrogen production.
//
// # Site Attributes
//
// A candidate site is described by six numeric attributes:
//
//	renewable_proximity  ratio [0,1]  closeness to renewable generation
//	demand_proximity     ratio [0,1]  closeness to hydrogen demand centers
//	transport_score      ratio [0,1]  quality of transport links
//	subsidy_score        ratio [0,1]  strength of local subsidy programs
//	land_cost            > 0          acquisition cost, USD
//	energy_cost          > 0          electricity cost, USD/kWh
//
// Labeled training rows additionally carry two targets: efficiency_score
// (ratio [0,1]) and cost_per_kg (USD per kilogram of hydrogen, > 0).
//
// # Attribute Synthesis
//
// No spatial data source is wired yet, so serving-time attributes come from
// [Synthesize]: a deterministic placeholder keyed on the coordinate pair.
// The RNG seed is derived from a SHA-256 hash of the coordinates, so repeated
// requests for the same location always produce identical attributes while
// nearby locations still diverge. Swapping in a real geodata lookup only
// requires replacing this one function; the transform, model, and zone
// contracts are unaffected.
//
// # Derived Features
//
// Preprocessing engineers two composite features. Neither model consumes
// them, but they are part of the processed-dataset contract:
//
//	infrastructure_score = 0.4*renewable_proximity + 0.3*demand_proximity + 0.3*transport_score
//	cost_factor          = 0.4*(land_cost/1e6) + 0.4*(energy_cost*100) + 0.2*(1-subsidy_score)
//
// # Zone Classification
//
// Model outputs map to a three-level suitability zone with strict
// inequalities on both thresholds:
//
//	green:  efficiency > 0.8 and cost < 2.5
//	yellow: efficiency > 0.6
//	red:    otherwise
//
// A site at exactly efficiency 0.8 or cost 2.5 is therefore not green.
package domain
