package domain

// Zone is the ordinal suitability category derived from efficiency and cost.
type Zone string

const (
	ZoneGreen  Zone = "green"
	ZoneYellow Zone = "yellow"
	ZoneRed    Zone = "red"
)

// ClassifyZone maps model outputs to a suitability zone. It is total over all
// real inputs, including values outside the clamp ranges. Both thresholds are
// strict: efficiency exactly 0.8 or cost exactly 2.5 is not green.
func ClassifyZone(efficiency, cost float64) Zone {
	if efficiency > 0.8 && cost < 2.5 {
		return ZoneGreen
	}
	if efficiency > 0.6 {
		return ZoneYellow
	}
	return ZoneRed
}
