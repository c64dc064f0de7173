package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
)

// Synthesize derives the six site attributes for a coordinate pair. It stands
// in for a real spatial lookup: each attribute is a coordinate-dependent base
// value plus seeded Gaussian noise. The seed is a function of the coordinate
// pair, so identical inputs always produce identical attributes.
//
// Ratio attributes are clamped to [0,1]. Land and energy cost are left
// unclamped; their base terms keep them positive.
func Synthesize(lat, lng float64) SiteAttributes {
	rng := rand.New(rand.NewSource(coordSeed(lat, lng)))

	// Noise is drawn in a fixed order so the attribute values do not depend
	// on struct-literal evaluation order.
	renewableNoise := rng.NormFloat64() * 0.1
	demandNoise := rng.NormFloat64() * 0.1
	transportNoise := rng.NormFloat64() * 0.15
	energyNoise := rng.NormFloat64() * 0.02
	subsidyNoise := rng.NormFloat64() * 0.1

	return SiteAttributes{
		RenewableProximity: clamp01(0.5 + (lat-35)/100 + renewableNoise),
		DemandProximity:    clamp01(0.6 + (lng+120)/100 + demandNoise),
		TransportScore:     clamp01(0.7 + transportNoise),
		SubsidyScore:       clamp01(0.5 + (40-math.Abs(lat))/100 + subsidyNoise),
		LandCost:           1_000_000 + math.Abs(lat)*50_000 + math.Abs(lng)*30_000,
		EnergyCost:         0.1 + math.Abs(lat-40)*0.002 + energyNoise,
	}
}

// coordSeed hashes the coordinate pair into a stable RNG seed.
func coordSeed(lat, lng float64) int64 {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v_%v", lat, lng)))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
