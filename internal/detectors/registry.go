package detectors

import (
	"ict-signal-engine/internal/zone"
)

// DefaultDetectors builds the zone.Facade detector table from this
// package's reference implementations, using ICT-conventional defaults
// for every family. Callers that have a real external detector service
// should build their own table instead — the facade only depends on the
// zone.DetectorFunc signature.
func DefaultDetectors() map[zone.Family]zone.DetectorFunc {
	ob := NewOrderBlockDetector()
	fvg := NewFVGDetector(0.1)
	whale := NewWhaleBlockDetector()
	liq := NewLiquidityZoneDetector()
	sweep := NewLiquiditySweepDetector()
	internal := NewInternalLiquidityDetector()
	breaker := NewBreakerBlockDetector()
	mitigation := NewMitigationBlockDetector()
	sibissib := NewSIBISSIBDetector()

	return map[zone.Family]zone.DetectorFunc{
		zone.FamilyOrderBlock:        ob.Detect,
		zone.FamilyFVG:               fvg.Detect,
		zone.FamilyWhaleBlock:        whale.Detect,
		zone.FamilyLiquidityZone:     liq.Detect,
		zone.FamilyLiquiditySweep:    sweep.Detect,
		zone.FamilyInternalLiquidity: internal.Detect,
		zone.FamilyBreakerBlock:      breaker.Detect,
		zone.FamilyMitigationBlock:   mitigation.Detect,
		zone.FamilySIBISSIB:          sibissib.Detect,
	}
}

// DefaultFibonacci returns the zone.FibonacciFunc backed by this package's
// reference Fibonacci analyzer.
func DefaultFibonacci() zone.FibonacciFunc {
	return NewFibonacciAnalyzer().Compute
}

// DefaultLuxAlgoSR returns the zone.SRFunc backed by this package's
// reference clustering analyzer.
func DefaultLuxAlgoSR() zone.SRFunc {
	return NewLuxAlgoSRAnalyzer().Compute
}
