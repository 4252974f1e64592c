package zone

import (
	"ict-signal-engine/internal/bar"
	"ict-signal-engine/internal/logging"
)

// Facade is the single entry point for detecting every ICT component over
// a bar range. Each family's detector is an injected function pointer —
// missing detectors substitute a no-op that returns an empty list, and a
// detector that errors is downgraded to an empty list plus a warning
// rather than aborting the whole bundle. This mirrors the teacher's
// pattern/detector.go uniform-interface dispatch, generalized from a
// single detector type to a table of them.
type Facade struct {
	detectors map[Family]DetectorFunc
	fib       FibonacciFunc
	sr        SRFunc
	limits    Limits
	log       *logging.Logger
}

// NewFacade builds a facade from a table of detector functions. Any family
// absent from `detectors` is treated as a no-op detector.
func NewFacade(detectors map[Family]DetectorFunc, fib FibonacciFunc, sr SRFunc, limits Limits) *Facade {
	return &Facade{
		detectors: detectors,
		fib:       fib,
		sr:        sr,
		limits:    limits,
		log:       logging.WithComponent("zone_facade"),
	}
}

// DetectAll runs every configured detector over the given bars and
// aggregates the results into one Bundle. No single detector failure
// aborts the call.
func (f *Facade) DetectAll(bars bar.Series, timeframe string) *Bundle {
	bundle := &Bundle{}
	clamped := f.limits.clamp(bars)

	assign := func(family Family, dst *[]Zone) {
		zones, warn := f.run(family, clamped, timeframe)
		*dst = f.limits.cap(zones)
		if warn != "" {
			bundle.Warnings = append(bundle.Warnings, warn)
		}
	}

	assign(FamilyOrderBlock, &bundle.OrderBlocks)
	assign(FamilyFVG, &bundle.FVGs)
	assign(FamilyWhaleBlock, &bundle.WhaleBlocks)
	assign(FamilyLiquidityZone, &bundle.LiquidityZones)
	assign(FamilyLiquiditySweep, &bundle.LiquiditySweeps)
	assign(FamilyInternalLiquidity, &bundle.InternalLiquidity)
	assign(FamilyBreakerBlock, &bundle.BreakerBlocks)
	assign(FamilyMitigationBlock, &bundle.MitigationBlocks)
	assign(FamilySIBISSIB, &bundle.SIBISSIBZones)

	if f.fib != nil {
		bundle.FibonacciData = f.safeFib(clamped)
	}
	if f.sr != nil {
		bundle.LuxAlgoSR = f.safeSR(clamped)
	}

	return bundle
}

func (f *Facade) run(family Family, bars bar.Series, timeframe string) ([]Zone, string) {
	det, ok := f.detectors[family]
	if !ok || det == nil {
		return nil, ""
	}

	zones, err := f.callSafely(det, bars, timeframe)
	if err != nil {
		f.log.Warn("detector failed, substituting empty list", "family", string(family), "error", err)
		return nil, "detector " + string(family) + " failed: " + err.Error()
	}

	valid := zones[:0]
	for _, z := range zones {
		if z.Valid() {
			valid = append(valid, z)
		}
	}
	return valid, ""
}

// callSafely recovers a panicking detector the same way the teacher
// downgrades any other detector error — to an empty result rather than a
// crashed pipeline.
func (f *Facade) callSafely(det DetectorFunc, bars bar.Series, timeframe string) (zones []Zone, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{r}
		}
	}()
	return det(bars, timeframe)
}

func (f *Facade) safeFib(bars bar.Series) (data *FibonacciData) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("fibonacci overlay panicked, continuing with empty overlay", "recover", r)
			data = nil
		}
	}()
	return f.fib(bars)
}

func (f *Facade) safeSR(bars bar.Series) (levels []SRLevel) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("luxalgo overlay panicked, continuing with empty overlay", "recover", r)
			levels = nil
		}
	}()
	return f.sr(bars)
}

type panicError struct{ v interface{} }

func (p panicError) Error() string {
	return "panic in detector: " + toString(p.v)
}

func toString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}
