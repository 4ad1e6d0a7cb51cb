package validation

import "datapack/internal/standard"

func intPtr(n int) *int { return &n }

// defaultBands grade results when a rule document declares no bands.
var defaultBands = []standard.ComplianceBand{
	{Level: string(LevelStrict), MaxErrors: intPtr(0), MaxWarnings: intPtr(0)},
	{Level: string(LevelStandard), MaxErrors: intPtr(0), MaxWarnings: intPtr(5)},
	{Level: string(LevelBasic), MaxErrors: intPtr(10)},
}

// DetermineLevel grades r with the first compliance band of spec that admits
// its error and warning counts, or INVALID when none does. The level never
// makes a result with errors valid.
func DetermineLevel(r *Result, spec *standard.Spec) Level {
	bands := spec.ComplianceLevels
	if len(bands) == 0 {
		bands = defaultBands
	}
	for _, band := range bands {
		if band.Admits(len(r.Errors), len(r.Warnings)) {
			return Level(band.Level)
		}
	}
	return LevelInvalid
}
