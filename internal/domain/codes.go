package domain

// ClassCode is a hydrometeor classification code.
type ClassCode int

const (
	CodeDrizzle     ClassCode = 1
	CodeRain        ClassCode = 2
	CodeIceCrystals ClassCode = 3
	CodeAggregates  ClassCode = 4
	CodeWetSnow     ClassCode = 5
	CodeVerticalIce ClassCode = 6
	CodeLDGraupel   ClassCode = 7
	CodeHDGraupel   ClassCode = 8
	// CodeHail is the upstream "rain/hail" slot. The refinement rewrites it.
	CodeHail      ClassCode = 9
	CodeBigDrops  ClassCode = 10
	CodeSmallHail ClassCode = 11
	CodeLargeHail ClassCode = 12
	CodeGiantHail ClassCode = 13
)

// Legend enumerates every code of the refined classification grid.
const Legend = "1: Drizzle; 2: Rain; 3: Ice Crystals; 4: Aggregates; " +
	"5: Wet Snow; 6: Vertical Ice; 7: LD Graupel; 8: HD Graupel; 9: NOT USED; 10: Big Drops; " +
	"11: Small Hail (< 25 mm); 12: Large Hail (25 - 50 mm); 13: Giant Hail (> 50 mm)"

// Output grid metadata.
const (
	LongName     = "Hydrometeor classification + HSDA"
	StandardName = "Hydrometeor_ID_HSDA"
)

// DefaultHailCodes are the upstream codes treated as hail candidates.
var DefaultHailCodes = []int{int(CodeHail)}
