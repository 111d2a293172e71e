package risk

// Level is the presentation tier of a risk index.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Upper bounds (inclusive) of the low and medium tiers.
const (
	lowCeiling    = 30
	mediumCeiling = 60
)

// LevelFor classifies an index: <=30 low, <=60 medium, otherwise high.
func LevelFor(index int) Level {
	switch {
	case index <= lowCeiling:
		return LevelLow
	case index <= mediumCeiling:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// ParseLevel maps a query value to a Level.
func ParseLevel(s string) (Level, bool) {
	switch l := Level(s); l {
	case LevelLow, LevelMedium, LevelHigh:
		return l, true
	}
	return "", false
}

// Label returns the Portuguese display label used on dashboards.
func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "Baixo Risco"
	case LevelMedium:
		return "Médio Risco"
	case LevelHigh:
		return "Alto Risco"
	default:
		return ""
	}
}

// Color returns the badge color for the level.
func (l Level) Color() string {
	switch l {
	case LevelLow:
		return "green"
	case LevelMedium:
		return "yellow"
	case LevelHigh:
		return "red"
	default:
		return ""
	}
}
