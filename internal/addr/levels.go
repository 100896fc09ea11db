package addr

// MatchLevel is an ordinal describing how specifically an address has been
// resolved. It only ever advances as a Query moves through the pipeline.
type MatchLevel int

const (
	LevelUnknown MatchLevel = iota
	LevelPrefecture
	LevelCity
	LevelMachiaza
	LevelMachiazaDetail
	LevelResidentialBlock
	LevelResidentialDetail
	LevelParcel
)

var levelNames = [...]string{
	"UNKNOWN",
	"PREFECTURE",
	"CITY",
	"MACHIAZA",
	"MACHIAZA_DETAIL",
	"RESIDENTIAL_BLOCK",
	"RESIDENTIAL_DETAIL",
	"PARCEL",
}

func (l MatchLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Max returns the greater of two levels, used by stages that merge candidate
// results and must keep the highest match level seen (step 3-final, §4.3).
func Max(a, b MatchLevel) MatchLevel {
	if a > b {
		return a
	}
	return b
}
