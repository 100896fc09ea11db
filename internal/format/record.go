// Package format renders resolved Query records into the output shapes
// named in §6 "Output records": CSV, a single JSON array, and NDJSON. Each
// formatter here satisfies pipeline.Formatter's Write(*addr.Query) error by
// duck typing — this package never imports internal/pipeline.
package format

import "github.com/jageocoder/abr-geocoder/internal/addr"

// Record is the flat, serialization-ready projection of a Query. Missing
// string fields render as the sentinel "", missing coordinates as a nil
// pointer (numeric null in JSON, an empty cell in CSV) per §6.
type Record struct {
	Input      string   `bson:"input" json:"input"`
	MatchLevel string   `bson:"match_level" json:"match_level"`
	Lat        *float64 `bson:"latitude" json:"latitude"`
	Lon        *float64 `bson:"longitude" json:"longitude"`
	Pref       string   `bson:"prefecture" json:"prefecture"`
	County     string   `bson:"county" json:"county"`
	City       string   `bson:"city" json:"city"`
	Ward       string   `bson:"ward" json:"ward"`
	LGCode     string   `bson:"lg_code" json:"lg_code"`
	OazaCho    string   `bson:"oaza_cho" json:"oaza_cho"`
	Chome      string   `bson:"chome" json:"chome"`
	Koaza      string   `bson:"koaza" json:"koaza"`
	Town       string   `bson:"town" json:"town"`
	TownID     string   `bson:"town_id" json:"town_id"`
	Block      string   `bson:"block" json:"block"`
	BlockID    string   `bson:"block_id" json:"block_id"`
	Other      string   `bson:"other" json:"other"`
}

// NewRecord projects a Query into its output Record. Town is the
// concatenation of oaza_cho/chome/koaza, the same three fields the town
// stage resolves independently (internal/pipeline/town.go); TownID is the
// machiaza_id; Other is whatever text the pipeline never consumed.
func NewRecord(q *addr.Query) Record {
	return Record{
		Input:      q.Input,
		MatchLevel: q.MatchLevel.String(),
		Lat:        q.RepLat,
		Lon:        q.RepLon,
		Pref:       q.Pref,
		County:     q.County,
		City:       q.City,
		Ward:       q.Ward,
		LGCode:     q.LGCode,
		OazaCho:    q.OazaCho,
		Chome:      q.Chome,
		Koaza:      q.Koaza,
		Town:       q.OazaCho + q.Chome + q.Koaza,
		TownID:     q.MachiazaID,
		Block:      q.Block,
		BlockID:    q.BlockID,
		Other:      q.TempAddress.String(),
	}
}
