package addr

// Dictionary row types are the trie's value type V (§3) and the reference
// store's scan targets (§6). Each carries the resolved key set it
// contributes to a Query and, where present, representative coordinates.

// PrefectureInfo is a row of the prefecture table.
type PrefectureInfo struct {
	PrefKey string `db:"pref_key"`
	LGCode  string `db:"lg_code"`
	Pref    string `db:"pref"`
}

// CityPattern is a row of the city table, keyed by the regex/trie key used
// to recognize it (§4.3 step 3).
type CityPattern struct {
	PrefKey string `db:"pref_key"`
	CityKey string `db:"city_key"`
	LGCode  string `db:"lg_code"`
	Pref    string `db:"pref"`
	County  string `db:"county"`
	City    string `db:"city"`
	Ward    string `db:"ward"`
	Key     string `db:"key"`
}

// TownMatchingInfo is a row of the town table (§6), carrying the full
// ōaza/chōme/koaza breakdown and, when available, representative
// coordinates attached at MACHIAZA_DETAIL.
type TownMatchingInfo struct {
	PrefKey      string   `db:"pref_key"`
	CityKey      string   `db:"city_key"`
	TownKey      string   `db:"town_key"`
	RsdtAddrFlag bool     `db:"rsdt_addr_flg"`
	RepLat       *float64 `db:"rep_lat"`
	RepLon       *float64 `db:"rep_lon"`
	Koaza        string   `db:"koaza"`
	Pref         string   `db:"pref"`
	County       string   `db:"county"`
	City         string   `db:"city"`
	Ward         string   `db:"ward"`
	LGCode       string   `db:"lg_code"`
	OazaCho      string   `db:"oaza_cho"`
	MachiazaID   string   `db:"machiaza_id"`
	Chome        string   `db:"chome"`
	Key          string   `db:"key"`
}

// RsdtBlkInfo is a row of the residence-block table (§4.3 step 7).
type RsdtBlkInfo struct {
	RsdtBlkKey string   `db:"rsdtblk_key"`
	TownKey    string   `db:"town_key"`
	Block      string   `db:"block"`
	BlockID    string   `db:"block_id"`
	RepLat     *float64 `db:"rep_lat"`
	RepLon     *float64 `db:"rep_lon"`
	Key        string   `db:"key"`
}

// RsdtDspInfo is a row of the residence-display table (§4.3 step 7).
type RsdtDspInfo struct {
	RsdtDspKey string   `db:"rsdtdsp_key"`
	TownKey    string   `db:"town_key"`
	RsdtNum    string   `db:"rsdt_num"`
	RsdtID     string   `db:"rsdt_id"`
	RsdtNum2   string   `db:"rsdt_num2"`
	Rsdt2ID    string   `db:"rsdt2_id"`
	RepLat     *float64 `db:"rep_lat"`
	RepLon     *float64 `db:"rep_lon"`
	Key        string   `db:"key"`
}

// ParcelInfo is a row of the parcel table (§4.3 step 7).
type ParcelInfo struct {
	PrcID   string   `db:"prc_id"`
	TownKey string   `db:"town_key"`
	PrcNum1 string   `db:"prc_num1"`
	PrcNum2 string   `db:"prc_num2"`
	PrcNum3 string   `db:"prc_num3"`
	RepLat  *float64 `db:"rep_lat"`
	RepLon  *float64 `db:"rep_lon"`
	Key     string   `db:"key"`
}
