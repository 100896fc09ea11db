package pipeline

// allPrefectures is the closed set of 47 Japanese prefecture names, used to
// build the prefecture-detection regex set (§4.3 step 2) and to recognize
// same-named-prefecture segments later in an address. This is plain domain
// data, not behavior grounded on any example repo.
var allPrefectures = [...]string{
	"北海道",
	"青森県", "岩手県", "宮城県", "秋田県", "山形県", "福島県",
	"茨城県", "栃木県", "群馬県", "埼玉県", "千葉県", "東京都", "神奈川県",
	"新潟県", "富山県", "石川県", "福井県", "山梨県", "長野県",
	"岐阜県", "静岡県", "愛知県", "三重県",
	"滋賀県", "京都府", "大阪府", "兵庫県", "奈良県", "和歌山県",
	"鳥取県", "島根県", "岡山県", "広島県", "山口県",
	"徳島県", "香川県", "愛媛県", "高知県",
	"福岡県", "佐賀県", "長崎県", "熊本県", "大分県", "宮崎県", "鹿児島県",
	"沖縄県",
}

// prefectureStem strips the trailing administrative suffix (都/道/府/県)
// from a full prefecture name, e.g. "東京都" -> "東京".
func prefectureStem(pref string) string {
	r := []rune(pref)
	return string(r[:len(r)-1])
}
