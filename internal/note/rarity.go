package note

// 稀有度名称，由平均评分派生，从不持久化。
const (
	RarityCommon    = "COMMON"
	RarityRare      = "RARE"
	RarityEpic      = "EPIC"
	RarityLegendary = "LEGENDARY"
)

// RarityFor 根据平均评分计算笔记的稀有度。
// 没有任何评价的笔记平均分为0，落在COMMON档。
func RarityFor(averageRating float64) string {
	switch {
	case averageRating >= 4.5:
		return RarityLegendary
	case averageRating >= 4.0:
		return RarityEpic
	case averageRating >= 3.0:
		return RarityRare
	default:
		return RarityCommon
	}
}
