package progression

// Redis键名常量
const (
	// LeaderboardKey 是用户积分排行榜 (Sorted Set)。
	// Member: 用户ID, Score: 当前积分总数。
	LeaderboardKey = "progression:leaderboard"

	// AwardedReasonsKey 是已生效授予记录的缓存 (Set)。
	// Member: "<userID>|<reasonKey>"，用于在快路径上跳过重复授予。
	AwardedReasonsKey = "progression:awarded_reasons"
)

// reasonMember 拼装授予缓存的成员格式。
func reasonMember(userID, reasonKey string) string {
	return userID + "|" + reasonKey
}
