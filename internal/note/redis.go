package note

// Redis键名常量
const (
	// ViewsDeltaKey 是浏览计数的增量暂存 (Hash)。
	// Field: 笔记ID, Value: 自上次刷写以来新增的浏览次数。
	ViewsDeltaKey = "note:views_delta"

	// DownloadsDeltaKey 是下载计数的增量暂存 (Hash)。
	DownloadsDeltaKey = "note:downloads_delta"

	// TrendingKey 是热门排行 (Sorted Set)。
	// Member: 笔记ID, Score: 热度分数。
	TrendingKey = "note:trending"
)
