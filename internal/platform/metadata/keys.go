package metadata

// --- SQLite Keys ---
// 用于 metadata 表 key 列的常量。
const (
	// LastCounterFlushAtKey 记录计数器最近一次成功落盘的时间(RFC3339)。
	LastCounterFlushAtKey = "last_counter_flush_at"
)
