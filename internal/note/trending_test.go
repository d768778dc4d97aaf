package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendingScoreWeighsDownloadsHigher(t *testing.T) {
	age := time.Hour
	byViews := TrendingScore(30, 0, age)
	byDownloads := TrendingScore(0, 30, age)
	assert.Greater(t, byDownloads, byViews)
}

func TestTrendingScoreMonotonicInCounts(t *testing.T) {
	age := 24 * time.Hour
	base := TrendingScore(10, 5, age)
	assert.Greater(t, TrendingScore(11, 5, age), base)
	assert.Greater(t, TrendingScore(10, 6, age), base)
}

func TestTrendingScoreDecaysWithAge(t *testing.T) {
	fresh := TrendingScore(100, 10, 0)
	halfLife := TrendingScore(100, 10, 14*24*time.Hour)
	old := TrendingScore(100, 10, 60*24*time.Hour)

	assert.Greater(t, fresh, halfLife)
	assert.Greater(t, halfLife, old)
	// 一个半衰期后分数正好减半
	assert.InDelta(t, fresh/2, halfLife, 1e-9)
}

func TestTrendingScoreDeterministic(t *testing.T) {
	age := 36 * time.Hour
	assert.Equal(t, TrendingScore(42, 7, age), TrendingScore(42, 7, age))
	// 负年龄按零处理
	assert.Equal(t, TrendingScore(42, 7, 0), TrendingScore(42, 7, -time.Hour))
}

func TestTrendingFallbackRanksBySQLite(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")
	now := time.Now()
	// 下载多的新笔记应当排在浏览少的旧笔记前面
	createTestNote(t, Note{ID: "hot", Title: "Hot", Subject: "Math", AuthorID: "u1", Views: 50, Downloads: 40, CreatedAt: now.Add(-time.Hour)})
	createTestNote(t, Note{ID: "warm", Title: "Warm", Subject: "Math", AuthorID: "u1", Views: 60, Downloads: 2, CreatedAt: now.Add(-time.Hour)})
	createTestNote(t, Note{ID: "cold", Title: "Cold", Subject: "Math", AuthorID: "u1", Views: 3, Downloads: 0, CreatedAt: now.Add(-90 * 24 * time.Hour)})

	dtos, err := Trending(2)
	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "hot", dtos[0].ID)
	assert.Equal(t, "warm", dtos[1].ID)
}
