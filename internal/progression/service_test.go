package progression

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/internal/user"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为每个测试准备独立的内存数据库，并把Redis标记为不可用。
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&user.User{}, &PointAward{}))
	database.DB = db
	database.UpdateStatus(false, "")
}

func createTestUser(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, database.DB.Create(&user.User{
		ID:           id,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
	}).Error)
}

func TestAwardAccumulates(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	points, err := Award("u1", "upload:n1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, points)

	points, err = Award("u1", "upload:n2", 10)
	require.NoError(t, err)
	assert.Equal(t, 20, points)
}

func TestAwardIsExactlyOnce(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	_, err := Award("u1", "upload:n1", 10)
	require.NoError(t, err)

	// 同一事由的重复授予是空操作，积分保持不变
	points, err := Award("u1", "upload:n1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, points)

	var u user.User
	require.NoError(t, database.DB.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, 10, u.Points)

	var count int64
	require.NoError(t, database.DB.Model(&PointAward{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAwardConcurrentRetries(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 并发重试同一授予，唯一索引保证只有一次生效
			for attempt := 0; attempt < 3; attempt++ {
				if _, err := Award("u1", "upload:n1", 10); err == nil {
					return
				}
				time.Sleep(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	var u user.User
	require.NoError(t, database.DB.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, 10, u.Points)
}

func TestAwardConcurrentDistinctReasons(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	const workers = 8
	results := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			points, err := Award("u1", fmt.Sprintf("upload:n%d", n), 10)
			assert.NoError(t, err)
			results <- points
		}(i)
	}
	wg.Wait()
	close(results)

	// 每次返回的总数来自更新后的行，最后提交的那次必须看到全部积分
	maxSeen := 0
	for points := range results {
		if points > maxSeen {
			maxSeen = points
		}
	}
	assert.Equal(t, workers*10, maxSeen)

	var u user.User
	require.NoError(t, database.DB.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, workers*10, u.Points)
}

func TestAwardInTxRollsBackWithCaller(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	sentinel := errors.New("caller failed")
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		points, duplicated, err := AwardInTx(tx, "u1", "upload:n1", 10)
		require.NoError(t, err)
		require.False(t, duplicated)
		require.Equal(t, 10, points)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	// 外层事务失败时授予随之回滚
	var u user.User
	require.NoError(t, database.DB.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, 0, u.Points)
	var count int64
	require.NoError(t, database.DB.Model(&PointAward{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAwardRejectsNegativeAmount(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "u1")

	_, err := Award("u1", "penalty", -5)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidArgument, kind)
}

func TestAwardUnknownUser(t *testing.T) {
	setupTestDB(t)

	_, err := Award("missing", "upload:n1", 10)
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}

func TestTopUsersOrderingAndTieBreak(t *testing.T) {
	setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	seed := []user.User{
		{ID: "a", Name: "A", Email: "a@example.com", PasswordHash: "x", Points: 30, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", Name: "B", Email: "b@example.com", PasswordHash: "x", Points: 50, CreatedAt: base},
		{ID: "c", Name: "C", Email: "c@example.com", PasswordHash: "x", Points: 30, CreatedAt: base.Add(time.Minute)},
		{ID: "d", Name: "D", Email: "d@example.com", PasswordHash: "x", Points: 10, CreatedAt: base},
	}
	for i := range seed {
		require.NoError(t, database.DB.Create(&seed[i]).Error)
	}

	profiles, err := TopUsers(3)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	// 积分降序；同分时先注册的在前
	assert.Equal(t, "b", profiles[0].ID)
	assert.Equal(t, "c", profiles[1].ID)
	assert.Equal(t, "a", profiles[2].ID)

	// 排行榜不泄露邮箱
	assert.Empty(t, profiles[0].Email)
}

func TestTopUsersIncludesZeroPointUsers(t *testing.T) {
	setupTestDB(t)
	createTestUser(t, "veteran")
	createTestUser(t, "newcomer")

	_, err := Award("veteran", "upload:n1", 10)
	require.NoError(t, err)

	// 名额未满时尚无积分的用户也要上榜
	profiles, err := TopUsers(10)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "veteran", profiles[0].ID)
	assert.Equal(t, "newcomer", profiles[1].ID)
	assert.Equal(t, 0, profiles[1].Points)
}
