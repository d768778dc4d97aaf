package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"github.com/studyloot/studyloot-backend/pkg/token"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为每个测试准备独立的内存数据库，并把Redis标记为不可用，
// 强制所有读写走SQLite路径。
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
	require.NoError(t, db.AutoMigrate(&User{}))
	database.DB = db
	database.UpdateStatus(false, "")
	token.Configure("test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)

	sessionToken, profile, err := Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionToken)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, 0, profile.Points)
	assert.Equal(t, LevelNoob, profile.Level)

	// 令牌必须能解析回注册用户的ID
	parsedID, err := token.Verify(sessionToken)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, parsedID)

	// 正确密码可以登录
	_, loggedIn, err := Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, loggedIn.ID)

	// 错误密码与不存在的账号返回同一类错误
	_, _, err = Login("alice@example.com", "wrong")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidArgument, kind)

	_, _, err = Login("nobody@example.com", "secret123")
	kind, ok = apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidArgument, kind)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	setupTestDB(t)

	_, _, err := Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	// 大小写不同的同一邮箱同样冲突
	_, _, err = Register("Bob", "Alice@Example.com", "secret456")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, kind)
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)

	cases := []struct {
		name, email, password string
	}{
		{"", "a@example.com", "secret123"},
		{"Alice", "", "secret123"},
		{"Alice", "a@example.com", ""},
		{"Alice", "a@example.com", "short"},
	}
	for _, tc := range cases {
		_, _, err := Register(tc.name, tc.email, tc.password)
		kind, ok := apperr.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindInvalidArgument, kind)
	}
}

func TestUpdateProfile(t *testing.T) {
	setupTestDB(t)

	_, profile, err := Register("Alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	updated, err := UpdateProfile(profile.ID, "Alicia", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "hello", updated.Bio)

	_, err = UpdateProfile(profile.ID, "", "bio")
	kind, ok := apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindInvalidArgument, kind)

	_, err = UpdateProfile("missing-id", "Name", "")
	kind, ok = apperr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindNotFound, kind)
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points int
		level  string
	}{
		{0, LevelNoob},
		{49, LevelNoob},
		{50, LevelRookie},
		{199, LevelRookie},
		{200, LevelPro},
		{499, LevelPro},
		{500, LevelMaster},
		{999, LevelMaster},
		{1000, LevelLegend},
		{5000, LevelLegend},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelFor(tc.points), "points=%d", tc.points)
	}
}

func TestNextThreshold(t *testing.T) {
	next, ok := NextThreshold(0)
	require.True(t, ok)
	assert.Equal(t, 50, next)

	next, ok = NextThreshold(200)
	require.True(t, ok)
	assert.Equal(t, 500, next)

	_, ok = NextThreshold(1000)
	assert.False(t, ok)
}
