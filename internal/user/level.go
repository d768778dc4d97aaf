package user

// 等级阈值与名称一一对应，按积分从高到低匹配。
const (
	LevelNoob   = "NOOB"
	LevelRookie = "ROOKIE"
	LevelPro    = "PRO"
	LevelMaster = "MASTER"
	LevelLegend = "LEGEND"
)

// LevelFor 根据积分计算用户当前的等级名称。
// 阈值是闭区间下界：达到阈值即进入对应等级。
func LevelFor(points int) string {
	switch {
	case points >= 1000:
		return LevelLegend
	case points >= 500:
		return LevelMaster
	case points >= 200:
		return LevelPro
	case points >= 50:
		return LevelRookie
	default:
		return LevelNoob
	}
}

// NextThreshold 返回到达下一等级所需的积分阈值。
// 已是最高等级时返回0和false。
func NextThreshold(points int) (int, bool) {
	switch {
	case points >= 1000:
		return 0, false
	case points >= 500:
		return 1000, true
	case points >= 200:
		return 500, true
	case points >= 50:
		return 200, true
	default:
		return 50, true
	}
}

// ProfileFor 把持久化的用户模型转换为对外的展示形态。
// includeEmail 仅在本人查看自己的资料时为true。
func ProfileFor(u *User, includeEmail bool) Profile {
	p := Profile{
		ID:        u.ID,
		Name:      u.Name,
		Bio:       u.Bio,
		Points:    u.Points,
		Level:     LevelFor(u.Points),
		CreatedAt: u.CreatedAt,
	}
	if includeEmail {
		p.Email = u.Email
	}
	return p
}
