package user

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/studyloot/studyloot-backend/internal/platform/database"
	"github.com/studyloot/studyloot-backend/pkg/apperr"
	"github.com/studyloot/studyloot-backend/pkg/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register 创建一个新用户并签发会话令牌。
// 邮箱冲突依赖数据库唯一索引兜底，返回Conflict。
func Register(name, email, password string) (string, Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return "", Profile{}, apperr.InvalidArgument("用户名、邮箱和密码均不能为空")
	}
	if len(password) < 6 {
		return "", Profile{}, apperr.InvalidArgument("密码长度至少为6位")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", Profile{}, fmt.Errorf("无法哈希密码: %w", err)
	}
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", Profile{}, fmt.Errorf("无法生成UUID v7: %w", err)
	}

	newUser := User{
		ID:           newUUID.String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := database.DB.Create(&newUser).Error; err != nil {
		if database.IsDuplicateKeyError(err) {
			return "", Profile{}, apperr.Conflict("该邮箱已被注册")
		}
		return "", Profile{}, fmt.Errorf("无法创建用户记录: %w", err)
	}

	sessionToken, err := token.Issue(newUser.ID)
	if err != nil {
		return "", Profile{}, fmt.Errorf("无法签发会话令牌: %w", err)
	}
	return sessionToken, ProfileFor(&newUser, true), nil
}

// Login 校验邮箱和密码，成功后签发新的会话令牌。
// 为避免泄露账号是否存在，两类失败返回同一错误。
func Login(email, password string) (string, Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", Profile{}, apperr.InvalidArgument("邮箱和密码均不能为空")
	}

	var existing User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", Profile{}, apperr.InvalidArgument("邮箱或密码错误")
		}
		return "", Profile{}, fmt.Errorf("无法查询用户记录: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)); err != nil {
		return "", Profile{}, apperr.InvalidArgument("邮箱或密码错误")
	}

	sessionToken, err := token.Issue(existing.ID)
	if err != nil {
		return "", Profile{}, fmt.Errorf("无法签发会话令牌: %w", err)
	}
	return sessionToken, ProfileFor(&existing, true), nil
}

// GetByID 按主键加载用户，不存在时返回NotFound。
func GetByID(id string) (*User, error) {
	var u User
	if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("用户不存在")
		}
		return nil, fmt.Errorf("无法查询用户记录: %w", err)
	}
	return &u, nil
}

// UpdateProfile 更新用户的名称和简介。
// 只允许用户修改自己的资料，空名称视为非法输入。
func UpdateProfile(id, name, bio string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, apperr.InvalidArgument("用户名不能为空")
	}

	var updated User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&updated, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFound("用户不存在")
			}
			return err
		}
		updated.Name = name
		updated.Bio = bio
		return tx.Save(&updated).Error
	})
	if err != nil {
		return Profile{}, err
	}
	return ProfileFor(&updated, true), nil
}

// SummariesByID 批量加载作者摘要，用于在笔记和评价中内嵌作者信息。
// 返回以用户ID为键的映射，缺失的用户被静默跳过。
func SummariesByID(ids []string) (map[string]Summary, error) {
	result := make(map[string]Summary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var users []User
	if err := database.DB.Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("无法批量查询用户: %w", err)
	}
	for _, u := range users {
		result[u.ID] = Summary{ID: u.ID, Name: u.Name}
	}
	return result, nil
}
