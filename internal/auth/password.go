package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const defaultBcryptCost = bcrypt.DefaultCost

// ErrPasswordMismatch 密码不匹配
var ErrPasswordMismatch = errors.New("password mismatch")

// HashPassword 对明文密码进行哈希处理
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), defaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword 验证密码是否与存储的哈希值匹配
func VerifyPassword(hash, candidate string) error {
	if strings.TrimSpace(hash) == "" {
		return errors.New("stored password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
}

// IsHashed 判断存储值是否为 bcrypt 哈希。
func IsHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

// VerifyStoredPassword 兼容旧备份中的明文密码。
// 返回 rehash=true 时调用方应将密码重新保存为哈希。
func VerifyStoredPassword(stored, candidate string) (rehash bool, err error) {
	if IsHashed(stored) {
		if err := VerifyPassword(stored, candidate); err != nil {
			return false, ErrPasswordMismatch
		}
		return false, nil
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) != 1 {
		return false, ErrPasswordMismatch
	}
	return true, nil
}
