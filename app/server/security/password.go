package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/argon2"

	"student-score-network/app/server/constants"
)

// 摘要是 (password, salt) 的纯函数，盐单独存储在用户表里
func Hash(password string, salt string) string {
	p := argon2id.DefaultParams
	digest := argon2.IDKey([]byte(password), []byte(salt), p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return hex.EncodeToString(digest)
}

// 生成一份新的盐，并计算对应的密码摘要
func GeneratePassword(password string) (digest string, salt string, err error) {
	salt, err = generateSalt()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	return Hash(password, salt), salt, nil
}

func VerifyPassword(password string, digest string, salt string) bool {
	computed := Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

func generateSalt() (string, error) {
	// 从受限字母表里取固定长度的随机字符
	raw := make([]byte, constants.PasswordSaltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	salt := make([]byte, constants.PasswordSaltLength)
	for i, b := range raw {
		salt[i] = constants.PasswordSaltAlphabet[int(b)%len(constants.PasswordSaltAlphabet)]
	}

	return string(salt), nil
}
