package random

import (
	"crypto/rand"
	"math/big"
)

// codeCharset 去掉易混淆的 0/O、1/I/L
const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GetRandomCode 生成指定长度的安全随机码（用于邀请码）
func GetRandomCode(length int) (string, error) {
	result := make([]byte, length)
	charsetLen := big.NewInt(int64(len(codeCharset)))
	for i := range result {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		result[i] = codeCharset[n.Int64()]
	}
	return string(result), nil
}
