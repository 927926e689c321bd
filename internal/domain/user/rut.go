package user

import (
	"strconv"
	"strings"
)

// NormalizeRUT 校验智利RUT并返回规范格式（12345678-5）
// 接受 12.345.678-5 / 12345678-5 / 123456785，校验位K不区分大小写
// 校验位算法：从右到左依次乘以2..7循环，11 - (和 mod 11)，11→0，10→K
func NormalizeRUT(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, "-", "")
	if len(s) < 2 || len(s) > 9 {
		return "", ErrInvalidRUT
	}

	body, dv := s[:len(s)-1], s[len(s)-1:]
	if _, err := strconv.Atoi(body); err != nil {
		return "", ErrInvalidRUT
	}
	if checkDigit(body) != dv {
		return "", ErrInvalidRUT
	}

	// 去掉前导0
	body = strings.TrimLeft(body, "0")
	if body == "" {
		return "", ErrInvalidRUT
	}
	return body + "-" + dv, nil
}

func checkDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(r)
	}
}
