package payment

import (
	"fmt"
	"math/rand"
	"time"
)

// GeneratePaymentNo 生成支付流水号
// 格式:PAY + YYYYMMDDHHMMSS + 6位随机数
func GeneratePaymentNo() string {
	timePart := time.Now().Format("20060102150405")
	randomPart := rand.Intn(900000) + 100000
	return fmt.Sprintf("PAY%s%d", timePart, randomPart)
}
