package httpapi

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"

	"go.uber.org/zap"
)

var chars = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
var charsLen = big.NewInt(int64(len(chars)))

//randString returns a random string of given length using crypto/rand.
//If crypto/rand fails, the less random math/rand is used and the failure logged.
func randString(length int, logger *zap.Logger) string {
	str := make([]byte, length)
	for i := range str {
		k, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			logger.Warn("could not use crypto/rand", zap.Error(err))
			str[i] = chars[mrand.Intn(len(chars))]
			continue
		}
		str[i] = chars[k.Int64()]
	}
	return string(str)
}
