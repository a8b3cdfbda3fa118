package utils

import (
	"fmt"
	"log"
	"os"
)

func NewLog(dir, name string) *log.Logger {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		panic(err)
	}
	fileName := fmt.Sprintf("%s%s.log", dir, name)
	file, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		panic(err)
	}
	log := log.New(file, "", log.LstdFlags|log.Lmicroseconds)
	return log
}

// ReverseBytes copies src into dst in reverse order, turning a little-endian
// integer into the big-endian form big.Int.SetBytes expects.
func ReverseBytes(dst, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[n-1-i] = src[i]
	}
}
