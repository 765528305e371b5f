package domain

import (
	"crypto/rand"
	"fmt"
	"path"
	"strings"
	"time"
)

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// UniqueFilename строит ключ вида "<unix-ms>-<rand6>-<имя>". Расширение
// исходного имени сохраняется как есть; у имени без расширения хвостового
// ".ext" не будет вовсе. Случайная часть — 6 символов base36 из crypto/rand,
// поэтому два вызова в одну и ту же миллисекунду не совпадают.
func UniqueFilename(original string) string {
	name := path.Base(strings.TrimSpace(original))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), randomSuffix(6), name)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand практически не падает; на всякий случай — байты времени
		now := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(now >> (uint(i) * 8))
		}
	}
	out := make([]byte, n)
	for i, c := range buf {
		out[i] = suffixAlphabet[int(c)%len(suffixAlphabet)]
	}
	return string(out)
}
