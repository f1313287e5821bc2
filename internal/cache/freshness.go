package cache

import (
	"os"
	"time"
)

// FileFresh 是第一道闸门：以文件 mtime 对比调用方给出的 maxAge。
// 文件不存在视为不新鲜；maxAge 缺省视为永久新鲜；maxAge <= 0 总是过期。
func FileFresh(path string, maxAge MaxAge, now time.Time) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return withinAge(info.ModTime(), maxAge, now)
}

// EntryFresh 是第二道闸门：以 envelope 自身记录的有效期判断，与调用方参数无关。
func EntryFresh(entry *Entry, now time.Time) bool {
	if entry == nil {
		return false
	}
	return withinAge(entry.WrittenAt, entry.MaxAge, now)
}

func withinAge(writtenAt time.Time, maxAge MaxAge, now time.Time) bool {
	d, ok := maxAge.Duration()
	if !ok {
		return true
	}
	if d <= 0 {
		return false
	}
	return now.Sub(writtenAt) < d
}
