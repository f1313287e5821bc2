package cache

import (
	"errors"
	"fmt"
)

// ErrNotFound 表示缓存不存在、已过期或无法解码。
var ErrNotFound = errors.New("cache entry not found")

// ErrInvalidKey 表示键在清洗后仍会逃逸出资源目录。
var ErrInvalidKey = errors.New("invalid cache key")

// StorageError 描述解析路径、建目录或写文件时的文件系统失败，始终返回给调用方。
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DecodeError 描述无法解析的缓存文件；Store 会将其转换为未命中。
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode cache entry: %v", e.Err)
	}
	return fmt.Sprintf("decode cache entry %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func storageErr(op, path string, err error) error {
	return &StorageError{Op: op, Path: path, Err: err}
}
