package service

import "errors"

// 服务层错误，调用方通过 errors.Is 判断类别.
var (
	ErrNotFound      = errors.New("file not found")
	ErrValidation    = errors.New("validation failed")
	ErrTooLarge      = errors.New("file too large")
	ErrStorageWrite  = errors.New("storage write failed")
	ErrStorageDelete = errors.New("storage delete failed")
	ErrMetadataWrite = errors.New("metadata write failed")
)
