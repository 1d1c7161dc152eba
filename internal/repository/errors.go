package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 一意制約違反（同じユーザー×商品など）
	ErrDuplicate = errors.New("duplicate")
)
