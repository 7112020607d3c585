package service

import (
	"errors"
	"fmt"
)

// 错误分类，handler 依此映射 HTTP 状态码
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrMatchNotFound    = fmt.Errorf("match %w", ErrNotFound)
	ErrReviewNotFound   = fmt.Errorf("review %w", ErrNotFound)
	ErrCommentNotFound  = fmt.Errorf("comment %w", ErrNotFound)
	ErrAlreadyFollowing = fmt.Errorf("follow edge %w", ErrAlreadyExists)
	ErrFollowSelf       = fmt.Errorf("cannot follow self: %w", ErrInvalidInput)
	ErrInvalidRating    = fmt.Errorf("note must be a half step between 0 and 5: %w", ErrInvalidInput)
	ErrCommentTooLong   = fmt.Errorf("comment too long: %w", ErrInvalidInput)
	ErrEmptyComment     = fmt.Errorf("comment is empty: %w", ErrInvalidInput)
	ErrUnknownType      = fmt.Errorf("unknown notification type: %w", ErrInvalidInput)
)
