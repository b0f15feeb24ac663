package service

import "errors"

// ErrNotOwner is returned when a record exists but belongs to another user.
var ErrNotOwner = errors.New("forbidden: record does not belong to user")
