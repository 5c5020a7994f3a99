package domain

import "errors"

var (
	ErrNoFixture    = errors.New("fixture not found")
	ErrStoreCorrupt = errors.New("state store corrupt")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
)
