package gatesynth

import "errors"

var (
	ErrInvalidActionIndex = errors.New("invalid action index")
	ErrConfiguration      = errors.New("invalid configuration")
	ErrEpisodeOver        = errors.New("episode is over, reset required")
)
