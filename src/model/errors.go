package model

import "errors"

var ErrCandlesNotAvailable = errors.New("candles are not available")
var ErrCacheMiss = errors.New("cache entry is missed")
var ErrUnsupportedInterval = errors.New("interval is not supported")
var ErrUnknownIndicator = errors.New("indicator type is not registered")
