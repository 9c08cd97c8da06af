package dashboard

import "errors"

var ErrStatsUnavailable = errors.New("attendance statistics are temporarily unavailable")
