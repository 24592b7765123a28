// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/edulab/sims-console/core/logger"
)

// DateLayout is the wire format for all date fields.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when normalizing a date string. The backend
// serializes DATE columns in RFC 1123 form, while form inputs produce plain
// calendar dates.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

// NormalizeDate turns any date value received from the backend into the
// zero-padded YYYY-MM-DD form used by edit form buffers. Accepted inputs are
// date strings in the layouts above and raw numeric Unix timestamps (seconds
// or milliseconds). Unparseable input yields an empty string and a logged
// warning; it never propagates an error to the caller.
func NormalizeDate(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ""
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout)
			}
		}
		// a numeric timestamp may arrive as a string
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return timestampToDate(n)
		}
		logger.Default().Warnf("cannot normalize date %q", s)
		return ""
	case float64:
		return timestampToDate(int64(v))
	case int:
		return timestampToDate(int64(v))
	case int64:
		return timestampToDate(v)
	default:
		logger.Default().Warnf("cannot normalize date of type %T", value)
		return ""
	}
}

// timestampToDate accepts Unix seconds or milliseconds. Values past the year
// 33658 in seconds are clearly milliseconds.
func timestampToDate(n int64) string {
	const msThreshold = int64(1) << 40
	if n >= msThreshold {
		return time.UnixMilli(n).UTC().Format(DateLayout)
	}
	return time.Unix(n, 0).UTC().Format(DateLayout)
}

// Today returns the current date in wire form, used as the default for date
// fields in fresh form buffers.
func Today() string {
	return time.Now().Format(DateLayout)
}
