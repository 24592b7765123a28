// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"wire form", "2024-03-05", "2024-03-05"},
		{"slashes", "2024/03/05", "2024-03-05"},
		{"rfc3339", "2024-03-05T10:30:00Z", "2024-03-05"},
		{"iso without zone", "2024-03-05T10:30:00", "2024-03-05"},
		{"space separated", "2024-03-05 10:30:00", "2024-03-05"},
		{"rfc1123", "Tue, 05 Mar 2024 00:00:00 GMT", "2024-03-05"},
		{"whitespace", "  2024-03-05  ", "2024-03-05"},
		{"unix seconds", int64(1709596800), "2024-03-05"},
		{"unix milliseconds", int64(1709596800000), "2024-03-05"},
		{"numeric string", "1709596800", "2024-03-05"},
		{"float from json", float64(1709596800), "2024-03-05"},
		{"empty", "", ""},
		{"nil", nil, ""},
		{"garbage", "not-a-date", ""},
		{"unsupported type", []string{"2024-03-05"}, ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, NormalizeDate(tc.value))
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	// normalizing an already normalized date must not change it
	once := NormalizeDate("Tue, 05 Mar 2024 00:00:00 GMT")
	assert.Equal(t, once, NormalizeDate(once))
}

func TestToday(t *testing.T) {
	today, err := time.Parse(DateLayout, Today())
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now(), today, 25*time.Hour)
}
