// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseHelpers(t *testing.T) {
	const key = "PARAMLAB_TEST_VALUE"

	t.Run("unset uses default", func(t *testing.T) {
		assert.Equal(t, "d", ParseString(key, "d"))
		assert.Equal(t, 7, ParseInt(key, 7))
		assert.Equal(t, time.Second, ParseDuration(key, time.Second))
		assert.True(t, ParseBool(key, true))
		assert.Equal(t, []string{"x"}, ParseStringList(key, []string{"x"}))
	})

	t.Run("empty uses default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Equal(t, "d", ParseString(key, "d"))
		assert.Equal(t, int64(9), ParseInt64(key, 9))
		assert.InDelta(t, 0.5, ParseFloat(key, 0.5), 1e-9)
	})

	t.Run("values", func(t *testing.T) {
		t.Setenv(key, "42")
		assert.Equal(t, "42", ParseString(key, "d"))
		assert.Equal(t, 42, ParseInt(key, 0))
		assert.Equal(t, int64(42), ParseInt64(key, 0))
		assert.InDelta(t, 42.0, ParseFloat(key, 0), 1e-9)
	})

	t.Run("invalid falls back", func(t *testing.T) {
		t.Setenv(key, "nope")
		assert.Equal(t, 3, ParseInt(key, 3))
		assert.Equal(t, time.Minute, ParseDuration(key, time.Minute))
		assert.False(t, ParseBool(key, false))
		assert.InDelta(t, 1.5, ParseFloat(key, 1.5), 1e-9)
	})

	t.Run("bool spellings", func(t *testing.T) {
		for _, v := range []string{"true", "1", "YES"} {
			t.Setenv(key, v)
			assert.True(t, ParseBool(key, false), v)
		}
		for _, v := range []string{"false", "0", "no"} {
			t.Setenv(key, v)
			assert.False(t, ParseBool(key, true), v)
		}
	})
}

func TestIsSensitiveKey(t *testing.T) {
	assert.True(t, isSensitiveKey(EnvRedisPassword))
	assert.True(t, isSensitiveKey("PARAMLAB_API_TOKEN"))
	assert.False(t, isSensitiveKey(EnvListen))
}
