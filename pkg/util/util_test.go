package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CARELINK_TEST_STR", " value ")
	t.Setenv("CARELINK_TEST_INT", "42")
	t.Setenv("CARELINK_TEST_BOOL", "true")
	t.Setenv("CARELINK_TEST_BAD_INT", "abc")

	assert.Equal(t, "value", GetEnv("CARELINK_TEST_STR"))
	assert.Equal(t, "fallback", GetEnvDefault("CARELINK_TEST_MISSING", "fallback"))
	assert.Equal(t, int64(42), GetIntEnv("CARELINK_TEST_INT"))
	assert.Equal(t, int64(0), GetIntEnv("CARELINK_TEST_BAD_INT"))
	assert.True(t, GetBoolEnv("CARELINK_TEST_BOOL"))
	assert.False(t, GetBoolEnv("CARELINK_TEST_MISSING"))
}

func TestSignals(t *testing.T) {
	s := Sig()
	defer s.Disconnect("test.signal")

	var got []any
	s.Connect("test.signal", func(sender any, params ...any) {
		got = append(got, sender)
		got = append(got, params...)
	})

	s.Emit("test.signal", "sender", 1, "two")
	require.Equal(t, []any{"sender", 1, "two"}, got)

	s.Disconnect("test.signal")
	s.Emit("test.signal", "again")
	assert.Len(t, got, 3)
}

func TestInitDatabaseSqlite(t *testing.T) {
	db, err := InitDatabase("", "")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
