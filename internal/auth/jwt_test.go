package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	tm := NewTokenManager("acc-secret", "ref-secret", time.Minute, time.Hour)

	access, refresh, exp, err := tm.GeneratePair(42)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, isRefresh, err := tm.ParseAny(access)
	require.NoError(t, err)
	assert.False(t, isRefresh)
	assert.Equal(t, int64(42), claims.UserID)

	claims, isRefresh, err = tm.ParseAny(refresh)
	require.NoError(t, err)
	assert.True(t, isRefresh)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestParseAnyRejectsForeignToken(t *testing.T) {
	tm := NewTokenManager("acc-secret", "ref-secret", time.Minute, time.Hour)
	other := NewTokenManager("different", "secrets", time.Minute, time.Hour)

	access, _, _, err := other.GeneratePair(42)
	require.NoError(t, err)

	_, _, err = tm.ParseAny(access)
	assert.Error(t, err)
}

func TestParseAnyRejectsExpiredAccess(t *testing.T) {
	tm := NewTokenManager("acc-secret", "ref-secret", -time.Minute, -time.Minute)

	access, _, _, err := tm.GeneratePair(42)
	require.NoError(t, err)

	_, _, err = tm.ParseAny(access)
	assert.Error(t, err)
}

func TestPasswordHashVerify(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, VerifyPassword("hunter22", hash))
	assert.Error(t, VerifyPassword("hunter23", hash))
}
