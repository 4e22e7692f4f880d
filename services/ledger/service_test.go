package ledger

import (
	"testing"
	"time"

	"github.com/spatium-offices/vms/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T) *Service {
	db := testutils.SetupTestDB(t, &OutstandingAccessToken{}, &BlacklistedAccessToken{})
	return NewService(db, nil)
}

func uintPtr(v uint) *uint { return &v }

func TestService_RecordOutstanding(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	t.Run("records a token", func(t *testing.T) {
		record, err := service.RecordOutstanding(uintPtr(1), "jti-1", "token-1", now, now.Add(time.Hour))

		require.NoError(t, err)
		assert.NotZero(t, record.ID)
		assert.Equal(t, "jti-1", record.JTI)
		assert.Equal(t, "token-1", record.Token)
		require.NotNil(t, record.UserID)
		assert.EqualValues(t, 1, *record.UserID)
	})

	t.Run("idempotent on jti", func(t *testing.T) {
		first, err := service.RecordOutstanding(uintPtr(2), "jti-dup", "token-a", now, now.Add(time.Hour))
		require.NoError(t, err)

		second, err := service.RecordOutstanding(uintPtr(2), "jti-dup", "token-b", now, now.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		// The original row wins; the second call does not overwrite.
		assert.Equal(t, "token-a", second.Token)

		var count int64
		require.NoError(t, service.db.Model(&OutstandingAccessToken{}).
			Where("jti = ?", "jti-dup").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("allows nil user", func(t *testing.T) {
		record, err := service.RecordOutstanding(nil, "jti-anon", "token-anon", now, now.Add(time.Hour))

		require.NoError(t, err)
		assert.Nil(t, record.UserID)
	})
}

func TestService_Blacklist(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	record, err := service.RecordOutstanding(uintPtr(1), "jti-bl", "token-bl", now, now.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, service.Blacklist(record))

	blacklisted, err := service.IsBlacklisted("jti-bl")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	t.Run("idempotent", func(t *testing.T) {
		require.NoError(t, service.Blacklist(record))

		var count int64
		require.NoError(t, service.db.Model(&BlacklistedAccessToken{}).
			Where("token_id = ?", record.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestService_BlacklistByJTI(t *testing.T) {
	service := setupLedger(t)

	t.Run("creates the outstanding row when missing", func(t *testing.T) {
		err := service.BlacklistByJTI(uintPtr(7), "jti-fresh", "token-fresh", time.Now().Add(time.Hour))
		require.NoError(t, err)

		blacklisted, err := service.IsBlacklisted("jti-fresh")
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("reuses an existing outstanding row", func(t *testing.T) {
		now := time.Now()
		record, err := service.RecordOutstanding(uintPtr(8), "jti-known", "token-known", now, now.Add(time.Hour))
		require.NoError(t, err)

		require.NoError(t, service.BlacklistByJTI(uintPtr(8), "jti-known", "token-known", now.Add(time.Hour)))

		var marker BlacklistedAccessToken
		require.NoError(t, service.db.Where("token_id = ?", record.ID).First(&marker).Error)
	})
}

func TestService_IsBlacklisted(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	record, err := service.RecordOutstanding(uintPtr(1), "jti-live", "token-live", now, now.Add(time.Hour))
	require.NoError(t, err)

	blacklisted, err := service.IsBlacklisted("jti-live")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	blacklisted, err = service.IsBlacklisted("jti-unknown")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, service.Blacklist(record))

	blacklisted, err = service.IsBlacklisted("jti-live")
	require.NoError(t, err)
	assert.True(t, blacklisted)
}

func TestService_IsTokenStringBlacklisted(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	record, err := service.RecordOutstanding(uintPtr(1), "jti-str", "token-str", now, now.Add(time.Hour))
	require.NoError(t, err)

	blacklisted, err := service.IsTokenStringBlacklisted("token-str")
	require.NoError(t, err)
	assert.False(t, blacklisted)

	require.NoError(t, service.Blacklist(record))

	blacklisted, err = service.IsTokenStringBlacklisted("token-str")
	require.NoError(t, err)
	assert.True(t, blacklisted)

	blacklisted, err = service.IsTokenStringBlacklisted("token-other")
	require.NoError(t, err)
	assert.False(t, blacklisted)
}

func TestService_BlacklistAllForUser(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	for _, jti := range []string{"u9-a", "u9-b", "u9-c"} {
		_, err := service.RecordOutstanding(uintPtr(9), jti, "token-"+jti, now, now.Add(time.Hour))
		require.NoError(t, err)
	}
	_, err := service.RecordOutstanding(uintPtr(10), "u10-a", "token-u10-a", now, now.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, service.BlacklistAllForUser(9))

	for _, jti := range []string{"u9-a", "u9-b", "u9-c"} {
		blacklisted, err := service.IsBlacklisted(jti)
		require.NoError(t, err)
		assert.True(t, blacklisted, "expected %s to be blacklisted", jti)
	}

	blacklisted, err := service.IsBlacklisted("u10-a")
	require.NoError(t, err)
	assert.False(t, blacklisted, "other users are untouched")

	t.Run("idempotent", func(t *testing.T) {
		assert.True(t, service.BlacklistAllForUser(9))

		var count int64
		require.NoError(t, service.db.Model(&BlacklistedAccessToken{}).Count(&count).Error)
		assert.EqualValues(t, 3, count)
	})

	t.Run("user with no tokens", func(t *testing.T) {
		assert.True(t, service.BlacklistAllForUser(999))
	})
}

func TestService_OutstandingForUser(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	_, err := service.RecordOutstanding(uintPtr(3), "u3-a", "token-u3-a", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = service.RecordOutstanding(uintPtr(3), "u3-b", "token-u3-b", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = service.RecordOutstanding(uintPtr(4), "u4-a", "token-u4-a", now, now.Add(time.Hour))
	require.NoError(t, err)

	tokens, err := service.OutstandingForUser(3)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestService_CleanupExpired(t *testing.T) {
	service := setupLedger(t)
	now := time.Now()

	expired, err := service.RecordOutstanding(uintPtr(1), "jti-old", "token-old", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, service.Blacklist(expired))

	_, err = service.RecordOutstanding(uintPtr(1), "jti-new", "token-new", now, now.Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, service.CleanupExpired())

	var outstanding int64
	require.NoError(t, service.db.Model(&OutstandingAccessToken{}).Count(&outstanding).Error)
	assert.EqualValues(t, 1, outstanding)

	var markers int64
	require.NoError(t, service.db.Model(&BlacklistedAccessToken{}).Count(&markers).Error)
	assert.EqualValues(t, 0, markers)
}
