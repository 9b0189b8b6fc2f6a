package lib

import (
	"bitlibro/src/types"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestTokenRevocation(t *testing.T) {
	db, mock := redismock.NewClientMock()
	NewRedisClient(db)
	t.Cleanup(func() { NewRedisClient(nil) })

	mock.ExpectSet("revoked:abc", 1, 30*time.Minute).SetVal("OK")
	err := RevokeToken(context.Background(), "abc", 30*time.Minute)
	assert.NoError(t, err)

	mock.ExpectExists("revoked:abc").SetVal(1)
	revoked, err := IsTokenRevoked(context.Background(), "abc")
	assert.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectExists("revoked:def").SetVal(0)
	revoked, err = IsTokenRevoked(context.Background(), "def")
	assert.NoError(t, err)
	assert.False(t, revoked)

	mock.ExpectExists("revoked:ghi").SetErr(errors.New("connection refused"))
	_, err = IsTokenRevoked(context.Background(), "ghi")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeExpiredTokenIsNoop(t *testing.T) {
	db, mock := redismock.NewClientMock()
	NewRedisClient(db)
	t.Cleanup(func() { NewRedisClient(nil) })

	err := RevokeToken(context.Background(), "old", -time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeTokenWithoutRedis(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	NewRedisClient(nil)

	err := RevokeToken(context.Background(), "abc", 30*time.Minute)
	assert.ErrorIs(t, err, types.ErrUnavailable)
}
