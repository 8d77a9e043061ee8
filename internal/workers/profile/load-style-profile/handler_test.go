// internal/workers/profile/load-style-profile/handler_test.go
package loadstyleprofile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	commonerrors "storefront-stylist/internal/common/errors"
	"storefront-stylist/internal/common/logger"
	"storefront-stylist/internal/models"
	"storefront-stylist/internal/profile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectProfileQuery = `SELECT user_id, style_profile, wardrobe, updated_at FROM user_profiles WHERE user_id = \$1`

var updatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestHandler(t *testing.T, db *sql.DB, redisClient *redis.Client, config *Config) *Handler {
	log := logger.NewTestLogger(t)
	store := profile.NewCachedStore(
		profile.NewPostgresStore(db),
		profile.NewRedisStore(redisClient, 5*time.Minute),
		log,
	)
	return NewHandler(config, store, log)
}

func profileRows(userID, styleProfile, wardrobe string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"user_id", "style_profile", "wardrobe", "updated_at"}).
		AddRow(userID, styleProfile, wardrobe, updatedAt)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		styleProfile string
		wardrobe     string
		wantComplete bool
	}{
		{
			name:         "complete profile",
			userID:       "user-123",
			styleProfile: "vintage, grunge",
			wardrobe:     "black denim, band tees",
			wantComplete: true,
		},
		{
			name:         "wardrobe missing",
			userID:       "user-456",
			styleProfile: "minimalist",
			wardrobe:     "  ",
			wantComplete: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			redisClient, redisMock := redismock.NewClientMock()
			handler := createTestHandler(t, db, redisClient, createTestConfig())

			key := profile.Key(tt.userID)
			redisMock.ExpectGet(key).RedisNil()
			mock.ExpectQuery(selectProfileQuery).
				WithArgs(tt.userID).
				WillReturnRows(profileRows(tt.userID, tt.styleProfile, tt.wardrobe))

			cached, _ := json.Marshal(models.StyleProfile{
				UserID: tt.userID, StyleProfile: tt.styleProfile, Wardrobe: tt.wardrobe, UpdatedAt: updatedAt,
			})
			redisMock.ExpectSet(key, cached, 5*time.Minute).SetVal("OK")

			output, err := handler.Execute(context.Background(), &Input{UserID: tt.userID})
			require.NoError(t, err)

			assert.True(t, output.Found)
			assert.Equal(t, tt.styleProfile, output.StyleProfile)
			assert.Equal(t, tt.wardrobe, output.Wardrobe)
			assert.Equal(t, tt.wantComplete, output.Complete)
			assert.Equal(t, "2024-05-01T12:00:00Z", output.UpdatedAt)

			assert.NoError(t, mock.ExpectationsWereMet())
			assert.NoError(t, redisMock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_CacheHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	handler := createTestHandler(t, db, redisClient, createTestConfig())

	cached, _ := json.Marshal(models.StyleProfile{
		UserID: "user-123", StyleProfile: "boho", Wardrobe: "maxi skirts", UpdatedAt: updatedAt,
	})
	redisMock.ExpectGet(profile.Key("user-123")).SetVal(string(cached))

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-123"})
	require.NoError(t, err)
	assert.True(t, output.Found)
	assert.Equal(t, "boho", output.StyleProfile)
	assert.True(t, output.Complete)

	// no database round trip on a cache hit
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_NotFound(t *testing.T) {
	tests := []struct {
		name          string
		failOnMissing bool
		wantCode      commonerrors.ErrorCode
	}{
		{name: "completes with found false"},
		{name: "throws when configured", failOnMissing: true, wantCode: commonerrors.ErrCodeProfileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			redisClient, redisMock := redismock.NewClientMock()
			config := createTestConfig()
			config.FailOnMissing = tt.failOnMissing
			handler := createTestHandler(t, db, redisClient, config)

			redisMock.ExpectGet(profile.Key("ghost")).RedisNil()
			mock.ExpectQuery(selectProfileQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

			output, err := handler.Execute(context.Background(), &Input{UserID: "ghost"})
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, &Output{Found: false}, output)
			} else {
				var stdErr *commonerrors.StandardError
				require.ErrorAs(t, err, &stdErr)
				assert.Equal(t, tt.wantCode, stdErr.Code)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	handler := createTestHandler(t, db, redisClient, createTestConfig())

	redisMock.ExpectGet(profile.Key("user-123")).SetErr(errors.New("connection refused"))
	mock.ExpectQuery(selectProfileQuery).WithArgs("user-123").WillReturnError(errors.New("database is down"))

	output, err := handler.Execute(context.Background(), &Input{UserID: "user-123"})
	assert.Nil(t, output)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeProfileLoadFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "database is down")
	assert.Equal(t, "user-123", stdErr.Metadata["userId"])
}

func TestHandler_Execute_DatabaseUnreachable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()
	handler := createTestHandler(t, db, redisClient, createTestConfig())

	redisMock.ExpectGet(profile.Key("user-123")).RedisNil()
	mock.ExpectQuery(selectProfileQuery).WithArgs("user-123").
		WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	_, err = handler.Execute(context.Background(), &Input{UserID: "user-123"})

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)

	d := commonerrors.Decide(err, 3)
	assert.False(t, d.Throw)
	assert.Equal(t, 2, d.Retries)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)

	_, err = handler.Execute(context.Background(), &Input{UserID: "   "})
	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeInvalidInput, stdErr.Code)
}
