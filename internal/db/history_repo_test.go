package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lightwatch/internal/types"
)

func TestHistoryRepository_Append(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 6, 20, 14, 0, 0, 0, time.UTC)
	push := types.ChannelPush

	tests := []struct {
		name        string
		channel     *types.Channel
		wantChannel *string
	}{
		{"push channel", &push, strPtr("push")},
		{"no channel stored as null", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := new(mockDBTX)
			entry := &types.AlertHistoryEntry{
				ID:                  "h-1",
				RuleID:              "r1",
				UserID:              "user-1",
				Conditions:          types.ConditionsSnapshot{CloudCover: 12},
				NotificationSent:    tt.channel != nil,
				NotificationChannel: tt.channel,
				TriggeredAt:         at,
			}
			db.On("Exec", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
				if len(args) != 8 {
					return false
				}
				channel, _ := args[5].(*string)
				if (channel == nil) != (tt.wantChannel == nil) {
					return false
				}
				if channel != nil && *channel != *tt.wantChannel {
					return false
				}
				snap, ok := args[3].(types.ConditionsSnapshot)
				return ok && snap.CloudCover == 12 && args[0] == "h-1" && args[6] == at
			})).Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

			require.NoError(t, NewHistoryRepository(db).Append(ctx, entry))
			db.AssertExpectations(t)
		})
	}
}

func TestHistoryRepository_Append_DBError(t *testing.T) {
	db := new(mockDBTX)
	ctx := context.Background()
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("foreign key violation"))

	err := NewHistoryRepository(db).Append(ctx, &types.AlertHistoryEntry{ID: "h-1"})

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
