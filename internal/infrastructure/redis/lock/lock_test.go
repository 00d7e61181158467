package lock

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/Akhileshait/tradenet/pkg/errors"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
	"github.com/Akhileshait/tradenet/pkg/redis"
	mockRedis "github.com/Akhileshait/tradenet/pkg/redis/mock"
)

func TestOrderLocker_Acquire(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mockRedis.NewMockClient(ctrl)
	mockLog := mockLogger.NewMockInterface(ctrl)
	config := &redis.Config{PrefixKey: "tradenet:"}
	locker := NewOrderLocker(mockClient, config, time.Minute, mockLog)

	testCases := []struct {
		name     string
		mockFn   func()
		assertFn func(token string, err error)
	}{
		{
			name: "acquired",
			mockFn: func() {
				mockClient.EXPECT().SetNX(gomock.Any(), "tradenet:lock:order:o1", gomock.Any(), time.Minute).Return(true, nil)
			},
			assertFn: func(token string, err error) {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
			},
		},
		{
			name: "held by another worker",
			mockFn: func() {
				mockClient.EXPECT().SetNX(gomock.Any(), "tradenet:lock:order:o1", gomock.Any(), time.Minute).Return(false, nil)
			},
			assertFn: func(token string, err error) {
				assert.True(t, errors.IsCode(err, errors.OrderLockedError))
				assert.Empty(t, token)
			},
		},
		{
			name: "redis failure",
			mockFn: func() {
				mockClient.EXPECT().SetNX(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(false, errors.NewErrorDetails("Failed to set value with NX in Redis", string(errors.RedisSetNXError), "setnx"))
				mockLog.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any())
			},
			assertFn: func(token string, err error) {
				assert.True(t, errors.IsCode(err, errors.RedisSetNXError))
				assert.Empty(t, token)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockFn()
			token, err := locker.Acquire(context.Background(), "o1")
			tc.assertFn(token, err)
		})
	}
}

func TestOrderLocker_Release(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mockRedis.NewMockClient(ctrl)
	mockLog := mockLogger.NewMockInterface(ctrl)
	config := &redis.Config{PrefixKey: "tradenet:"}
	locker := NewOrderLocker(mockClient, config, time.Minute, mockLog)

	testCases := []struct {
		name     string
		mockFn   func()
		assertFn func(err error)
	}{
		{
			name: "released",
			mockFn: func() {
				mockClient.EXPECT().Eval(gomock.Any(), releaseScript, []string{"tradenet:lock:order:o1"}, "token").Return(int64(1), nil)
			},
			assertFn: func(err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "expired before release",
			mockFn: func() {
				mockClient.EXPECT().Eval(gomock.Any(), releaseScript, []string{"tradenet:lock:order:o1"}, "token").Return(int64(0), nil)
				mockLog.EXPECT().WarnContext(gomock.Any(), "Order lock expired before release", gomock.Any())
			},
			assertFn: func(err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "redis failure",
			mockFn: func() {
				mockClient.EXPECT().Eval(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, errors.NewErrorDetails("Failed to run script in Redis", string(errors.RedisEvalError), "eval"))
				mockLog.EXPECT().ErrorContext(gomock.Any(), gomock.Any(), gomock.Any())
			},
			assertFn: func(err error) {
				assert.True(t, errors.IsCode(err, errors.RedisEvalError))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.mockFn()
			tc.assertFn(locker.Release(context.Background(), "o1", "token"))
		})
	}
}
