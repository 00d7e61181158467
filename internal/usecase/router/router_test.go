package router

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	mockConnection "github.com/Akhileshait/tradenet/internal/domain/connection/mock"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
)

const filledPayload = `{"type":"ORDER_UPDATE","data":{"orderId":"o1","userId":"u1","symbol":"BTCUSDT","status":"FILLED","price":50000}}`

func TestUsecase_Route(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		payload  string
		mockFn   func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface)
		expected bool
	}{
		{
			name:    "delivered to the owner",
			payload: filledPayload,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				registry.EXPECT().Lookup("u1").Return(conn, true)
				conn.EXPECT().IsOpen().Return(true)
				conn.EXPECT().Send([]byte(filledPayload)).Return(nil)
			},
			expected: true,
		},
		{
			name:    "user offline",
			payload: filledPayload,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				registry.EXPECT().Lookup("u1").Return(nil, false)
				log.EXPECT().DebugContext(ctx, "User offline, dropping status event", gomock.Any())
			},
		},
		{
			name:    "connection closed",
			payload: filledPayload,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				registry.EXPECT().Lookup("u1").Return(conn, true)
				conn.EXPECT().IsOpen().Return(false)
				log.EXPECT().DebugContext(ctx, "User offline, dropping status event", gomock.Any())
			},
		},
		{
			name:    "send buffer full",
			payload: filledPayload,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				registry.EXPECT().Lookup("u1").Return(conn, true)
				conn.EXPECT().IsOpen().Return(true)
				conn.EXPECT().Send(gomock.Any()).Return(stdErrors.New("send buffer full"))
				conn.EXPECT().ID().Return("c1")
				log.EXPECT().WarnContext(ctx, "Failed to forward status event", gomock.Any())
			},
		},
		{
			name:    "undecodable payload",
			payload: `{not json`,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				log.EXPECT().WarnContext(ctx, "Dropping undecodable status event", gomock.Any())
			},
		},
		{
			name:    "missing user id",
			payload: `{"type":"ORDER_UPDATE","data":{"orderId":"o1","status":"FILLED"}}`,
			mockFn: func(registry *mockConnection.MockRegistry, conn *mockConnection.MockConn, log *mockLogger.MockInterface) {
				log.EXPECT().WarnContext(ctx, "Dropping status event without user", gomock.Any())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			registry := mockConnection.NewMockRegistry(ctrl)
			conn := mockConnection.NewMockConn(ctrl)
			log := mockLogger.NewMockInterface(ctrl)
			tc.mockFn(registry, conn, log)

			u := NewUsecase(registry, log)
			assert.Equal(t, tc.expected, u.Route(ctx, []byte(tc.payload)))
		})
	}
}
