package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/Akhileshait/tradenet/internal/domain/connection"
	mockConnection "github.com/Akhileshait/tradenet/internal/domain/connection/mock"
	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
)

func newConn(ctrl *gomock.Controller, id, userID string) *mockConnection.MockConn {
	conn := mockConnection.NewMockConn(ctrl)
	conn.EXPECT().ID().Return(id).AnyTimes()
	conn.EXPECT().UserID().Return(userID).AnyTimes()
	return conn
}

func TestRegistry_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLog := mockLogger.NewMockInterface(ctrl)
	r := New(mockLog)

	first := newConn(ctrl, "c1", "u1")
	second := newConn(ctrl, "c2", "u1")

	r.Register(first)
	got, ok := r.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, connection.Conn(first), got)

	mockLog.EXPECT().Info("Connection superseded", gomock.Any())
	first.EXPECT().Close(connection.CloseSuperseded, gomock.Any())
	r.Register(second)

	got, ok = r.Lookup("u1")
	assert.True(t, ok)
	assert.Equal(t, connection.Conn(second), got)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RegisterSameConnection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := New(mockLogger.NewMockInterface(ctrl))
	conn := newConn(ctrl, "c1", "u1")

	r.Register(conn)
	r.Register(conn)

	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Unregister(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLog := mockLogger.NewMockInterface(ctrl)
	mockLog.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	r := New(mockLog)

	testCases := []struct {
		name     string
		setupFn  func() connection.Conn
		assertFn func(removed bool)
	}{
		{
			name: "registered connection is removed",
			setupFn: func() connection.Conn {
				conn := newConn(ctrl, "c1", "u1")
				r.Register(conn)
				return conn
			},
			assertFn: func(removed bool) {
				assert.True(t, removed)
				_, ok := r.Lookup("u1")
				assert.False(t, ok)
			},
		},
		{
			name: "superseded connection leaves the newer one in place",
			setupFn: func() connection.Conn {
				old := newConn(ctrl, "c2", "u2")
				old.EXPECT().Close(gomock.Any(), gomock.Any())
				r.Register(old)
				r.Register(newConn(ctrl, "c3", "u2"))
				return old
			},
			assertFn: func(removed bool) {
				assert.False(t, removed)
				got, ok := r.Lookup("u2")
				assert.True(t, ok)
				assert.Equal(t, "c3", got.ID())
			},
		},
		{
			name: "unknown user",
			setupFn: func() connection.Conn {
				return newConn(ctrl, "c4", "u4")
			},
			assertFn: func(removed bool) {
				assert.False(t, removed)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := tc.setupFn()
			tc.assertFn(r.Unregister(conn))
		})
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLog := mockLogger.NewMockInterface(ctrl)
	mockLog.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	r := New(mockLog)

	const users = 10
	const perUser = 20

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for c := 0; c < perUser; c++ {
			conn := newConn(ctrl, fmt.Sprintf("c%d-%d", u, c), fmt.Sprintf("u%d", u))
			conn.EXPECT().Close(gomock.Any(), gomock.Any()).MaxTimes(1)
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.Register(conn)
				r.Lookup(conn.UserID())
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, users, r.Len())
}
