package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockLogger "github.com/Akhileshait/tradenet/pkg/logger/mock"
	mockPg "github.com/Akhileshait/tradenet/pkg/postgresql/mock"
)

func writeMigrations(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func TestRunner_LoadMigrations(t *testing.T) {
	dir := writeMigrations(t, map[string]string{
		"000002_create_events.up.sql":   "CREATE TABLE b();",
		"000001_create_orders.up.sql":   " CREATE TABLE a(); ",
		"000001_create_orders.down.sql": "DROP TABLE a;",
		"README.md":                     "ignored",
	})

	runner := NewRunner(nil, nil, nil, Config{MigrationDir: dir})

	migrations, err := runner.LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "000001_create_orders", migrations[0].ID)
	assert.Equal(t, "create_orders", migrations[0].Name)
	assert.Equal(t, "CREATE TABLE a();", migrations[0].UpSQL)
	assert.Equal(t, "DROP TABLE a;", migrations[0].DownSQL)

	assert.Equal(t, "000002_create_events", migrations[1].ID)
	assert.Empty(t, migrations[1].DownSQL)
}

func TestRunner_MigrateUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dir := writeMigrations(t, map[string]string{
		"000001_create_orders.up.sql": "CREATE TABLE a();",
		"000002_create_events.up.sql": "CREATE TABLE b();",
	})

	mockClient := mockPg.NewMockPostgreSQLClient(ctrl)
	mockTx := mockPg.NewMockTransaction(ctrl)
	mockRows := mockPg.NewMockRowsInterface(ctrl)
	mockLog := mockLogger.NewMockInterface(ctrl)

	ctx := context.Background()
	txCtx := context.WithValue(ctx, struct{}{}, "tx")

	mockClient.EXPECT().Query(ctx, "SELECT id FROM public.schema_migrations ORDER BY applied_at").Return(mockRows, nil)
	gomock.InOrder(
		mockRows.EXPECT().Next().Return(true),
		mockRows.EXPECT().Scan(gomock.Any()).DoAndReturn(func(dest ...any) error {
			*dest[0].(*string) = "000001_create_orders"
			return nil
		}),
		mockRows.EXPECT().Next().Return(false),
	)
	mockRows.EXPECT().Err().Return(nil)
	mockRows.EXPECT().Close()

	mockTx.EXPECT().Begin(ctx).Return(txCtx, nil)
	mockClient.EXPECT().Exec(txCtx, "CREATE TABLE b();").Return(pgconn.CommandTag{}, nil)
	mockClient.EXPECT().Exec(txCtx,
		"INSERT INTO public.schema_migrations (id, name, applied_at) VALUES ($1, $2, NOW())",
		"000002_create_events", "create_events",
	).Return(pgconn.CommandTag{}, nil)
	mockTx.EXPECT().Commit(txCtx).Return(nil)
	mockLog.EXPECT().Info("Applied migration", gomock.Any())

	runner := NewRunner(mockClient, mockTx, mockLog, Config{MigrationDir: dir})
	require.NoError(t, runner.MigrateUp(ctx, 0))
}

func TestRunner_MigrateDownRequiresSteps(t *testing.T) {
	runner := NewRunner(nil, nil, nil, Config{})
	assert.Error(t, runner.MigrateDown(context.Background(), 0))
}
