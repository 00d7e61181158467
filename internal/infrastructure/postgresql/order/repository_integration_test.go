package order

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	v1 "github.com/Akhileshait/tradenet/internal/domain/order/v1"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
	"github.com/Akhileshait/tradenet/pkg/postgresql/pgtest"
)

type RepositoryTestSuite struct {
	suite.Suite
	db   *pgtest.DB
	repo OrderRepository
	tx   postgresql.Transaction
	ctx  context.Context
}

func (suite *RepositoryTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	migrationDir, err := filepath.Abs("../migrations")
	require.NoError(suite.T(), err)

	suite.db = pgtest.Start(suite.T(), pgtest.Config{MigrationDir: migrationDir})

	log, err := logger.NewLogger()
	require.NoError(suite.T(), err)
	suite.repo = NewRepository(suite.db.Client, log)
	suite.tx = suite.db.Tx
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.db.Truncate(suite.T(), "order_events", "order_commands")
}

func (suite *RepositoryTestSuite) newOrder(id string) *Order {
	return &Order{
		ID:        id,
		UserID:    "u1",
		Symbol:    "BTCUSDT",
		Side:      v1.SideBuy,
		Type:      v1.TypeMarket,
		Quantity:  decimal.RequireFromString("0.01"),
		Status:    v1.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (suite *RepositoryTestSuite) TestCreateAndGet() {
	order := suite.newOrder("01HZX0000000000000000000B1")
	suite.Require().NoError(suite.repo.Create(suite.ctx, order))

	stored, err := suite.repo.GetByID(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(stored)
	suite.Equal(v1.StatusPending, stored.Status)
	suite.True(order.Quantity.Equal(stored.Quantity))
	suite.Nil(stored.FilledPrice)

	missing, err := suite.repo.GetByID(suite.ctx, "does-not-exist")
	suite.NoError(err)
	suite.Nil(missing)
}

func (suite *RepositoryTestSuite) TestCreateDuplicateID() {
	order := suite.newOrder("01HZX0000000000000000000B2")
	suite.Require().NoError(suite.repo.Create(suite.ctx, order))
	suite.Error(suite.repo.Create(suite.ctx, order))
}

func (suite *RepositoryTestSuite) TestMarkTerminalIsIdempotent() {
	order := suite.newOrder("01HZX0000000000000000000B3")
	suite.Require().NoError(suite.repo.Create(suite.ctx, order))

	price := decimal.NewFromInt(50000)
	err := postgresql.WithTx(suite.ctx, suite.tx, func(txCtx context.Context) error {
		applied, err := suite.repo.MarkTerminal(txCtx, order.ID, Outcome{Status: v1.StatusFilled, FilledPrice: &price})
		suite.True(applied)
		if err != nil {
			return err
		}
		return suite.repo.StoreEvent(txCtx, &Event{
			ID:        "01HZX0000000000000000000E1",
			OrderID:   order.ID,
			Status:    v1.StatusFilled,
			Price:     price,
			Quantity:  order.Quantity,
			CreatedAt: time.Now(),
		})
	})
	suite.Require().NoError(err)

	applied, err := suite.repo.MarkTerminal(suite.ctx, order.ID, Outcome{Status: v1.StatusError, Reason: "late"})
	suite.NoError(err)
	suite.False(applied)

	stored, err := suite.repo.GetByID(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Equal(v1.StatusFilled, stored.Status)
	suite.Require().NotNil(stored.FilledPrice)
	suite.True(price.Equal(*stored.FilledPrice))

	events, err := suite.repo.ListEvents(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Len(events, 1)
}

func (suite *RepositoryTestSuite) TestRollbackDiscardsTerminalUpdate() {
	order := suite.newOrder("01HZX0000000000000000000B4")
	suite.Require().NoError(suite.repo.Create(suite.ctx, order))

	err := postgresql.WithTx(suite.ctx, suite.tx, func(txCtx context.Context) error {
		if _, err := suite.repo.MarkTerminal(txCtx, order.ID, Outcome{Status: v1.StatusFilled}); err != nil {
			return err
		}
		// Unknown order id violates the foreign key and aborts the transaction.
		return suite.repo.StoreEvent(txCtx, &Event{ID: "01HZX0000000000000000000E2", OrderID: "missing", Status: v1.StatusFilled, CreatedAt: time.Now()})
	})
	suite.Error(err)

	stored, err := suite.repo.GetByID(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Equal(v1.StatusPending, stored.Status)
}

func (suite *RepositoryTestSuite) TestListFilters() {
	for i, id := range []string{"01HZX0000000000000000000C1", "01HZX0000000000000000000C2", "01HZX0000000000000000000C3"} {
		order := suite.newOrder(id)
		order.CreatedAt = order.CreatedAt.Add(time.Duration(i) * time.Second)
		if i == 2 {
			order.Symbol = "ETHUSDT"
		}
		suite.Require().NoError(suite.repo.Create(suite.ctx, order))
	}

	other := suite.newOrder("01HZX0000000000000000000C4")
	other.UserID = "u2"
	suite.Require().NoError(suite.repo.Create(suite.ctx, other))

	all, err := suite.repo.List(suite.ctx, Filter{UserID: "u1"})
	suite.Require().NoError(err)
	suite.Len(all, 3)
	suite.Equal("01HZX0000000000000000000C3", all[0].ID)

	btc, err := suite.repo.List(suite.ctx, Filter{UserID: "u1", Symbol: "BTCUSDT"})
	suite.Require().NoError(err)
	suite.Len(btc, 2)

	page, err := suite.repo.List(suite.ctx, Filter{UserID: "u1", Limit: 1, Offset: 1})
	suite.Require().NoError(err)
	suite.Require().Len(page, 1)
	suite.Equal("01HZX0000000000000000000C2", page[0].ID)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
