package credential

import (
	"context"
	stdErrors "errors"

	"github.com/jackc/pgx/v5"

	"github.com/Akhileshait/tradenet/pkg/errors"
	"github.com/Akhileshait/tradenet/pkg/logger"
	"github.com/Akhileshait/tradenet/pkg/postgresql"
)

type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

// GetByUserID returns the user's key pair, or nil when the user is unknown
// or has no complete key pair stored.
func (r *repository) GetByUserID(ctx context.Context, userID string) (*Credential, error) {
	query, args := postgresql.NewQueryBuilder().
		Select("id", "COALESCE(binance_api_key, '')", "COALESCE(binance_secret, '')").
		From("users").
		Where("id = ?", userID).
		Build()

	cred := &Credential{}
	err := r.db.QueryRow(ctx, query, args...).Scan(&cred.UserID, &cred.APIKey, &cred.APISecret)
	if stdErrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	if cred.APIKey == "" || cred.APISecret == "" {
		r.logger.WarnContext(ctx, "User has no exchange credentials", logger.Field{
			Key:   "userId",
			Value: userID,
		})
		return nil, nil
	}

	return cred, nil
}
