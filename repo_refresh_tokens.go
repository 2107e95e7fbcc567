package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens persists active refresh tokens. Presence in this table
// is half of the refresh-token validity invariant; the signature check
// is the other half.
type RefreshTokens interface {
	Store(ctx context.Context, userID uuid.UUID, token string) (*RefreshToken, error)
	StoreTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string) (*RefreshToken, error)
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) (bool, error)
}

type refreshTokens struct {
	repo repository.Repository[*RefreshToken]
	db   *bun.DB
}

var _ RefreshTokens = (*refreshTokens)(nil)

func NewRefreshTokensRepository(db *bun.DB) RefreshTokens {
	repo := repository.NewRepository[*RefreshToken](db, repository.ModelHandlers[*RefreshToken]{
		NewRecord: func() *RefreshToken { return &RefreshToken{} },
		GetID: func(r *RefreshToken) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *RefreshToken, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &refreshTokens{
		repo: repo,
		db:   db,
	}
}

func (a *refreshTokens) Store(ctx context.Context, userID uuid.UUID, token string) (*RefreshToken, error) {
	return a.StoreTx(ctx, a.db, userID, token)
}

func (a *refreshTokens) StoreTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, token string) (*RefreshToken, error) {
	record := &RefreshToken{
		ID:     uuid.New(),
		Token:  token,
		UserID: userID,
	}
	return a.repo.CreateTx(ctx, tx, record)
}

func (a *refreshTokens) Find(ctx context.Context, token string) (*RefreshToken, error) {
	record := &RefreshToken{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// Delete removes a refresh token row, revoking the token. Reports
// whether a row actually existed so logout can stay idempotent.
func (a *refreshTokens) Delete(ctx context.Context, token string) (bool, error) {
	res, err := a.db.NewDelete().
		Model(&RefreshToken{}).
		Where("token = ?", token).
		Exec(ctx)

	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
