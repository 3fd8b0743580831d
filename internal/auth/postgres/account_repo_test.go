// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Virtuoso Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtuoso-music/identity/internal/auth"
)

func sampleAccount() *auth.Account {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &auth.Account{
		ID:           ulid.Make(),
		Username:     "melody",
		Email:        "melody@example.com",
		PasswordHash: "$argon2id$fake",
		DisplayName:  "Melody",
		Plan:         auth.PlanFree,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func accountRows(account *auth.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash", "display_name",
		"avatar_url", "plan", "active", "created_at", "updated_at",
	}).AddRow(
		account.ID.String(), account.Username, account.Email,
		account.PasswordHash, account.DisplayName, account.AvatarURL,
		account.Plan, account.Active, account.CreatedAt, account.UpdatedAt,
	)
}

func TestAccountRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, account *auth.Account)
		wantErr   bool
		wantDup   bool
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface, account *auth.Account) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(
						account.ID.String(), account.Username, account.Email,
						account.PasswordHash, account.DisplayName, account.AvatarURL,
						account.Plan, account.Active, account.CreatedAt, account.UpdatedAt,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation maps to duplicate",
			setupMock: func(mock pgxmock.PgxPoolIface, _ *auth.Account) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(),
					).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: true,
			wantDup: true,
		},
		{
			name: "other database error passes through",
			setupMock: func(mock pgxmock.PgxPoolIface, _ *auth.Account) {
				mock.ExpectExec(`INSERT INTO accounts`).
					WithArgs(
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(),
					).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			account := sampleAccount()
			tt.setupMock(mock, account)

			repo := NewAccountRepository(mock)
			err = repo.Create(context.Background(), account)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantDup, errors.Is(err, auth.ErrDuplicate))
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestAccountRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := sampleAccount()
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
			WithArgs(want.ID.String()).
			WillReturnRows(accountRows(want))

		got, err := NewAccountRepository(mock).GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "username", "email", "password_hash", "display_name",
				"avatar_url", "plan", "active", "created_at", "updated_at",
			}))

		_, err = NewAccountRepository(mock).GetByID(context.Background(), id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid stored id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := sampleAccount()
		rows := pgxmock.NewRows([]string{
			"id", "username", "email", "password_hash", "display_name",
			"avatar_url", "plan", "active", "created_at", "updated_at",
		}).AddRow(
			"not-a-ulid", want.Username, want.Email, want.PasswordHash,
			want.DisplayName, want.AvatarURL, want.Plan, want.Active,
			want.CreatedAt, want.UpdatedAt,
		)
		mock.ExpectQuery(`SELECT .+ FROM accounts WHERE id = \$1`).
			WithArgs(want.ID.String()).
			WillReturnRows(rows)

		_, err = NewAccountRepository(mock).GetByID(context.Background(), want.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_GetByLogin(t *testing.T) {
	t.Run("found by identifier", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := sampleAccount()
		mock.ExpectQuery(`SELECT .+ FROM accounts\s+WHERE LOWER\(username\) = LOWER\(\$1\) OR LOWER\(email\) = LOWER\(\$1\)`).
			WithArgs("melody@example.com").
			WillReturnRows(accountRows(want))

		got, err := NewAccountRepository(mock).GetByLogin(context.Background(), "melody@example.com")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT .+ FROM accounts`).
			WithArgs("nobody").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "username", "email", "password_hash", "display_name",
				"avatar_url", "plan", "active", "created_at", "updated_at",
			}))

		_, err = NewAccountRepository(mock).GetByLogin(context.Background(), "nobody")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_Exists(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      bool
		wantErr   bool
	}{
		{
			name: "exists",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("melody", "melody@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "does not exist",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("melody", "melody@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setupMock(mock)

			got, err := NewAccountRepository(mock).Exists(context.Background(), "melody", "melody@example.com")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
