package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

const accountColumns = `id, user_id, account_number, currency, balance,
	card_number, card_expiry, card_cvv, card_type, credit_status,
	version, created_at, updated_at`

const (
	insertAccountSQL = `INSERT INTO accounts (` + accountColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	selectAccountByIDSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	selectAccountByNumberSQL = `SELECT ` + accountColumns + ` FROM accounts
	WHERE account_number = $1 OR card_number = $1
	LIMIT 1`

	selectAccountsByOwnerSQL = `SELECT ` + accountColumns + ` FROM accounts
	WHERE user_id = $1
	ORDER BY created_at, id`

	listAccountsSQL = `SELECT ` + accountColumns + ` FROM accounts
	ORDER BY id
	LIMIT $1 OFFSET $2`

	// Rows are locked in primary-key order so concurrent transfers over the
	// same pair cannot deadlock.
	lockAccountsSQL = `SELECT ` + accountColumns + ` FROM accounts
	WHERE id = ANY($1)
	ORDER BY id
	FOR UPDATE`

	updateAccountBalanceSQL = `UPDATE accounts
	SET balance = $3, version = version + 1, updated_at = $4
	WHERE id = $1 AND version = $2`
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account within a transaction.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, insertAccountSQL,
		account.ID,
		account.UserID,
		account.AccountNumber,
		account.Currency,
		decimalToNumeric(account.Balance),
		account.Card.Number,
		timeToPgTimestamptz(account.Card.ExpiryDate),
		account.Card.CVV,
		string(account.Card.Type),
		string(account.CreditStatus),
		account.Version,
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getOne(ctx, selectAccountByIDSQL, id)
}

// GetByNumber retrieves an account by its account number or card number.
func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return r.getOne(ctx, selectAccountByNumberSQL, number)
}

func (r *AccountRepository) getOne(ctx context.Context, query, arg string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// ListByOwner returns every account owned by userID, oldest first.
func (r *AccountRepository) ListByOwner(ctx context.Context, userID string) ([]*domain.Account, error) {
	return r.query(ctx, r.db, selectAccountsByOwnerSQL, userID)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return r.query(ctx, r.db, listAccountsSQL, int32(limit), int32(offset))
}

// GetByIDsForUpdate retrieves multiple accounts by IDs with FOR UPDATE locks.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	return r.query(ctx, q, lockAccountsSQL, ids)
}

// UpdateBalance writes a new balance guarded by the account version.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, balance decimal.Decimal, updatedAt time.Time) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, updateAccountBalanceSQL,
		id,
		expectedVersion,
		decimalToNumeric(balance),
		timeToPgTimestamptz(updatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s changed since version %d", domain.ErrConflict, id, expectedVersion)
	}

	return nil
}

func (r *AccountRepository) query(ctx context.Context, db DBTX, query string, args ...any) ([]*domain.Account, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a                    domain.Account
		balance              pgtype.Numeric
		expiry               pgtype.Timestamptz
		cardType, credit     string
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.AccountNumber,
		&a.Currency,
		&balance,
		&a.Card.Number,
		&expiry,
		&a.Card.CVV,
		&cardType,
		&credit,
		&a.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Balance = numericToDecimal(balance)
	a.Card.ExpiryDate = expiry.Time
	a.Card.Type = domain.CardType(cardType)
	a.CreditStatus = domain.CreditStatus(credit)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
