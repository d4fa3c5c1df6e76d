package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

const transactionColumns = `id, sender_account_id, receiver_account_id, amount,
	status, external_ref, created_at, updated_at`

const (
	insertTransactionSQL = `INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectTransactionByIDSQL = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	updateTransactionStatusSQL = `UPDATE transactions
	SET status = $3, updated_at = $4
	WHERE id = $1 AND status = $2`
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create appends a record to the transaction log.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, insertTransactionSQL,
		t.ID,
		t.SenderAccountID,
		t.ReceiverAccountID,
		decimalToNumeric(t.Amount),
		string(t.Status),
		t.ExternalRef,
		timeToPgTimestamptz(t.CreatedAt),
		timeToPgTimestamptz(t.UpdatedAt),
	)

	return err
}

// GetByID retrieves a transaction by ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return getTransaction(ctx, r.db, selectTransactionByIDSQL, id)
}

// GetByIDForUpdate retrieves a transaction and locks its row.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	q, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	return getTransaction(ctx, q, selectTransactionByIDSQL+" FOR UPDATE", id)
}

// Find returns the records matching filter, newest first.
func (r *TransactionRepository) Find(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query, args := buildFindQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	return txs, rows.Err()
}

// UpdateStatus moves a record between states if it is still in from.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, from, to domain.TransactionStatus, updatedAt time.Time) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := q.Exec(ctx, updateTransactionStatusSQL, id, string(from), string(to), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s is no longer %s", domain.ErrInvalidState, id, from)
	}

	return nil
}

func buildFindQuery(f domain.TransactionFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.AccountIDs) > 0 {
		ids := arg(f.AccountIDs)
		switch f.Direction {
		case domain.DirectionOutgoing:
			where = append(where, "sender_account_id = ANY("+ids+")")
		case domain.DirectionIncoming:
			where = append(where, "receiver_account_id = ANY("+ids+")")
		default:
			where = append(where, "(sender_account_id = ANY("+ids+") OR receiver_account_id = ANY("+ids+"))")
		}
	}
	if f.Status != nil {
		where = append(where, "status = "+arg(string(*f.Status)))
	}
	if f.StartDate != nil {
		where = append(where, "created_at >= "+arg(timeToPgTimestamptz(*f.StartDate)))
	}
	if f.EndDate != nil {
		where = append(where, "created_at <= "+arg(timeToPgTimestamptz(*f.EndDate)))
	}
	if f.WithoutReceiver {
		where = append(where, "receiver_account_id IS NULL")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + transactionColumns + " FROM transactions")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(int32(f.Limit)))
	}
	if f.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(int32(f.Offset)))
	}

	return sb.String(), args
}

func getTransaction(ctx context.Context, db DBTX, query, id string) (*domain.Transaction, error) {
	t, err := scanTransaction(db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, err
	}

	return t, nil
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		t                    domain.Transaction
		amount               pgtype.Numeric
		status               string
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID,
		&t.SenderAccountID,
		&t.ReceiverAccountID,
		&amount,
		&status,
		&t.ExternalRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = numericToDecimal(amount)
	t.Status = domain.TransactionStatus(status)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time

	return &t, nil
}
