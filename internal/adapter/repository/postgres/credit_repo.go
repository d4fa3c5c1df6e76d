package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/custodyledger/internal/domain"
	"github.com/iho/custodyledger/internal/usecase"
)

const creditColumns = `id, user_id, amount, interest_rate, status,
	approval_date, repayment_date, is_paid, created_at, updated_at`

const (
	insertCreditSQL = `INSERT INTO credits (` + creditColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	selectCreditByIDSQL = `SELECT ` + creditColumns + ` FROM credits WHERE id = $1`

	selectCreditsByUserSQL = `SELECT ` + creditColumns + ` FROM credits
	WHERE user_id = $1
	ORDER BY created_at DESC, id DESC`

	updateCreditSQL = `UPDATE credits
	SET status = $2, repayment_date = $3, is_paid = $4, updated_at = $5
	WHERE id = $1`
)

// CreditRepository implements usecase.CreditRepository.
type CreditRepository struct {
	db DBTX
}

// NewCreditRepository creates a new CreditRepository.
func NewCreditRepository(db DBTX) *CreditRepository {
	return &CreditRepository{db: db}
}

// Create inserts an issued credit within a transaction.
func (r *CreditRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Credit) error {
	q, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, insertCreditSQL,
		c.ID,
		c.UserID,
		decimalToNumeric(c.Amount),
		decimalToNumeric(c.InterestRate),
		string(c.Status),
		optionalTime(c.ApprovalDate),
		optionalTime(c.RepaymentDate),
		c.IsPaid,
		timeToPgTimestamptz(c.CreatedAt),
		timeToPgTimestamptz(c.UpdatedAt),
	)

	return err
}

// GetByID retrieves a credit by ID.
func (r *CreditRepository) GetByID(ctx context.Context, id string) (*domain.Credit, error) {
	c, err := scanCredit(r.db.QueryRow(ctx, selectCreditByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCreditNotFound
		}

		return nil, err
	}

	return c, nil
}

// ListByUser returns a user's credits, newest first.
func (r *CreditRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Credit, error) {
	rows, err := r.db.Query(ctx, selectCreditsByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []*domain.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}

	return credits, rows.Err()
}

// Update persists servicing fields of an existing credit.
func (r *CreditRepository) Update(ctx context.Context, c *domain.Credit) error {
	tag, err := r.db.Exec(ctx, updateCreditSQL,
		c.ID,
		string(c.Status),
		optionalTime(c.RepaymentDate),
		c.IsPaid,
		timeToPgTimestamptz(c.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCreditNotFound
	}

	return nil
}

func scanCredit(row rowScanner) (*domain.Credit, error) {
	var (
		c                    domain.Credit
		amount, rate         pgtype.Numeric
		status               string
		approval, repayment  pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&amount,
		&rate,
		&status,
		&approval,
		&repayment,
		&c.IsPaid,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Amount = numericToDecimal(amount)
	c.InterestRate = numericToDecimal(rate)
	c.Status = domain.CreditStatus(status)
	c.ApprovalDate = timePtr(approval)
	c.RepaymentDate = timePtr(repayment)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time

	return &c, nil
}
