package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ib-77/memosum/internal/database"
)

// TabRepo handles tabs.
type TabRepo struct {
	db *sql.DB
}

func NewTabRepo(db *sql.DB) *TabRepo { return &TabRepo{db: db} }

const upsertTab = `
	INSERT INTO tabs(id, title, memo_text, numbers_json, sum, position, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title=excluded.title,
		memo_text=excluded.memo_text,
		numbers_json=excluded.numbers_json,
		sum=excluded.sum,
		position=excluded.position,
		updated_at=excluded.updated_at;
	`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, ex execer, t TabRow) error {
	nums, err := encodeNumbers(t.Numbers)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, upsertTab,
		t.ID, t.Title, t.MemoText, nums, encodeSum(t.Sum), t.Position, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TabRepo) Upsert(ctx context.Context, t TabRow) error {
	return upsert(ctx, r.db, t)
}

// ReplaceAll swaps every stored tab for rows in one transaction.
func (r *TabRepo) ReplaceAll(ctx context.Context, rows []TabRow) error {
	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tabs`); err != nil {
			return err
		}
		for _, t := range rows {
			if err := upsert(ctx, tx, t); err != nil {
				return fmt.Errorf("tab %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

// List returns tabs ordered by position.
func (r *TabRepo) List(ctx context.Context) ([]TabRow, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, memo_text, numbers_json, sum, position, created_at, updated_at
	FROM tabs ORDER BY position, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TabRow
	for rows.Next() {
		var (
			t    TabRow
			nums string
			sum  sql.NullFloat64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.MemoText, &nums, &sum, &t.Position, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if t.Numbers, err = decodeNumbers(nums); err != nil {
			return nil, fmt.Errorf("tab %s: %w", t.ID, err)
		}
		t.Sum = decodeSum(sum)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Numbers are stored as JSON strings so that ±Inf and NaN survive.
func encodeNumbers(nums []float64) (string, error) {
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.FormatFloat(n, 'g', -1, 64)
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("encode numbers: %w", err)
	}
	return string(b), nil
}

func decodeNumbers(s string) ([]float64, error) {
	var strs []string
	if err := json.Unmarshal([]byte(s), &strs); err != nil {
		return nil, fmt.Errorf("decode numbers: %w", err)
	}
	nums := make([]float64, len(strs))
	for i, str := range strs {
		n, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return nil, fmt.Errorf("decode numbers: %w", err)
		}
		nums[i] = n
	}
	return nums, nil
}

// SQLite stores NaN as NULL.
func encodeSum(sum float64) any {
	if math.IsNaN(sum) {
		return nil
	}
	return sum
}

func decodeSum(sum sql.NullFloat64) float64 {
	if !sum.Valid {
		return math.NaN()
	}
	return sum.Float64
}
