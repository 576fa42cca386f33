package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
)

// ClickHouseHistory implements HistoryStore over a price_history table,
// keeping long price series out of process memory.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseHistory creates ClickHouse-backed price history.
func NewClickHouseHistory(db *sql.DB, table string) repository.HistoryStore {
	if table == "" {
		table = "price_history"
	}
	return &ClickHouseHistory{db: db, table: table}
}

func (s *ClickHouseHistory) Append(ctx context.Context, symbol string, p models.PricePoint) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price) VALUES (?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, p.Timestamp, symbol, p.Price)
	return err
}

func (s *ClickHouseHistory) Series(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.PricePoint, error) {
	q := fmt.Sprintf("SELECT ts, price FROM %s WHERE symbol = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC", s.table)
	args := []interface{}{symbol, from, to}
	// limit <= 0 means unbounded, same contract as MemoryHistory
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseHistory) Close() error {
	return nil // Managed by pkg
}
