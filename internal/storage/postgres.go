package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"brochure-bot/internal/config"
	"brochure-bot/pkg/redis"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

// Quote is a persisted brochure order with its full cost breakdown.
type Quote struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Pages          int       `db:"pages"`
	ColorSpec      string    `db:"color_spec"`
	Copies         int       `db:"copies"`
	A3             bool      `db:"a3"`
	MonoCount      int       `db:"mono_count"`
	ColorCount     int       `db:"color_count"`
	MonoPrice      float64   `db:"mono_price"`
	ColorPrice     float64   `db:"color_price"`
	MonoSurcharge  float64   `db:"mono_surcharge"`
	ColorSurcharge float64   `db:"color_surcharge"`
	MonoCost       float64   `db:"mono_cost"`
	ColorCost      float64   `db:"color_cost"`
	BindingCost    float64   `db:"binding_cost"`
	TotalCost      float64   `db:"total_cost"`
	Contact        string    `db:"contact"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
}

// Format returns the human-readable paper format of the quote.
func (q Quote) Format() string {
	if q.A3 {
		return "A3"
	}
	return "A4"
}

func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
	)

	var db *sqlx.DB
	var err error

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...")

	err = backoff.RetryNotify(
		func() error {
			db, err = sqlx.ConnectContext(ctx, "postgres", connStr)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			if err = db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
			return nil
		},
		retryPolicy,
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func (s *PostgresStorage) SaveQuote(ctx context.Context, quote Quote) (int64, error) {
	const query = `
        INSERT INTO quotes (
            user_id, pages, color_spec, copies, a3,
            mono_count, color_count, mono_price, color_price,
            mono_surcharge, color_surcharge, mono_cost, color_cost,
            binding_cost, total_cost, contact, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
        RETURNING id
    `

	var quoteID int64
	err := s.db.QueryRowContext(ctx, query,
		quote.UserID,
		quote.Pages,
		quote.ColorSpec,
		quote.Copies,
		quote.A3,
		quote.MonoCount,
		quote.ColorCount,
		quote.MonoPrice,
		quote.ColorPrice,
		quote.MonoSurcharge,
		quote.ColorSurcharge,
		quote.MonoCost,
		quote.ColorCost,
		quote.BindingCost,
		quote.TotalCost,
		quote.Contact,
		quote.Status,
		quote.CreatedAt,
	).Scan(&quoteID)

	if err != nil {
		return 0, fmt.Errorf("failed to save quote: %w", err)
	}

	// Invalidate statistics cache
	s.redis.Del(ctx, "quote_stats")

	return quoteID, nil
}

func (s *PostgresStorage) GetQuoteByID(ctx context.Context, quoteID int64) (*Quote, error) {
	const query = `SELECT * FROM quotes WHERE id = $1`
	var quote Quote
	err := s.db.GetContext(ctx, &quote, query, quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("quote not found")
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return &quote, nil
}

func (s *PostgresStorage) UpdateQuoteStatus(ctx context.Context, quoteID int64, status string) error {
	const query = `UPDATE quotes SET status = $1 WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, status, quoteID)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("quote %d not found", quoteID)
	}

	s.redis.Del(ctx, "quote_stats")
	return nil
}

type QuoteStatistics struct {
	TotalQuotes  int            `db:"total_quotes"`
	TotalRevenue float64        `db:"total_revenue"`
	TodayQuotes  int            `db:"-"`
	TodayRevenue float64        `db:"-"`
	WeekQuotes   int            `db:"-"`
	WeekRevenue  float64        `db:"-"`
	MonthQuotes  int            `db:"-"`
	MonthRevenue float64        `db:"-"`
	StatusCounts map[string]int `db:"-"`
}

func (s *PostgresStorage) GetQuoteStatistics(ctx context.Context) (*QuoteStatistics, error) {
	cacheKey := "quote_stats"

	// Try Redis first
	if cached, err := s.redis.Get(ctx, cacheKey); err == nil {
		var stats QuoteStatistics
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	stats := &QuoteStatistics{
		StatusCounts: make(map[string]int),
	}

	type countRevenue struct {
		Count   int     `db:"count"`
		Revenue float64 `db:"revenue"`
	}

	err := s.db.GetContext(ctx, stats, `
        SELECT
            COUNT(*) as total_quotes,
            COALESCE(SUM(total_cost), 0) as total_revenue
        FROM quotes
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}

	periods := []struct {
		interval string
		quotes   *int
		revenue  *float64
	}{
		{"CURRENT_DATE", &stats.TodayQuotes, &stats.TodayRevenue},
		{"CURRENT_DATE - INTERVAL '7 days'", &stats.WeekQuotes, &stats.WeekRevenue},
		{"CURRENT_DATE - INTERVAL '30 days'", &stats.MonthQuotes, &stats.MonthRevenue},
	}
	for _, p := range periods {
		var cr countRevenue
		query := fmt.Sprintf(`
            SELECT
                COUNT(*) as count,
                COALESCE(SUM(total_cost), 0) as revenue
            FROM quotes
            WHERE created_at >= %s
        `, p.interval)
		if err := s.db.GetContext(ctx, &cr, query); err != nil {
			return nil, fmt.Errorf("failed to get period stats: %w", err)
		}
		*p.quotes = cr.Count
		*p.revenue = cr.Revenue
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(*) as count
        FROM quotes
        GROUP BY status
        `,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.StatusCounts[status] = count
	}

	// Cache the result for an hour
	if data, err := json.Marshal(stats); err == nil {
		s.redis.Set(ctx, cacheKey, data, 1*time.Hour)
	}

	return stats, nil
}

var quoteExportHeaders = []string{
	"ID", "User ID", "Pages", "Color Pages", "Copies", "Format",
	"B/W Impressions", "Color Impressions", "B/W Price", "Color Price",
	"B/W Surcharge", "Color Surcharge", "B/W Cost", "Color Cost",
	"Binding Cost", "Total", "Contact", "Status", "Created At",
}

func quoteExportRow(q Quote) []interface{} {
	return []interface{}{
		q.ID,
		q.UserID,
		q.Pages,
		q.ColorSpec,
		q.Copies,
		q.Format(),
		q.MonoCount,
		q.ColorCount,
		q.MonoPrice,
		q.ColorPrice,
		q.MonoSurcharge,
		q.ColorSurcharge,
		q.MonoCost,
		q.ColorCost,
		q.BindingCost,
		q.TotalCost,
		q.Contact,
		q.Status,
		q.CreatedAt.Format("2006-01-02 15:04"),
	}
}

func (s *PostgresStorage) ExportQuoteToExcel(ctx context.Context, quote Quote) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Quote")
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	for row, header := range quoteExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(1, row+1)
		f.SetCellValue("Quote", cell, header)
	}
	for row, value := range quoteExportRow(quote) {
		cell, _ := excelize.CoordinatesToCellName(2, row+1)
		f.SetCellValue("Quote", cell, value)
	}

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle("Quote", "A1", fmt.Sprintf("A%d", len(quoteExportHeaders)), style)

	f.SetActiveSheet(index)

	filename := fmt.Sprintf("quote_%d_%s.xlsx",
		quote.ID,
		quote.CreatedAt.Format("20060102_1504"))
	filepath := fmt.Sprintf("reports/%s", filename)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	if err := f.SaveAs(filepath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return filepath, nil
}

func (s *PostgresStorage) ExportAllQuotesToExcel(ctx context.Context, filename string) error {
	const query = `SELECT * FROM quotes ORDER BY created_at DESC`
	var quotes []Quote
	err := s.db.SelectContext(ctx, &quotes, query)
	if err != nil {
		return fmt.Errorf("failed to fetch quotes: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet("Quotes")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	for col, header := range quoteExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue("Quotes", cell, header)
	}

	for row, quote := range quotes {
		for col, value := range quoteExportRow(quote) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue("Quotes", cell, value)
		}
	}

	f.SetActiveSheet(index)

	if err := os.MkdirAll("reports", 0755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	filepath := fmt.Sprintf("reports/%s.xlsx", filename)
	if err := f.SaveAs(filepath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

func (s *PostgresStorage) CheckRateLimit(ctx context.Context, userID int64, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%d:%s", userID, action)

	count, err := s.redis.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// Set expiry if this is the first increment
	if count == 1 {
		if _, err := s.redis.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count > limit, nil
}

func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
