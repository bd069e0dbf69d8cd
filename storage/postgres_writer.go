package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"congress-trades/models"
)

const tradeColumns = 15

// PostgresWriter persists extracted trades to PostgreSQL. Every Write call
// stores its trades under a fresh run ID so earlier runs stay queryable.
type PostgresWriter struct {
	db    *sql.DB
	runID uuid.UUID
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			id                SERIAL PRIMARY KEY,
			run_id            UUID         NOT NULL,
			doc_id            VARCHAR(32)  NOT NULL,
			politician        TEXT         NOT NULL DEFAULT '',
			state_district    VARCHAR(8)   NOT NULL DEFAULT '',
			chamber           VARCHAR(16)  NOT NULL DEFAULT '',
			filing_date       VARCHAR(16)  NOT NULL DEFAULT '',
			ticker            VARCHAR(8)   NOT NULL,
			company           VARCHAR(100) NOT NULL DEFAULT '',
			asset_type        VARCHAR(16)  NOT NULL,
			tx_type           VARCHAR(32)  NOT NULL,
			trade_date        VARCHAR(10)  NOT NULL DEFAULT '',
			notification_date VARCHAR(10)  NOT NULL DEFAULT '',
			amount_min        BIGINT       NOT NULL DEFAULT 0,
			amount_max        BIGINT       NOT NULL DEFAULT 0,
			amount_raw        TEXT         NOT NULL DEFAULT '',
			created_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_trades_run        ON trades(run_id);
		CREATE INDEX IF NOT EXISTS idx_trades_ticker     ON trades(ticker);
		CREATE INDEX IF NOT EXISTS idx_trades_politician ON trades(politician);
		CREATE INDEX IF NOT EXISTS idx_trades_doc        ON trades(doc_id);
	`)
	return err
}

// RunID returns the ID of the most recent Write, or uuid.Nil before any.
func (pw *PostgresWriter) RunID() uuid.UUID {
	return pw.runID
}

// Write batch-inserts all trades under a new run ID inside one transaction.
func (pw *PostgresWriter) Write(trades []*models.Trade) error {
	pw.runID = uuid.New()
	if len(trades) == 0 {
		return nil
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(trades); i += batchSize {
		end := i + batchSize
		if end > len(trades) {
			end = len(trades)
		}
		if err := insertBatch(tx, pw.runID, trades[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("postgres: insert batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, runID uuid.UUID, batch []*models.Trade) error {
	query, args := buildInsert(runID, batch)
	_, err := tx.Exec(query, args...)
	return err
}

func buildInsert(runID uuid.UUID, batch []*models.Trade) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*tradeColumns)

	for idx, t := range batch {
		base := idx * tradeColumns
		placeholders := make([]string, tradeColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID.String(), t.DocID, t.Politician, t.StateDistrict, t.Chamber, t.FilingDate,
			t.Ticker, t.Company, t.AssetType, t.Transaction, t.Date, t.NotificationDate,
			t.Amount.Min, t.Amount.Max, t.Amount.Raw)
	}

	query := fmt.Sprintf(`
		INSERT INTO trades (run_id, doc_id, politician, state_district, chamber, filing_date,
			ticker, company, asset_type, tx_type, trade_date, notification_date,
			amount_min, amount_max, amount_raw)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// FetchRun retrieves the trades of one run in insertion order, which is the
// order the aggregator saw them in.
func (pw *PostgresWriter) FetchRun(runID uuid.UUID) ([]*models.Trade, error) {
	rows, err := pw.db.Query(`
		SELECT doc_id, politician, state_district, chamber, filing_date,
			ticker, company, asset_type, tx_type, trade_date, notification_date,
			amount_min, amount_max, amount_raw
		FROM trades
		WHERE run_id = $1
		ORDER BY id
	`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch run: %w", err)
	}
	defer rows.Close()

	var trades []*models.Trade
	for rows.Next() {
		t := &models.Trade{}
		if err := rows.Scan(
			&t.DocID, &t.Politician, &t.StateDistrict, &t.Chamber, &t.FilingDate,
			&t.Ticker, &t.Company, &t.AssetType, &t.Transaction, &t.Date, &t.NotificationDate,
			&t.Amount.Min, &t.Amount.Max, &t.Amount.Raw,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
