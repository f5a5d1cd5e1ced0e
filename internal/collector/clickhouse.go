package collector

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"TimeSeriesML/internal/model"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ClickHouseOption configures ClickHouseFetcher.
type ClickHouseOption func(*ClickHouseConfig)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	Table       string
	UseHTTP     bool
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

func WithClickHouseHost(host string, port int) ClickHouseOption {
	return func(c *ClickHouseConfig) {
		c.Host = host
		c.Port = port
	}
}

func WithClickHouseDatabase(database, table string) ClickHouseOption {
	return func(c *ClickHouseConfig) {
		c.Database = database
		c.Table = table
	}
}

func WithClickHouseCredentials(user, password string) ClickHouseOption {
	return func(c *ClickHouseConfig) {
		c.User = user
		c.Password = password
	}
}

func WithClickHouseHTTP(useHTTP bool) ClickHouseOption {
	return func(c *ClickHouseConfig) { c.UseHTTP = useHTTP }
}

// ClickHouseFetcher reads stored daily bars from a ClickHouse table with
// columns symbol, date, open, high, low, close, adjclose, volume.
type ClickHouseFetcher struct {
	db    *sql.DB
	table string
}

// NewClickHouseFetcher opens and pings the connection.
func NewClickHouseFetcher(opts ...ClickHouseOption) (*ClickHouseFetcher, error) {
	cfg := &ClickHouseConfig{
		Port:        9000,
		Database:    "default",
		Table:       "daily_bars",
		User:        "default",
		DialTimeout: 5 * time.Second,
		ReadTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("clickhouse host is required")
	}

	db, err := sql.Open("clickhouse", buildDSN(*cfg))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	f, err := NewClickHouseFetcherDB(db, cfg.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return f, nil
}

// NewClickHouseFetcherDB wraps an already open connection.
func NewClickHouseFetcherDB(db *sql.DB, table string) (*ClickHouseFetcher, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("clickhouse: invalid table name %q", table)
	}
	return &ClickHouseFetcher{db: db, table: table}, nil
}

func (f *ClickHouseFetcher) Name() string { return "clickhouse" }

func (f *ClickHouseFetcher) FetchHistory(ctx context.Context, symbol string, start time.Time) ([]model.RawRecord, error) {
	q := fmt.Sprintf(`
        SELECT date, open, high, low, close, adjclose, volume
        FROM %s
        WHERE symbol = ? AND date >= ?
        ORDER BY date ASC
    `, f.table)
	rows, err := f.db.QueryContext(ctx, q, symbol, start)
	if err != nil {
		return nil, fmt.Errorf("clickhouse query: %w", err)
	}
	defer rows.Close()

	out := make([]model.RawRecord, 0, 2048)
	for rows.Next() {
		var r model.RawRecord
		if err := rows.Scan(&r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.AdjClose, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		r.Date = r.Date.UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Close closes the connection pool.
func (f *ClickHouseFetcher) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}

func buildDSN(cfg ClickHouseConfig) string {
	scheme := "clickhouse://"
	if cfg.UseHTTP {
		scheme = "http://"
	}
	dsn := fmt.Sprintf("%s%s:%s@%s:%d/%s",
		scheme, cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	sep := "?"
	if cfg.DialTimeout > 0 {
		dsn += fmt.Sprintf("%sdial_timeout=%s", sep, cfg.DialTimeout)
		sep = "&"
	}
	if cfg.ReadTimeout > 0 {
		dsn += fmt.Sprintf("%sread_timeout=%s", sep, cfg.ReadTimeout)
	}
	return dsn
}
