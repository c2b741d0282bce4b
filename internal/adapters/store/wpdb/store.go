// Package wpdb implements the order store directly against a WordPress
// database (wp_posts/wp_postmeta and the WooCommerce order item tables).
//
// Status writes go straight to the posts table and record an order note.
// WooCommerce hooks do not run, so no customer emails are sent.
package wpdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/wooctl/internal/adapters/store"
	"github.com/eshaffer321/wooctl/internal/domain/status"
)

// Supported database/sql driver names
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// DefaultTablePrefix is WordPress's default $table_prefix
const DefaultTablePrefix = "wp_"

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Config configures a Store
type Config struct {
	Driver        string
	DSN           string
	TablePrefix   string
	Location      *time.Location
	ExtraStatuses []status.Entry
	Now           func() time.Time
}

// Store reads and writes orders in the WordPress schema
type Store struct {
	db       *sql.DB
	tables   tables
	loc      *time.Location
	statuses status.Set
	now      func() time.Time
	logger   *slog.Logger
}

var _ store.Store = (*Store)(nil)

type tables struct {
	posts    string
	postmeta string
	items    string
	itemmeta string
	options  string
	comments string
}

func newTables(prefix string) tables {
	return tables{
		posts:    prefix + "posts",
		postmeta: prefix + "postmeta",
		items:    prefix + "woocommerce_order_items",
		itemmeta: prefix + "woocommerce_order_itemmeta",
		options:  prefix + "options",
		comments: prefix + "comments",
	}
}

// Open connects to the database named by cfg
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	switch cfg.Driver {
	case DriverMySQL:
		dsn, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql DSN: %w", err)
		}
		if logger != nil {
			logger.Debug("Opening WordPress database", "driver", cfg.Driver, "addr", dsn.Addr, "db", dsn.DBName)
		}
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, errors.New("sqlite3 DSN (database path) is required")
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := New(db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database. The Store owns db from here on.
func New(db *sql.DB, cfg Config, logger *slog.Logger) (*Store, error) {
	prefix := cfg.TablePrefix
	if prefix == "" {
		prefix = DefaultTablePrefix
	}
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid table prefix %q", prefix)
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	statuses := status.Core()
	for _, e := range cfg.ExtraStatuses {
		statuses.Add(status.Normalize(e.Code), e.Label)
	}

	return &Store{
		db:       db,
		tables:   newTables(prefix),
		loc:      loc,
		statuses: statuses,
		now:      now,
		logger:   logger.With("system", "wpdb"),
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// OrderStatuses returns the core statuses plus the configured extras.
// Plugins register statuses in code, so the database cannot list them.
func (s *Store) OrderStatuses(_ context.Context) (status.Set, error) {
	return s.statuses, nil
}

func (s *Store) label(code string) string {
	if l := s.statuses.Label(code); l != "" {
		return l
	}
	return status.Normalize(code)
}

// UpdateOrderStatus writes the prefixed status and an order note in one
// transaction.
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, code string) error {
	code = status.Normalize(code)
	now := s.now()
	local := now.In(s.loc).Format(store.DateLayout)
	gmt := now.UTC().Format(store.DateLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous string
	err = tx.QueryRowContext(ctx,
		`SELECT post_status FROM `+s.tables.posts+` WHERE ID = ? AND post_type = ?`,
		id, store.RecordTypeOrder,
	).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("order #%d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read order status: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE `+s.tables.posts+` SET post_status = ?, post_modified = ?, post_modified_gmt = ? WHERE ID = ?`,
		status.Prefixed(code), local, gmt, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	note := fmt.Sprintf("Order status changed from %s to %s.", s.label(previous), s.label(code))
	_, err = tx.ExecContext(ctx, `
		INSERT INTO `+s.tables.comments+`
		(comment_post_ID, comment_author, comment_author_email, comment_date, comment_date_gmt,
		 comment_content, comment_approved, comment_agent, comment_type)
		VALUES (?, 'WooCommerce', '', ?, ?, ?, '1', 'WooCommerce', 'order_note')
	`, id, local, gmt, note)
	if err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	s.logger.Warn("Status written directly to the database; WooCommerce emails and hooks did not run",
		"order_id", id, "status", code)
	return nil
}

// QueryOrders selects orders newest first. An empty status means any
// registered status.
func (s *Store) QueryOrders(ctx context.Context, q store.Query) ([]*store.Order, error) {
	recordType := q.RecordType
	if recordType == "" {
		recordType = store.RecordTypeOrder
	}

	var (
		where = []string{"post_type = ?"}
		args  = []any{recordType}
	)

	if q.Status != "" {
		where = append(where, "post_status = ?")
		args = append(args, status.Prefixed(q.Status))
	} else {
		codes := s.statuses.Codes()
		marks := make([]string, len(codes))
		for i, c := range codes {
			marks[i] = "?"
			args = append(args, status.Prefixed(c))
		}
		where = append(where, "post_status IN ("+strings.Join(marks, ", ")+")")
	}

	for _, d := range q.Dates {
		where = append(where, "post_date "+string(d.Compare)+" ?")
		args = append(args, d.String())
	}

	query := `SELECT ID FROM ` + s.tables.posts + ` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY post_date DESC, ID DESC`
	if q.PerPage > 0 {
		query += " LIMIT ?"
		args = append(args, q.PerPage)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]*store.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	s.logger.Debug("Queried orders", "status", q.Status, "count", len(orders))
	return orders, nil
}
