// Package postgres provides a PostgreSQL implementation of the gofulfill.Storage interface.
// The wide report_plan table is normalized with a lateral VALUES list, the SQL
// counterpart of an UNPIVOT.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Storage implements gofulfill.Storage using PostgreSQL
type Storage struct {
	pool          *pgxpool.Pool
	hasAccessSQL  string
	updatePlanSQL string
}

// Config holds PostgreSQL storage configuration
type Config struct {
	// ConnectionString is the PostgreSQL connection string
	ConnectionString string

	// UserTable maps user_id to plan
	// Default: "user_map"
	UserTable string

	// EntitlementTable has a reports_services column and one boolean column per plan
	// Default: "report_plan"
	EntitlementTable string

	// Plans lists the plan columns of EntitlementTable
	// Default: Bronze, Silver, Gold
	Plans []string

	// Pool configuration
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		UserTable:        "user_map",
		EntitlementTable: "report_plan",
		Plans:            []string{"Bronze", "Silver", "Gold"},
		MaxConns:         10,
		MinConns:         2,
		MaxConnLifetime:  time.Hour,
		MaxConnIdleTime:  30 * time.Minute,
	}
}

// New creates a new PostgreSQL storage adapter
func New(ctx context.Context, config Config) (*Storage, error) {
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	hasAccessSQL, err := EntitlementQuery(config)
	if err != nil {
		return nil, err
	}
	updatePlanSQL, err := UpdatePlanQuery(config)
	if err != nil {
		return nil, err
	}

	// Parse connection string
	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Apply pool settings
	if config.MaxConns > 0 {
		poolConfig.MaxConns = config.MaxConns
	}
	if config.MinConns > 0 {
		poolConfig.MinConns = config.MinConns
	}
	if config.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = config.MaxConnLifetime
	}
	if config.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = config.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{
		pool:          pool,
		hasAccessSQL:  hasAccessSQL,
		updatePlanSQL: updatePlanSQL,
	}, nil
}

// Close closes the PostgreSQL connection pool
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (c *Config) setDefaults() {
	def := DefaultConfig()
	if c.UserTable == "" {
		c.UserTable = def.UserTable
	}
	if c.EntitlementTable == "" {
		c.EntitlementTable = def.EntitlementTable
	}
	if len(c.Plans) == 0 {
		c.Plans = def.Plans
	}
}

func (c *Config) validate() error {
	for _, name := range append([]string{c.UserTable, c.EntitlementTable}, c.Plans...) {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	return nil
}

// EntitlementQuery builds the existence query used by HasAccess ($1 user ID, $2 feature)
func EntitlementQuery(config Config) (string, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return "", err
	}

	rows := make([]string, 0, len(config.Plans))
	for _, plan := range config.Plans {
		// plan is a validated identifier, so it is safe as both literal and column
		rows = append(rows, fmt.Sprintf("('%s', rp.%s)", plan, pgx.Identifier{plan}.Sanitize()))
	}

	return fmt.Sprintf(`WITH entitlements AS (
	SELECT rp.reports_services, p.plan
	FROM %s rp
	CROSS JOIN LATERAL (VALUES %s) AS p(plan, has_access)
	WHERE p.has_access IS TRUE
)
SELECT EXISTS (
	SELECT 1
	FROM %s um
	JOIN entitlements e ON um.plan = e.plan
	WHERE um.user_id = $1 AND e.reports_services = $2
) AS entitled`,
		pgx.Identifier{config.EntitlementTable}.Sanitize(),
		strings.Join(rows, ", "),
		pgx.Identifier{config.UserTable}.Sanitize(),
	), nil
}

// UpdatePlanQuery builds the update statement used by UpdatePlan ($1 plan, $2 user ID)
func UpdatePlanQuery(config Config) (string, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf(`UPDATE %s SET plan = $1 WHERE user_id = $2`,
		pgx.Identifier{config.UserTable}.Sanitize()), nil
}

// HasAccess implements gofulfill.Storage
func (s *Storage) HasAccess(ctx context.Context, userID, feature string) (bool, error) {
	var entitled bool
	err := s.pool.QueryRow(ctx, s.hasAccessSQL, userID, feature).Scan(&entitled)
	if err == pgx.ErrNoRows {
		return false, gofulfill.ErrNoResult
	}
	if err != nil {
		return false, fmt.Errorf("failed to check entitlement: %w", err)
	}
	return entitled, nil
}

// UpdatePlan implements gofulfill.Storage
func (s *Storage) UpdatePlan(ctx context.Context, userID, plan string) (int64, error) {
	tag, err := s.pool.Exec(ctx, s.updatePlanSQL, plan, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to update plan: %w", err)
	}
	return tag.RowsAffected(), nil
}
