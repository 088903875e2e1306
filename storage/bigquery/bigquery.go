// Package bigquery provides a BigQuery implementation of the gofulfill.Storage interface.
// Entitlements are read from a wide report_plan table (one boolean column per plan)
// that is unpivoted at query time and joined against the user_map table.
package bigquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/mihaimyh/gofulfill/pkg/gofulfill"
)

var (
	projectPattern    = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.:_-]*$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Storage implements gofulfill.Storage using Google BigQuery
type Storage struct {
	client        *bigquery.Client
	location      string
	hasAccessSQL  string
	updatePlanSQL string
}

// Config holds BigQuery storage configuration
type Config struct {
	// ProjectID owning the dataset (required)
	ProjectID string

	// DatasetID holding the user and entitlement tables
	// Default: "client_data"
	DatasetID string

	// UserTable maps User_ID to Plan
	// Default: "user_map"
	UserTable string

	// EntitlementTable has a Reports_Services column and one BOOL column per plan
	// Default: "report_plan"
	EntitlementTable string

	// Plans lists the plan columns of EntitlementTable
	// Default: Bronze, Silver, Gold
	Plans []string

	// Location is the job location, e.g. "EU"
	// If empty, BigQuery infers it from the dataset
	Location string
}

// DefaultPlans are the plan columns used when Config.Plans is empty
var DefaultPlans = []string{"Bronze", "Silver", "Gold"}

func (c *Config) setDefaults() {
	if c.DatasetID == "" {
		c.DatasetID = "client_data"
	}
	if c.UserTable == "" {
		c.UserTable = "user_map"
	}
	if c.EntitlementTable == "" {
		c.EntitlementTable = "report_plan"
	}
	if len(c.Plans) == 0 {
		c.Plans = DefaultPlans
	}
}

// validate checks that every name placed into query text is a plain identifier
func (c *Config) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project ID is required")
	}
	if !projectPattern.MatchString(c.ProjectID) {
		return fmt.Errorf("invalid project ID %q", c.ProjectID)
	}
	for _, name := range []string{c.DatasetID, c.UserTable, c.EntitlementTable} {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid identifier %q", name)
		}
	}
	for _, plan := range c.Plans {
		if !identifierPattern.MatchString(plan) {
			return fmt.Errorf("invalid plan column %q", plan)
		}
	}
	return nil
}

// New creates a new BigQuery storage adapter
func New(client *bigquery.Client, config Config) (*Storage, error) {
	if client == nil {
		return nil, fmt.Errorf("bigquery client is required")
	}

	hasAccessSQL, err := EntitlementQuery(config)
	if err != nil {
		return nil, err
	}
	updatePlanSQL, err := UpdatePlanQuery(config)
	if err != nil {
		return nil, err
	}

	return &Storage{
		client:        client,
		location:      config.Location,
		hasAccessSQL:  hasAccessSQL,
		updatePlanSQL: updatePlanSQL,
	}, nil
}

// EntitlementQuery builds the existence query used by HasAccess.
// It takes the @user_id and @requested_feature parameters and yields a single
// BOOL column named entitled.
func EntitlementQuery(config Config) (string, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf(`WITH Entitlements AS (
  SELECT Reports_Services, Plan
  FROM %s
  UNPIVOT(HasAccess FOR Plan IN (%s))
  WHERE HasAccess IS TRUE
)
SELECT EXISTS (
  SELECT 1
  FROM %s um
  JOIN Entitlements e ON um.Plan = e.Plan
  WHERE um.User_ID = @user_id AND e.Reports_Services = @requested_feature
) AS entitled`,
		tableRef(config, config.EntitlementTable),
		strings.Join(config.Plans, ", "),
		tableRef(config, config.UserTable),
	), nil
}

// UpdatePlanQuery builds the DML statement used by UpdatePlan.
// It takes the @new_plan and @user_id parameters.
func UpdatePlanQuery(config Config) (string, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return "", err
	}

	return fmt.Sprintf(`UPDATE %s
SET Plan = @new_plan
WHERE User_ID = @user_id`, tableRef(config, config.UserTable)), nil
}

func tableRef(config Config, table string) string {
	return "`" + config.ProjectID + "." + config.DatasetID + "." + table + "`"
}

type entitlementRow struct {
	Entitled bool `bigquery:"entitled"`
}

// HasAccess implements gofulfill.Storage
func (s *Storage) HasAccess(ctx context.Context, userID, feature string) (bool, error) {
	q := s.client.Query(s.hasAccessSQL)
	q.Location = s.location
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "requested_feature", Value: feature},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to run entitlement query: %w", err)
	}

	var row entitlementRow
	err = it.Next(&row)
	if err == iterator.Done {
		return false, gofulfill.ErrNoResult
	}
	if err != nil {
		return false, fmt.Errorf("failed to read entitlement row: %w", err)
	}

	return row.Entitled, nil
}

// UpdatePlan implements gofulfill.Storage
func (s *Storage) UpdatePlan(ctx context.Context, userID, plan string) (int64, error) {
	q := s.client.Query(s.updatePlanSQL)
	q.Location = s.location
	q.Parameters = []bigquery.QueryParameter{
		{Name: "new_plan", Value: plan},
		{Name: "user_id", Value: userID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start plan update: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to wait for plan update: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("plan update failed: %w", err)
	}

	if status.Statistics == nil {
		return 0, fmt.Errorf("plan update returned no statistics")
	}
	stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics)
	if !ok {
		return 0, fmt.Errorf("plan update returned no query statistics")
	}

	return stats.NumDMLAffectedRows, nil
}
