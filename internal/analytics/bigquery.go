// Package analytics exports computed metrics snapshots to BigQuery and
// reads them back as monthly history. The export path is asynchronous:
// snapshots arrive through the jobs queue, so a BigQuery outage degrades to
// retries instead of failed saves.
package analytics

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/agusantonetti/smartmoney/internal/jobs"
)

const snapshotsTable = "metric_snapshots"

// MetricsRow is one exported snapshot in the metric_snapshots table.
type MetricsRow struct {
	UserID       string     `bigquery:"user_id"`
	SnapshotTS   time.Time  `bigquery:"snapshot_ts"`
	SnapshotDate civil.Date `bigquery:"snapshot_date"`

	Income            float64 `bigquery:"income"`
	Expense           float64 `bigquery:"expense"`
	Balance           float64 `bigquery:"balance"`
	SalaryPaid        float64 `bigquery:"salary_paid"`
	TotalReserved     float64 `bigquery:"total_reserved"`
	FixedExpenses     float64 `bigquery:"fixed_expenses"`
	TotalDebt         float64 `bigquery:"total_debt"`
	AvgMonthlyExpense float64 `bigquery:"avg_monthly_expense"`
	LiquidAssets      float64 `bigquery:"liquid_assets"`
	Runway            float64 `bigquery:"runway"`
	HealthScore       float64 `bigquery:"health_score"`
}

// MonthlyPoint is one month of aggregated snapshot history.
type MonthlyPoint struct {
	Month          string  `bigquery:"month" json:"month"`
	AvgBalance     float64 `bigquery:"avg_balance" json:"avgBalance"`
	AvgHealthScore float64 `bigquery:"avg_health_score" json:"avgHealthScore"`
	LastRunway     float64 `bigquery:"last_runway" json:"lastRunway"`
}

// Exporter writes snapshot rows and serves history queries.
type Exporter struct {
	client  *bigquery.Client
	project string
	dataset string
	log     zerolog.Logger
}

// NewExporter creates an Exporter on the given project and dataset.
func NewExporter(ctx context.Context, project, dataset string, log zerolog.Logger) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("analytics: bigquery client: %w", err)
	}
	return &Exporter{client: client, project: project, dataset: dataset, log: log}, nil
}

// ExportSnapshot inserts one snapshot row.
func (e *Exporter) ExportSnapshot(ctx context.Context, userID string, ts time.Time, row MetricsRow) error {
	row.UserID = userID
	row.SnapshotTS = ts
	row.SnapshotDate = civil.DateOf(ts)

	table := e.client.DatasetInProject(e.project, e.dataset).Table(snapshotsTable)
	if err := table.Inserter().Put(ctx, []*MetricsRow{&row}); err != nil {
		return fmt.Errorf("analytics: insert snapshot for %s: %w", userID, err)
	}

	e.log.Debug().Str("user_id", userID).Time("snapshot_ts", ts).Msg("Snapshot exported")
	return nil
}

// HandleJob adapts the exporter to the jobs queue.
func (e *Exporter) HandleJob(ctx context.Context, job jobs.Job) error {
	snap, ok := job.(*jobs.ExportSnapshotJob)
	if !ok {
		return fmt.Errorf("analytics: unexpected job type %s", job.GetType())
	}

	m := snap.Metrics
	return e.ExportSnapshot(ctx, snap.UserID, snap.SnapshotTS, MetricsRow{
		Income:            m.Income,
		Expense:           m.Expense,
		Balance:           m.Balance,
		SalaryPaid:        m.SalaryPaid,
		TotalReserved:     m.TotalReserved,
		FixedExpenses:     m.FixedExpenses,
		TotalDebt:         m.TotalDebt,
		AvgMonthlyExpense: m.AvgMonthlyExpense,
		LiquidAssets:      m.LiquidAssets,
		Runway:            m.Runway,
		HealthScore:       m.HealthScore,
	})
}

// MonthlyHistory returns per-month aggregates of the user's snapshots for
// the last `months` months, oldest first.
func (e *Exporter) MonthlyHistory(ctx context.Context, userID string, months int) ([]*MonthlyPoint, error) {
	q := e.client.Query(fmt.Sprintf(`
		SELECT
			FORMAT_DATE('%%Y-%%m', snapshot_date) AS month,
			AVG(balance) AS avg_balance,
			AVG(health_score) AS avg_health_score,
			ARRAY_AGG(runway ORDER BY snapshot_ts DESC LIMIT 1)[OFFSET(0)] AS last_runway
		FROM %s.%s
		WHERE user_id = @user_id
		  AND snapshot_date >= DATE_SUB(CURRENT_DATE(), INTERVAL @months MONTH)
		GROUP BY month
		ORDER BY month
	`, e.dataset, snapshotsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "months", Value: months},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: history query for %s: %w", userID, err)
	}

	var points []*MonthlyPoint
	for {
		var p MonthlyPoint
		err := it.Next(&p)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("analytics: history scan for %s: %w", userID, err)
		}
		points = append(points, &p)
	}
	return points, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}
