package inspection

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"perftrack/internal/domain/scope"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// UpsertAggregate replaces the stored counts for the (employee, date, batch)
// key. Within one import rows are summed first, so re-importing a corrected
// file overwrites the previous aggregate instead of inflating it.
func (s *Store) UpsertAggregate(ctx context.Context, agg Aggregate) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO quality_inspections
      (employee_id, branch_id, inspect_date, topic, batch_name, inspected_count, error_count)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (employee_id, inspect_date, batch_name)
    DO UPDATE SET topic = EXCLUDED.topic,
                  branch_id = EXCLUDED.branch_id,
                  inspected_count = EXCLUDED.inspected_count,
                  error_count = EXCLUDED.error_count,
                  updated_at = now()
  `, agg.EmployeeID, agg.BranchID, agg.Date, agg.Topic, agg.BatchName, agg.InspectedCount, agg.ErrorCount)
	return err
}

func (s *Store) TotalsForRange(ctx context.Context, employeeIDs []string, start, end time.Time) (map[string]Totals, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id, COALESCE(SUM(inspected_count), 0), COALESCE(SUM(error_count), 0)
    FROM quality_inspections
    WHERE employee_id = ANY($1) AND inspect_date BETWEEN $2 AND $3
    GROUP BY employee_id
  `, employeeIDs, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]Totals, len(employeeIDs))
	for rows.Next() {
		var id string
		var t Totals
		if err := rows.Scan(&id, &t.Inspected, &t.Errors); err != nil {
			return nil, err
		}
		totals[id] = t
	}
	return totals, rows.Err()
}

func (s *Store) List(ctx context.Context, sc scope.Scope, branchID string, start, end time.Time) ([]Aggregate, error) {
	query := `
    SELECT q.id, q.employee_id, u.name, q.branch_id, q.inspect_date,
           q.topic, q.batch_name, q.inspected_count, q.error_count
    FROM quality_inspections q
    JOIN users u ON u.id = q.employee_id
    WHERE q.inspect_date BETWEEN $1 AND $2`
	args := []any{start, end}
	next := 3
	if branchID != "" {
		query += fmt.Sprintf(" AND q.branch_id = $%d", next)
		args = append(args, branchID)
		next++
	}
	clause, clauseArgs, err := sc.Filter("q.branch_id", "q.employee_id", next)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}
	query += " ORDER BY q.inspect_date, u.name, q.batch_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Aggregate
	for rows.Next() {
		var a Aggregate
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.EmployeeName, &a.BranchID, &a.Date,
			&a.Topic, &a.BatchName, &a.InspectedCount, &a.ErrorCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
