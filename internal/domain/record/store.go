package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perftrack/internal/domain/scope"
	"perftrack/internal/domain/scoring"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// applyScore is the write interceptor: every persisted record carries a final
// score freshly derived from its own fields, whether the write came from batch
// generation or a direct edit. No write path may bypass it.
func applyScore(rec *PerformanceRecord) {
	rec.FinalScore = scoring.Compute(rec.Inputs(), rec.Weights)
}

// Upsert inserts or fully replaces the record for (employee, period). This is
// the idempotency key of batch generation: committing the same selection twice
// leaves one record per employee with the second commit's values.
func (s *Store) Upsert(ctx context.Context, rec PerformanceRecord) (PerformanceRecord, error) {
	applyScore(&rec)
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_records
      (employee_id, branch_id, group_id, period,
       actual_attendance, required_attendance, annotation_score, onsite_performance,
       total_inspected, total_errors,
       deduction_points, deduction_reason, bonus_points, bonus_reason,
       weight_attendance, weight_annotation, weight_onsite, weight_accuracy,
       final_score)
    VALUES ($1, $2, NULLIF($3, '')::uuid, $4,
            $5, $6, $7, $8,
            $9, $10,
            $11, $12, $13, $14,
            $15, $16, $17, $18,
            $19)
    ON CONFLICT (employee_id, period)
    DO UPDATE SET branch_id = EXCLUDED.branch_id,
                  group_id = EXCLUDED.group_id,
                  actual_attendance = EXCLUDED.actual_attendance,
                  required_attendance = EXCLUDED.required_attendance,
                  annotation_score = EXCLUDED.annotation_score,
                  onsite_performance = EXCLUDED.onsite_performance,
                  total_inspected = EXCLUDED.total_inspected,
                  total_errors = EXCLUDED.total_errors,
                  deduction_points = EXCLUDED.deduction_points,
                  deduction_reason = EXCLUDED.deduction_reason,
                  bonus_points = EXCLUDED.bonus_points,
                  bonus_reason = EXCLUDED.bonus_reason,
                  weight_attendance = EXCLUDED.weight_attendance,
                  weight_annotation = EXCLUDED.weight_annotation,
                  weight_onsite = EXCLUDED.weight_onsite,
                  weight_accuracy = EXCLUDED.weight_accuracy,
                  final_score = EXCLUDED.final_score,
                  updated_at = now()
    RETURNING id
  `,
		rec.EmployeeID, rec.BranchID, rec.GroupID, rec.Period,
		rec.ActualAttendance, rec.RequiredAttendance, rec.AnnotationScore, rec.OnsitePerformance,
		rec.TotalInspected, rec.TotalErrors,
		rec.DeductionPoints, rec.DeductionReason, rec.BonusPoints, rec.BonusReason,
		rec.Weights.Attendance, rec.Weights.Annotation, rec.Weights.Onsite, rec.Weights.Accuracy,
		rec.FinalScore,
	).Scan(&rec.ID)
	if err != nil {
		return PerformanceRecord{}, err
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, sc scope.Scope, recordID string) (*PerformanceRecord, error) {
	query := `
    SELECT r.id, r.employee_id, u.name, r.branch_id, COALESCE(r.group_id::text, ''), r.period,
           r.actual_attendance, r.required_attendance, r.annotation_score, r.onsite_performance,
           r.total_inspected, r.total_errors,
           r.deduction_points, r.deduction_reason, r.bonus_points, r.bonus_reason,
           r.weight_attendance, r.weight_annotation, r.weight_onsite, r.weight_accuracy,
           COALESCE(r.final_score, 0), r.updated_at
    FROM performance_records r
    JOIN users u ON u.id = r.employee_id
    WHERE r.id = $1`
	args := []any{recordID}
	clause, clauseArgs, err := sc.Filter("r.branch_id", "r.employee_id", 2)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}

	var rec PerformanceRecord
	err = s.DB.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.BranchID, &rec.GroupID, &rec.Period,
		&rec.ActualAttendance, &rec.RequiredAttendance, &rec.AnnotationScore, &rec.OnsitePerformance,
		&rec.TotalInspected, &rec.TotalErrors,
		&rec.DeductionPoints, &rec.DeductionReason, &rec.BonusPoints, &rec.BonusReason,
		&rec.Weights.Attendance, &rec.Weights.Annotation, &rec.Weights.Onsite, &rec.Weights.Accuracy,
		&rec.FinalScore, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) List(ctx context.Context, sc scope.Scope, branchID, groupID, period string) ([]PerformanceRecord, error) {
	query := `
    SELECT r.id, r.employee_id, u.name, r.branch_id, COALESCE(r.group_id::text, ''), r.period,
           r.actual_attendance, r.required_attendance, r.annotation_score, r.onsite_performance,
           r.total_inspected, r.total_errors,
           r.deduction_points, r.deduction_reason, r.bonus_points, r.bonus_reason,
           r.weight_attendance, r.weight_annotation, r.weight_onsite, r.weight_accuracy,
           COALESCE(r.final_score, 0), r.updated_at
    FROM performance_records r
    JOIN users u ON u.id = r.employee_id
    WHERE 1=1`
	var args []any
	next := 1
	if branchID != "" {
		query += fmt.Sprintf(" AND r.branch_id = $%d", next)
		args = append(args, branchID)
		next++
	}
	if groupID != "" {
		query += fmt.Sprintf(" AND r.group_id = $%d", next)
		args = append(args, groupID)
		next++
	}
	if period != "" {
		query += fmt.Sprintf(" AND r.period = $%d", next)
		args = append(args, period)
		next++
	}
	clause, clauseArgs, err := sc.Filter("r.branch_id", "r.employee_id", next)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		query += " AND " + clause
		args = append(args, clauseArgs...)
	}
	query += " ORDER BY r.period DESC, r.final_score DESC NULLS LAST, u.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PerformanceRecord
	for rows.Next() {
		var rec PerformanceRecord
		if err := rows.Scan(
			&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.BranchID, &rec.GroupID, &rec.Period,
			&rec.ActualAttendance, &rec.RequiredAttendance, &rec.AnnotationScore, &rec.OnsitePerformance,
			&rec.TotalInspected, &rec.TotalErrors,
			&rec.DeductionPoints, &rec.DeductionReason, &rec.BonusPoints, &rec.BonusReason,
			&rec.Weights.Attendance, &rec.Weights.Annotation, &rec.Weights.Onsite, &rec.Weights.Accuracy,
			&rec.FinalScore, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update rewrites an existing record's scoring inputs. The score is recomputed
// through the same interceptor as Upsert, so edits outside the generation flow
// can never leave a stale final score behind.
func (s *Store) Update(ctx context.Context, rec PerformanceRecord) (PerformanceRecord, error) {
	applyScore(&rec)
	cmd, err := s.DB.Exec(ctx, `
    UPDATE performance_records
    SET actual_attendance = $1,
        required_attendance = $2,
        annotation_score = $3,
        onsite_performance = $4,
        total_inspected = $5,
        total_errors = $6,
        deduction_points = $7,
        deduction_reason = $8,
        bonus_points = $9,
        bonus_reason = $10,
        weight_attendance = $11,
        weight_annotation = $12,
        weight_onsite = $13,
        weight_accuracy = $14,
        final_score = $15,
        updated_at = now()
    WHERE id = $16
  `,
		rec.ActualAttendance, rec.RequiredAttendance, rec.AnnotationScore, rec.OnsitePerformance,
		rec.TotalInspected, rec.TotalErrors,
		rec.DeductionPoints, rec.DeductionReason, rec.BonusPoints, rec.BonusReason,
		rec.Weights.Attendance, rec.Weights.Annotation, rec.Weights.Onsite, rec.Weights.Accuracy,
		rec.FinalScore, rec.ID,
	)
	if err != nil {
		return PerformanceRecord{}, err
	}
	if cmd.RowsAffected() == 0 {
		return PerformanceRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *Store) Delete(ctx context.Context, recordID string) error {
	cmd, err := s.DB.Exec(ctx, "DELETE FROM performance_records WHERE id = $1", recordID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}
