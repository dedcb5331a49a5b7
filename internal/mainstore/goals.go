package mainstore

import (
	"context"
	"fmt"

	"github.com/ConaryLabs/mira/internal/mkerr"
)

// MaxBulkGoals caps a single bulk-create transaction, per spec §4.E.
const MaxBulkGoals = 100

// Goal is scoped strictly to a project.
type Goal struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description string
	Priority    int
	Status      string
	Milestones  []Milestone
}

// Milestone belongs to a goal, ordered by Sequence.
type Milestone struct {
	ID       int64
	GoalID   int64
	Sequence int
	Title    string
	Status   string
}

// NewGoalInput describes a goal to bulk-create.
type NewGoalInput struct {
	Title       string
	Description string
	Priority    int
	Milestones  []string
}

// BulkCreateGoals creates up to MaxBulkGoals goals (with their
// milestones) for a project in a single transaction.
func (s *Store) BulkCreateGoals(ctx context.Context, projectID int64, inputs []NewGoalInput) ([]int64, error) {
	if len(inputs) > MaxBulkGoals {
		return nil, mkerr.InvalidArgumentf("goal", "bulk_create", "goals", "bulk create capped at %d goals, got %d", MaxBulkGoals, len(inputs))
	}

	tx, err := s.pool.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO goals(project_id, title, description, priority) VALUES (?, ?, ?, ?)`,
			projectID, in.Title, in.Description, in.Priority)
		if err != nil {
			return nil, fmt.Errorf("insert goal %q: %w", in.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		for i, m := range in.Milestones {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO milestones(goal_id, sequence, title) VALUES (?, ?, ?)`, id, i+1, m); err != nil {
				return nil, fmt.Errorf("insert milestone %q: %w", m, err)
			}
		}
		ids = append(ids, id)
	}
	return ids, tx.Commit()
}

// ListGoals returns a project's goals ordered by numeric priority
// (descending), with milestones inline, per spec §4.E. allowCrossProject
// is always false for goals — spec §3.1: "cross-project access is
// fail-closed (returns nothing rather than leaking)".
func (s *Store) ListGoals(ctx context.Context, projectID int64) ([]Goal, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, project_id, title, description, priority, status FROM goals
		 WHERE project_id = ? ORDER BY priority DESC, id ASC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.ProjectID, &g.Title, &g.Description, &g.Priority, &g.Status); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		milestones, err := s.listMilestones(ctx, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].Milestones = milestones
	}
	return goals, nil
}

func (s *Store) listMilestones(ctx context.Context, goalID int64) ([]Milestone, error) {
	rows, err := s.pool.DB.QueryContext(ctx,
		`SELECT id, goal_id, sequence, title, status FROM milestones WHERE goal_id = ? ORDER BY sequence ASC`, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ms []Milestone
	for rows.Next() {
		var m Milestone
		if err := rows.Scan(&m.ID, &m.GoalID, &m.Sequence, &m.Title, &m.Status); err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}
