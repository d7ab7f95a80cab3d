package postgres

import (
	"fmt"
	"strings"

	"github.com/phrazzld/tasks-api/internal/store"
)

// sortExpressions maps whitelisted sort fields to SQL. Only values from this
// map are ever interpolated into a statement.
var sortExpressions = map[store.SortField]string{
	store.SortByCreatedAt: "t.created_at",
	store.SortByUpdatedAt: "t.updated_at",
	store.SortByTitle:     "t.title",
	store.SortByStatus:    "CASE t.status WHEN 'OPEN' THEN 0 WHEN 'IN_PROGRESS' THEN 1 WHEN 'DONE' THEN 2 END",
}

// taskListQuery is the SQL rendering of a store.TaskQuery.
type taskListQuery struct {
	countSQL  string
	countArgs []any
	pageSQL   string
	pageArgs  []any
}

// escapeLike escapes the LIKE wildcards in s so it matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// buildTaskListQuery renders q as a COUNT statement and a page statement
// sharing one WHERE clause. The owner constraint is always the first
// condition. Every value is a bound parameter.
func buildTaskListQuery(q store.TaskQuery) (taskListQuery, error) {
	orderExpr, ok := sortExpressions[q.Sort.Field]
	if !ok {
		return taskListQuery{}, fmt.Errorf("unsupported sort field %q", q.Sort.Field)
	}
	direction := "DESC"
	switch q.Sort.Direction {
	case store.SortAsc:
		direction = "ASC"
	case store.SortDesc:
	default:
		return taskListQuery{}, fmt.Errorf("unsupported sort direction %q", q.Sort.Direction)
	}

	args := []any{q.OwnerID}
	conditions := []string{"t.user_id = $1"}

	if q.Filter.Status != nil {
		args = append(args, string(*q.Filter.Status))
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}

	if q.Filter.Search != "" {
		args = append(args, "%"+escapeLike(q.Filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			`(t.title ILIKE $%d ESCAPE '\' OR t.description ILIKE $%d ESCAPE '\')`, n, n))
	}

	if len(q.Filter.Labels) > 0 {
		args = append(args, q.Filter.Labels)
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM task_labels l WHERE l.task_id = t.id AND l.name = ANY($%d))", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countSQL := "SELECT COUNT(*) FROM tasks t WHERE " + where

	pageArgs := make([]any, len(args), len(args)+2)
	copy(pageArgs, args)
	pageArgs = append(pageArgs, q.Pagination.Limit, q.Pagination.Offset)

	pageSQL := fmt.Sprintf(
		"SELECT t.id, t.user_id, t.title, t.description, t.status, t.version, t.created_at, t.updated_at"+
			" FROM tasks t WHERE %s ORDER BY %s %s, t.id ASC LIMIT $%d OFFSET $%d",
		where, orderExpr, direction, len(pageArgs)-1, len(pageArgs),
	)

	return taskListQuery{
		countSQL:  countSQL,
		countArgs: args,
		pageSQL:   pageSQL,
		pageArgs:  pageArgs,
	}, nil
}
