package exercises

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/reprush/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// Filter narrows the catalog. Search matches name or category, case-insensitive.
type Filter struct {
	Category Category
	Search   string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListExercises returns the catalog entries matching filter, ordered by name.
func (r *Repo) ListExercises(ctx context.Context, filter Filter) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", string(filter.Category)))
	span.SetAttributes(attribute.String("search", filter.Search))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT id, name, category, difficulty, description, created_at
			FROM exercise
			WHERE ($1::text = '' OR category = $1)
			  AND ($2::text = ''
			       OR name ILIKE '%' || $2 || '%' ESCAPE '\'
			       OR category ILIKE '%' || $2 || '%' ESCAPE '\')
			ORDER BY name ASC, id ASC;`,
		string(filter.Category), escapeLike(strings.TrimSpace(filter.Search)),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	span.SetAttributes(attribute.Int("count", len(exercises)))

	return exercises, nil
}

func (r *Repo) GetExercise(ctx context.Context, id int) (_ Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var ex Exercise
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, name, category, difficulty, description, created_at
			FROM exercise
			WHERE id = $1;`,
		id,
	).Scan(&ex.ID, &ex.Name, &ex.Category, &ex.Difficulty, &ex.Description, &ex.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Exercise{}, ErrExerciseNotFound
	}
	if err != nil {
		return Exercise{}, fmt.Errorf("query row: %w", err)
	}

	return ex.Normalized(), nil
}

func (r *Repo) AddExercise(ctx context.Context, ex Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	ex = ex.Normalized()

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO exercise (name, category, difficulty, description)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at;`,
		ex.Name, string(ex.Category), string(ex.Difficulty), ex.Description,
	).Scan(&ex.ID, &ex.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	span.SetAttributes(attribute.Int("exercise.id", ex.ID))

	return &ex, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var ex Exercise
		if err := rows.Scan(&ex.ID, &ex.Name, &ex.Category, &ex.Difficulty, &ex.Description, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exercises = append(exercises, ex.Normalized())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
