package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, b *Bus) error
	GetByID(ctx context.Context, id string) (*Bus, error)
	List(ctx context.Context, filter Filter) ([]*Bus, int, error)
	Update(ctx context.Context, b *Bus) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var selectColumns = []string{
	"id", "name", "capacity", "status", "color", "features",
	"starting_price", "image_url", "notes", "created_at", "updated_at",
}

func scanBus(row pgx.Row, extra ...any) (*Bus, error) {
	var b Bus
	dest := []any{
		&b.ID, &b.Name, &b.Capacity, &b.Status, &b.Color, &b.Features,
		&b.StartingPrice, &b.ImageURL, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func features(f []string) []string {
	if f == nil {
		return []string{}
	}
	return f
}

func (r *pgxRepository) Create(ctx context.Context, b *Bus) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.buses").
		Columns("name", "capacity", "status", "color", "features", "starting_price", "image_url", "notes").
		Values(b.Name, b.Capacity, b.Status, b.Color, features(b.Features), b.StartingPrice, b.ImageURL, b.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create bus query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create bus failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Bus, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.buses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get bus query failed: %w", err)
	}

	b, err := scanBus(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bus failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Bus, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() AS total_count")...).
		From("public.buses")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("name " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list buses query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list buses failed: %w", err)
	}
	defer rows.Close()

	var buses []*Bus
	var total int
	for rows.Next() {
		b, err := scanBus(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bus failed: %w", err)
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate buses failed: %w", err)
	}
	return buses, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Bus) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.buses").
		Set("name", b.Name).
		Set("capacity", b.Capacity).
		Set("status", b.Status).
		Set("color", b.Color).
		Set("features", features(b.Features)).
		Set("starting_price", b.StartingPrice).
		Set("image_url", b.ImageURL).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update bus query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update bus failed: %w", err)
	}
	return nil
}
