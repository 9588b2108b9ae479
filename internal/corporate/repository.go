package corporate

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
	Create(ctx context.Context, c *CorporateClient) error
	GetByID(ctx context.Context, id string) (*CorporateClient, error)
	GetBySlug(ctx context.Context, slug string) (*CorporateClient, error)
	List(ctx context.Context, filter Filter) ([]*CorporateClient, int, error)
	Update(ctx context.Context, c *CorporateClient) error
	Delete(ctx context.Context, id string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var selectColumns = []string{
	"id", "name", "slug", "logo_url", "default_pickup", "default_dropoff",
	"status", "notes", "created_at", "updated_at",
}

func scanClient(row pgx.Row, extra ...any) (*CorporateClient, error) {
	var c CorporateClient
	dest := []any{
		&c.ID, &c.Name, &c.Slug, &c.LogoURL, &c.DefaultPickup, &c.DefaultDropoff,
		&c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *CorporateClient) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.corporate_clients").
		Columns("name", "slug", "logo_url", "default_pickup", "default_dropoff", "status", "notes").
		Values(c.Name, c.Slug, c.LogoURL, c.DefaultPickup, c.DefaultDropoff, c.Status, c.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create corporate client query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("create corporate client failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*CorporateClient, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.corporate_clients").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get corporate client query failed: %w", err)
	}

	c, err := scanClient(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get corporate client failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*CorporateClient, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) GetBySlug(ctx context.Context, slug string) (*CorporateClient, error) {
	return r.getOne(ctx, squirrel.Eq{"slug": slug})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*CorporateClient, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() AS total_count")...).
		From("public.corporate_clients")

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
		return nil, 0, fmt.Errorf("build list corporate clients query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list corporate clients failed: %w", err)
	}
	defer rows.Close()

	var clients []*CorporateClient
	var total int
	for rows.Next() {
		c, err := scanClient(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan corporate client failed: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate corporate clients failed: %w", err)
	}
	return clients, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *CorporateClient) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.corporate_clients").
		Set("name", c.Name).
		Set("slug", c.Slug).
		Set("logo_url", c.LogoURL).
		Set("default_pickup", c.DefaultPickup).
		Set("default_dropoff", c.DefaultDropoff).
		Set("status", c.Status).
		Set("notes", c.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update corporate client query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("update corporate client failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.corporate_clients").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete corporate client query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete corporate client failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
