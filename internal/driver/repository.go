package driver

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
	Create(ctx context.Context, d *Driver) error
	GetByID(ctx context.Context, id string) (*Driver, error)
	List(ctx context.Context, filter Filter) ([]*Driver, int, error)
	Update(ctx context.Context, d *Driver) error
	// SetCalendar stores the calendar id and clears any previous calendar error.
	SetCalendar(ctx context.Context, id, calendarID string) error
	SetCalendarError(ctx context.Context, id, message string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var selectColumns = []string{
	"id", "name", "phone", "email", "status", "image_url", "notes",
	"COALESCE(calendar_id, '')", "COALESCE(calendar_status, '')", "calendar_error", "calendar_created_at",
	"created_at", "updated_at",
}

func scanDriver(row pgx.Row, extra ...any) (*Driver, error) {
	var d Driver
	dest := []any{
		&d.ID, &d.Name, &d.Phone, &d.Email, &d.Status, &d.ImageURL, &d.Notes,
		&d.CalendarID, &d.CalendarStatus, &d.CalendarError, &d.CalendarCreatedAt,
		&d.CreatedAt, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *pgxRepository) Create(ctx context.Context, d *Driver) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.drivers").
		Columns("name", "phone", "email", "status", "image_url", "notes").
		Values(d.Name, d.Phone, d.Email, d.Status, d.ImageURL, d.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create driver query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return fmt.Errorf("create driver failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Driver, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.drivers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get driver query failed: %w", err)
	}

	d, err := scanDriver(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get driver failed: %w", err)
	}
	return d, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Driver, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() AS total_count")...).
		From("public.drivers")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("name "+orderDir, "id")

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
		return nil, 0, fmt.Errorf("build list drivers query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list drivers failed: %w", err)
	}
	defer rows.Close()

	var drivers []*Driver
	var total int
	for rows.Next() {
		d, err := scanDriver(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan driver failed: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate drivers failed: %w", err)
	}

	return drivers, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, d *Driver) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.drivers").
		Set("name", d.Name).
		Set("phone", d.Phone).
		Set("email", d.Email).
		Set("status", d.Status).
		Set("image_url", d.ImageURL).
		Set("notes", d.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": d.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update driver query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update driver failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetCalendar(ctx context.Context, id, calendarID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.drivers").
		Set("calendar_id", calendarID).
		Set("calendar_status", string(CalendarOK)).
		Set("calendar_error", "").
		Set("calendar_created_at", squirrel.Expr("now()")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set driver calendar query failed: %w", err)
	}
	return r.exec(ctx, query, args, "set driver calendar")
}

func (r *pgxRepository) SetCalendarError(ctx context.Context, id, message string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.drivers").
		Set("calendar_status", string(CalendarError)).
		Set("calendar_error", message).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set driver calendar error query failed: %w", err)
	}
	return r.exec(ctx, query, args, "set driver calendar error")
}

func (r *pgxRepository) exec(ctx context.Context, query string, args []any, op string) error {
	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
