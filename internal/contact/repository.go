package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
)

type Repository interface {
	Create(ctx context.Context, c *Contact) error
	// CreateIfAbsent inserts c unless a contact already holds its email, and
	// reports whether it did. It never fails on the email constraint, so it is
	// safe inside a transaction.
	CreateIfAbsent(ctx context.Context, c *Contact) (bool, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	// FindByEmail returns ErrNotFound when no contact has exactly this email.
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	List(ctx context.Context, filter Filter) ([]*Contact, int, error)
	Update(ctx context.Context, c *Contact) error
	Delete(ctx context.Context, id string) error
	// UnlinkCorporateClient clears the corporate link of every contact of the client.
	UnlinkCorporateClient(ctx context.Context, corporateClientID string) (int64, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var selectColumns = []string{
	"c.id", "c.name", "COALESCE(c.email, '')", "c.phone",
	"COALESCE(c.corporate_client_id::text, '')", "COALESCE(cc.name, '')",
	"c.source", "c.notes", "c.created_at", "c.updated_at",
}

func scanContact(row pgx.Row, extra ...any) (*Contact, error) {
	var c Contact
	dest := []any{
		&c.ID, &c.Name, &c.Email, &c.Phone,
		&c.CorporateClientID, &c.CompanyName,
		&c.Source, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrEmailAlreadyUsed
	}
	if _, ok := db.ConstraintViolation(err, pgerrcode.ForeignKeyViolation); ok {
		return ErrCorporateMissing
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, c *Contact) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.contacts").
		Columns("name", "email", "phone", "corporate_client_id", "source", "notes").
		Values(c.Name, db.NullString(c.Email), c.Phone, db.NullString(c.CorporateClientID), c.Source, c.Notes).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create contact query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create contact failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) CreateIfAbsent(ctx context.Context, c *Contact) (bool, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.contacts").
		Columns("name", "email", "phone", "corporate_client_id", "source", "notes").
		Values(c.Name, db.NullString(c.Email), c.Phone, db.NullString(c.CorporateClientID), c.Source, c.Notes).
		Suffix("ON CONFLICT (email) DO NOTHING RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build create contact query failed: %w", err)
	}

	err = db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	}
	if mapped := mapWriteError(err); mapped != err {
		return false, mapped
	}
	return false, fmt.Errorf("create contact failed: %w", err)
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*Contact, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(selectColumns...).
		From("public.contacts c").
		LeftJoin("public.corporate_clients cc ON c.corporate_client_id = cc.id").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get contact query failed: %w", err)
	}

	c, err := scanContact(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get contact failed: %w", err)
	}
	return c, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Contact, error) {
	return r.getOne(ctx, squirrel.Eq{"c.id": id})
}

func (r *pgxRepository) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	return r.getOne(ctx, squirrel.Eq{"c.email": email})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Contact, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(append(selectColumns, "count(*) OVER() AS total_count")...).
		From("public.contacts c").
		LeftJoin("public.corporate_clients cc ON c.corporate_client_id = cc.id")

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"c.name": pattern},
			squirrel.ILike{"c.email": pattern},
			squirrel.ILike{"c.phone": pattern},
		})
	}
	if filter.CorporateClientID != "" {
		query = query.Where(squirrel.Eq{"c.corporate_client_id": filter.CorporateClientID})
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("c.name "+orderDir, "c.id")

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
		return nil, 0, fmt.Errorf("build list contacts query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts failed: %w", err)
	}
	defer rows.Close()

	var contacts []*Contact
	var total int
	for rows.Next() {
		c, err := scanContact(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan contact failed: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate contacts failed: %w", err)
	}

	return contacts, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, c *Contact) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.contacts").
		Set("name", c.Name).
		Set("email", db.NullString(c.Email)).
		Set("phone", c.Phone).
		Set("corporate_client_id", db.NullString(c.CorporateClientID)).
		Set("source", c.Source).
		Set("notes", c.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update contact query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update contact failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.contacts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete contact query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete contact failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UnlinkCorporateClient(ctx context.Context, corporateClientID string) (int64, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.contacts").
		Set("corporate_client_id", nil).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"corporate_client_id": corporateClientID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build unlink contacts query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("unlink contacts failed: %w", err)
	}
	return ct.RowsAffected(), nil
}
