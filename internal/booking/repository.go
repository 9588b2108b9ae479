package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
)

type Repository interface {
	ScheduleReader

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// Update writes every mutable field of b. Overlapping confirmed bookings
	// rejected by the database map to ErrVehicleConflict or ErrDriverConflict.
	Update(ctx context.Context, b *Booking) error

	// SetCalendarEvent records the outcome of a calendar operation. An empty eventID keeps the stored one.
	SetCalendarEvent(ctx context.Context, bookingID, eventID string, status SyncStatus, at time.Time) error
	// SetStaleEvent records an event left behind on driverID's calendar. Empty ids clear it.
	SetStaleEvent(ctx context.Context, bookingID, eventID, driverID string) error
	// FindRecentPendingExpress returns the latest pending express booking of the
	// contact starting at or after since, or ErrNotFound.
	FindRecentPendingExpress(ctx context.Context, contactID string, since time.Time) (*Booking, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var selectColumns = []string{
	"b.id", "b.bus_id", "bu.name",
	"COALESCE(b.driver_id::text, '')", "COALESCE(d.name, '')",
	"b.contact_id", "COALESCE(c.name, '')", "COALESCE(c.email, '')", "COALESCE(c.phone, '')",
	"COALESCE(b.corporate_client_id::text, '')",
	"b.start_time", "b.end_time", "b.pickup_location", "b.dropoff_location", "b.passenger_count",
	"b.status", "b.booking_type", "b.booking_source", "b.occasion", "b.quote_amount",
	"b.payment_status", "b.payment_reference", "b.notes",
	"COALESCE(b.calendar_event_id, '')", "COALESCE(b.event_sync_status, '')", "b.event_last_sync",
	"COALESCE(b.stale_event_id, '')", "COALESCE(b.stale_event_driver_id::text, '')",
	"b.created_at", "b.updated_at",
}

// baseSelect joins the names shown alongside a booking. Contacts may have been
// deleted, so the contact join is an outer one.
func baseSelect(psql squirrel.StatementBuilderType, extra ...string) squirrel.SelectBuilder {
	return psql.Select(append(selectColumns, extra...)...).
		From("public.bookings b").
		Join("public.buses bu ON b.bus_id = bu.id").
		LeftJoin("public.drivers d ON b.driver_id = d.id").
		LeftJoin("public.contacts c ON b.contact_id = c.id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := []any{
		&b.ID, &b.BusID, &b.BusName,
		&b.DriverID, &b.DriverName,
		&b.ContactID, &b.ContactName, &b.ContactEmail, &b.ContactPhone,
		&b.CorporateClientID,
		&b.StartTime, &b.EndTime, &b.PickupLocation, &b.DropoffLocation, &b.PassengerCount,
		&b.Status, &b.BookingType, &b.BookingSource, &b.Occasion, &b.QuoteAmount,
		&b.PaymentStatus, &b.PaymentReference, &b.Notes,
		&b.CalendarEventID, &b.EventSyncStatus, &b.EventLastSync,
		&b.StaleEventID, &b.StaleEventDriverID,
		&b.CreatedAt, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func mapWriteError(err error) error {
	if name, ok := db.ConstraintViolation(err, pgerrcode.ExclusionViolation); ok {
		switch name {
		case "bookings_bus_no_overlap":
			return ErrVehicleConflict
		case "bookings_driver_no_overlap":
			return ErrDriverConflict
		}
	}
	if name, ok := db.ConstraintViolation(err, pgerrcode.ForeignKeyViolation); ok {
		switch name {
		case "bookings_bus_id_fkey":
			return ErrBusNotFound
		case "bookings_driver_id_fkey":
			return ErrDriverNotFound
		}
	}
	if name, ok := db.ConstraintViolation(err, pgerrcode.CheckViolation); ok {
		switch name {
		case "bookings_time_range_chk":
			return ErrInvalidTimeRange
		case "bookings_passenger_count_check":
			return ErrInvalidPassengerCount
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.bookings").
		Columns(
			"bus_id", "driver_id", "contact_id", "corporate_client_id",
			"start_time", "end_time", "pickup_location", "dropoff_location", "passenger_count",
			"status", "booking_type", "booking_source", "occasion", "quote_amount",
			"payment_status", "payment_reference", "notes",
		).
		Values(
			b.BusID, db.NullString(b.DriverID), b.ContactID, db.NullString(b.CorporateClientID),
			b.StartTime, b.EndTime, b.PickupLocation, b.DropoffLocation, b.PassengerCount,
			b.Status, b.BookingType, b.BookingSource, b.Occasion, b.QuoteAmount,
			b.PaymentStatus, b.PaymentReference, b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := baseSelect(psql).
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := baseSelect(psql, "count(*) OVER() AS total_count")

	if filter.BusID != "" {
		query = query.Where(squirrel.Eq{"b.bus_id": filter.BusID})
	}
	if filter.DriverID != "" {
		query = query.Where(squirrel.Eq{"b.driver_id": filter.DriverID})
	}
	if filter.ContactID != "" {
		query = query.Where(squirrel.Eq{"b.contact_id": filter.ContactID})
	}
	if filter.CorporateClientID != "" {
		query = query.Where(squirrel.Eq{"b.corporate_client_id": filter.CorporateClientID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_time": *filter.To})
	}

	orderDir := "ASC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy("b.start_time "+orderDir, "b.id")

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
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	var total int
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListConfirmed(ctx context.Context, resource Resource, resourceID string, from, to time.Time) ([]*Booking, error) {
	column := "b.bus_id"
	if resource == ResourceDriver {
		column = "b.driver_id"
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := baseSelect(psql).
		Where(squirrel.Eq{column: resourceID}).
		Where(squirrel.Eq{"b.status": StatusConfirmed})
	if !from.IsZero() {
		query = query.Where(squirrel.Gt{"b.end_time": from})
	}
	if !to.IsZero() {
		query = query.Where(squirrel.Lt{"b.start_time": to})
	}

	sql, args, err := query.OrderBy("b.start_time ASC", "b.id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list confirmed bookings query failed: %w", err)
	}

	rows, err := db.Executor(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate confirmed bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) Update(ctx context.Context, b *Booking) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("driver_id", db.NullString(b.DriverID)).
		Set("start_time", b.StartTime).
		Set("end_time", b.EndTime).
		Set("pickup_location", b.PickupLocation).
		Set("dropoff_location", b.DropoffLocation).
		Set("passenger_count", b.PassengerCount).
		Set("status", b.Status).
		Set("booking_source", b.BookingSource).
		Set("occasion", b.Occasion).
		Set("quote_amount", b.QuoteAmount).
		Set("payment_status", b.PaymentStatus).
		Set("payment_reference", b.PaymentReference).
		Set("notes", b.Notes).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": b.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	if err := db.Executor(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update booking failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) SetStaleEvent(ctx context.Context, bookingID, eventID, driverID string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.bookings").
		Set("stale_event_id", db.NullString(eventID)).
		Set("stale_event_driver_id", db.NullString(driverID)).
		Where(squirrel.Eq{"id": bookingID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set stale event query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set stale event failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetCalendarEvent(ctx context.Context, bookingID, eventID string, status SyncStatus, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	update := psql.Update("public.bookings").
		Set("event_sync_status", string(status)).
		Set("event_last_sync", at).
		Where(squirrel.Eq{"id": bookingID})
	if eventID != "" {
		update = update.Set("calendar_event_id", eventID)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build set calendar event query failed: %w", err)
	}

	ct, err := db.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set calendar event failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) FindRecentPendingExpress(ctx context.Context, contactID string, since time.Time) (*Booking, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := baseSelect(psql).
		Where(squirrel.Eq{
			"b.contact_id":   contactID,
			"b.status":       StatusPending,
			"b.booking_type": TypeExpress,
		}).
		Where(squirrel.GtOrEq{"b.start_time": since}).
		OrderBy("b.start_time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find pending express query failed: %w", err)
	}

	b, err := scanBooking(db.Executor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find pending express booking failed: %w", err)
	}
	return b, nil
}
