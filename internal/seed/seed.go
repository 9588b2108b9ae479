// Package seed loads fleet, driver, and partner fixtures from TOML and upserts
// them by id. Bookings are never touched.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nekogravitycat/partybus-booking-backend/internal/db"
)

type File struct {
	Buses            []Bus             `toml:"buses"`
	Drivers          []Driver          `toml:"drivers"`
	CorporateClients []CorporateClient `toml:"corporate_clients"`
	Contacts         []Contact         `toml:"contacts"`
}

type Bus struct {
	ID            string   `toml:"id"`
	Name          string   `toml:"name"`
	Capacity      int      `toml:"capacity"`
	Status        string   `toml:"status"`
	Color         string   `toml:"color"`
	Features      []string `toml:"features"`
	StartingPrice int64    `toml:"starting_price"`
}

type Driver struct {
	ID     string `toml:"id"`
	Name   string `toml:"name"`
	Phone  string `toml:"phone"`
	Email  string `toml:"email"`
	Status string `toml:"status"`
}

type CorporateClient struct {
	ID             string `toml:"id"`
	Name           string `toml:"name"`
	Slug           string `toml:"slug"`
	DefaultPickup  string `toml:"default_pickup"`
	DefaultDropoff string `toml:"default_dropoff"`
	Status         string `toml:"status"`
}

type Contact struct {
	ID                string `toml:"id"`
	Name              string `toml:"name"`
	Email             string `toml:"email"`
	Phone             string `toml:"phone"`
	CorporateClientID string `toml:"corporate_client_id"`
}

// Counts reports how many rows of each kind were upserted.
type Counts struct {
	Buses, Drivers, CorporateClients, Contacts int
}

// Decode parses a seed file and validates it.
func Decode(r io.Reader) (*File, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate requires fixed uuids and the fields the schema cannot default.
func (f *File) Validate() error {
	var errs []error
	check := func(kind string, i int, id, name string) {
		if _, err := uuid.Parse(id); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: id %q is not a uuid", kind, i, id))
		}
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%s[%d]: name is required", kind, i))
		}
	}
	for i, b := range f.Buses {
		check("buses", i, b.ID, b.Name)
		if b.Capacity < 1 {
			errs = append(errs, fmt.Errorf("buses[%d]: capacity must be at least 1", i))
		}
	}
	for i, d := range f.Drivers {
		check("drivers", i, d.ID, d.Name)
	}
	clients := make(map[string]bool, len(f.CorporateClients))
	for i, c := range f.CorporateClients {
		check("corporate_clients", i, c.ID, c.Name)
		if c.Slug == "" {
			errs = append(errs, fmt.Errorf("corporate_clients[%d]: slug is required", i))
		}
		clients[c.ID] = true
	}
	for i, c := range f.Contacts {
		check("contacts", i, c.ID, c.Name)
		if c.CorporateClientID != "" && !clients[c.CorporateClientID] {
			errs = append(errs, fmt.Errorf("contacts[%d]: unknown corporate_client_id %q", i, c.CorporateClientID))
		}
	}
	return errors.Join(errs...)
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// TxRunner is implemented by db.TxManager.
type TxRunner interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Apply upserts every row in a single transaction.
func Apply(ctx context.Context, pool *pgxpool.Pool, tx TxRunner, f *File) (Counts, error) {
	var counts Counts
	err := tx.Do(ctx, func(ctx context.Context) error {
		counts = Counts{}
		q := db.Executor(ctx, pool)
		psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

		exec := func(b squirrel.InsertBuilder) error {
			query, args, err := b.ToSql()
			if err != nil {
				return fmt.Errorf("build seed query failed: %w", err)
			}
			_, err = q.Exec(ctx, query, args...)
			return err
		}

		for _, b := range f.Buses {
			features := b.Features
			if features == nil {
				features = []string{}
			}
			if err := exec(psql.Insert("public.buses").
				Columns("id", "name", "capacity", "status", "color", "features", "starting_price").
				Values(b.ID, b.Name, b.Capacity, or(b.Status, "active"), b.Color, features, b.StartingPrice).
				Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, capacity = EXCLUDED.capacity,
					status = EXCLUDED.status, color = EXCLUDED.color, features = EXCLUDED.features,
					starting_price = EXCLUDED.starting_price, updated_at = now()`)); err != nil {
				return fmt.Errorf("seed bus %s: %w", b.ID, err)
			}
			counts.Buses++
		}

		for _, d := range f.Drivers {
			if err := exec(psql.Insert("public.drivers").
				Columns("id", "name", "phone", "email", "status").
				Values(d.ID, d.Name, d.Phone, strings.TrimSpace(d.Email), or(d.Status, "active")).
				Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone,
					email = EXCLUDED.email, status = EXCLUDED.status, updated_at = now()`)); err != nil {
				return fmt.Errorf("seed driver %s: %w", d.ID, err)
			}
			counts.Drivers++
		}

		for _, c := range f.CorporateClients {
			if err := exec(psql.Insert("public.corporate_clients").
				Columns("id", "name", "slug", "default_pickup", "default_dropoff", "status").
				Values(c.ID, c.Name, c.Slug, c.DefaultPickup, c.DefaultDropoff, or(c.Status, "active")).
				Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, slug = EXCLUDED.slug,
					default_pickup = EXCLUDED.default_pickup, default_dropoff = EXCLUDED.default_dropoff,
					status = EXCLUDED.status, updated_at = now()`)); err != nil {
				return fmt.Errorf("seed corporate client %s: %w", c.ID, err)
			}
			counts.CorporateClients++
		}

		for _, c := range f.Contacts {
			if err := exec(psql.Insert("public.contacts").
				Columns("id", "name", "email", "phone", "corporate_client_id", "source").
				Values(c.ID, c.Name, db.NullString(strings.TrimSpace(c.Email)), c.Phone, db.NullString(c.CorporateClientID), "seed").
				Suffix(`ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email,
					phone = EXCLUDED.phone, corporate_client_id = EXCLUDED.corporate_client_id, updated_at = now()`)); err != nil {
				return fmt.Errorf("seed contact %s: %w", c.ID, err)
			}
			counts.Contacts++
		}
		return nil
	})
	return counts, err
}
