package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const musicianColumns = "telegram_id, instrument, experience, genres, location_text, about"

// UpsertMusician replaces any existing profile for the musician's id with the
// provided values. Content validation (experience non-negativity, instrument
// codes) is the caller's responsibility.
func (s *Store) UpsertMusician(ctx context.Context, m *Musician) error {
	if m == nil {
		return errors.New("musician is nil")
	}
	_, err := s.execWithRetry(
		ctx,
		`INSERT OR REPLACE INTO musicians (`+musicianColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.TelegramID,
		m.Instrument,
		m.Experience,
		nullableString(m.Genres),
		nullableString(m.Location),
		nullableString(m.About),
	)
	if err != nil {
		return fmt.Errorf("upsert musician: %w", err)
	}
	return nil
}

// GetMusician fetches a profile by musician id. A missing profile returns
// nil, nil.
func (s *Store) GetMusician(ctx context.Context, telegramID int64) (*Musician, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+musicianColumns+` FROM musicians WHERE telegram_id = ?`,
		telegramID,
	)
	musician, err := scanMusician(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get musician: %w", err)
	}
	return musician, nil
}

// SetInstrument updates a single profile column. Updates that match no row
// silently succeed; callers wanting a registration guarantee should check
// GetMusician first.
func (s *Store) SetInstrument(ctx context.Context, telegramID int64, instrument string) error {
	return s.setMusicianColumn(ctx, telegramID, "instrument", instrument)
}

// SetExperience updates the years-of-experience column.
func (s *Store) SetExperience(ctx context.Context, telegramID int64, experience int) error {
	return s.setMusicianColumn(ctx, telegramID, "experience", experience)
}

// SetGenres updates the free-text genres column, stored verbatim.
func (s *Store) SetGenres(ctx context.Context, telegramID int64, genres string) error {
	return s.setMusicianColumn(ctx, telegramID, "genres", genres)
}

// SetBio updates the free-text about column.
func (s *Store) SetBio(ctx context.Context, telegramID int64, about string) error {
	return s.setMusicianColumn(ctx, telegramID, "about", about)
}

// SetLocation updates the free-text location column.
func (s *Store) SetLocation(ctx context.Context, telegramID int64, location string) error {
	return s.setMusicianColumn(ctx, telegramID, "location_text", location)
}

func (s *Store) setMusicianColumn(ctx context.Context, telegramID int64, column string, value any) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE musicians SET `+column+` = ? WHERE telegram_id = ?`,
		value,
		telegramID,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	return nil
}

// FindMusicians returns profiles whose instrument contains the query as a
// case-sensitive substring and whose experience meets the floor. The location
// argument is accepted for forward compatibility and not used as a filter;
// location is advisory free text shown to the recipient. Results are ordered
// by musician id so repeated identical queries are stable.
func (s *Store) FindMusicians(ctx context.Context, instrument, location string, minExperience int) ([]*Musician, error) {
	_ = location
	// instr rather than LIKE: SQLite's LIKE is ASCII case-insensitive and
	// would let "GUITAR" match the lowercase instrument codes.
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+musicianColumns+` FROM musicians
         WHERE instr(instrument, ?) > 0 AND experience >= ?
         ORDER BY telegram_id`,
		instrument,
		minExperience,
	)
	if err != nil {
		return nil, fmt.Errorf("find musicians: %w", err)
	}
	defer rows.Close()

	var musicians []*Musician
	for rows.Next() {
		musician, err := scanMusician(rows)
		if err != nil {
			return nil, err
		}
		musicians = append(musicians, musician)
	}
	return musicians, rows.Err()
}

func scanMusician(scanner interface{ Scan(dest ...any) error }) (*Musician, error) {
	var (
		telegramID int64
		instrument string
		experience int
		genres     sql.NullString
		location   sql.NullString
		about      sql.NullString
	)
	if err := scanner.Scan(&telegramID, &instrument, &experience, &genres, &location, &about); err != nil {
		return nil, err
	}
	return &Musician{
		TelegramID: telegramID,
		Instrument: instrument,
		Experience: experience,
		Genres:     genres.String,
		Location:   location.String,
		About:      about.String,
	}, nil
}
