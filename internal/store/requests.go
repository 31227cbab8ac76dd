package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const requestColumns = "id, band_id, instrument, genre, description, location_text, min_experience, accepted_by, created_at, updated_at"

// CreateRequest stores a new open request and returns it with the assigned
// id. Ids are strictly increasing across the store's lifetime.
func (s *Store) CreateRequest(ctx context.Context, bandID int64, instrument, genre, description, location string, minExperience int) (*Request, error) {
	now := timestamp()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO band_requests (
            band_id, instrument, genre, description, location_text,
            min_experience, accepted_by, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		bandID,
		instrument,
		nullableString(genre),
		nullableString(description),
		nullableString(location),
		minExperience,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRequest(ctx, id)
}

// GetRequest fetches a request by id. A missing request returns nil, nil.
func (s *Store) GetRequest(ctx context.Context, id int64) (*Request, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+requestColumns+` FROM band_requests WHERE id = ?`,
		id,
	)
	request, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return request, nil
}

// ListRequestsByOwner returns the owner's requests in insertion order.
func (s *Store) ListRequestsByOwner(ctx context.Context, bandID int64) ([]*Request, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+requestColumns+` FROM band_requests WHERE band_id = ? ORDER BY id`,
		bandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

// DeleteRequestByOwner removes a request only when it exists, belongs to the
// given owner, and is still open. The returned bool reports whether a row was
// actually removed; a non-owner cannot distinguish "not yours" from "no such
// id".
func (s *Store) DeleteRequestByOwner(ctx context.Context, id, bandID int64) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM band_requests WHERE id = ? AND band_id = ? AND accepted_by IS NULL`,
		id,
		bandID,
	)
	if err != nil {
		return false, fmt.Errorf("delete request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Claim atomically assigns the request to the musician if and only if it is
// still open. Exactly one of any set of concurrent claimants observes true;
// every later claim (including retries by the winner) observes false and the
// stored acceptor never changes. The conditional UPDATE is the entire
// check-and-set: there is no read-then-write window.
func (s *Store) Claim(ctx context.Context, requestID, musicianID int64) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE band_requests SET accepted_by = ?, updated_at = ?
         WHERE id = ? AND accepted_by IS NULL`,
		musicianID,
		timestamp(),
		requestID,
	)
	if err != nil {
		return false, fmt.Errorf("claim request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// RequestStats counts open and closed requests for status reporting.
func (s *Store) RequestStats(ctx context.Context) (open, closed int, err error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT
            COUNT(CASE WHEN accepted_by IS NULL THEN 1 END),
            COUNT(CASE WHEN accepted_by IS NOT NULL THEN 1 END)
         FROM band_requests`,
	)
	if err := row.Scan(&open, &closed); err != nil {
		return 0, 0, fmt.Errorf("request stats: %w", err)
	}
	return open, closed, nil
}

func scanRequest(scanner interface{ Scan(dest ...any) error }) (*Request, error) {
	var (
		id            int64
		bandID        int64
		instrument    string
		genre         sql.NullString
		description   sql.NullString
		location      sql.NullString
		minExperience int
		acceptedBy    sql.NullInt64
		createdRaw    string
		updatedRaw    string
	)
	if err := scanner.Scan(
		&id,
		&bandID,
		&instrument,
		&genre,
		&description,
		&location,
		&minExperience,
		&acceptedBy,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	request := &Request{
		ID:            id,
		BandID:        bandID,
		Instrument:    instrument,
		Genre:         genre.String,
		Description:   description.String,
		Location:      location.String,
		MinExperience: minExperience,
	}
	if acceptedBy.Valid {
		accepted := acceptedBy.Int64
		request.AcceptedBy = &accepted
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		request.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		request.UpdatedAt = updated
	}
	return request, nil
}
