package api

import (
	"time"

	"bandfinder/internal/store"
)

// FromMusician converts a store record to its API representation.
func FromMusician(m *store.Musician) Musician {
	if m == nil {
		return Musician{}
	}
	return Musician{
		ID:         m.TelegramID,
		Instrument: m.Instrument,
		Experience: m.Experience,
		Genres:     m.Genres,
		Location:   m.Location,
		About:      m.About,
	}
}

// FromMusicians converts a slice of store records into API DTOs.
func FromMusicians(musicians []*store.Musician) []Musician {
	if len(musicians) == 0 {
		return nil
	}
	out := make([]Musician, 0, len(musicians))
	for _, m := range musicians {
		out = append(out, FromMusician(m))
	}
	return out
}

// FromRequest converts a store record to its API representation.
func FromRequest(r *store.Request) Request {
	if r == nil {
		return Request{}
	}
	dto := Request{
		ID:            r.ID,
		BandID:        r.BandID,
		Instrument:    r.Instrument,
		Genre:         r.Genre,
		Description:   r.Description,
		Location:      r.Location,
		MinExperience: r.MinExperience,
		Status:        StatusClosed,
		AcceptedBy:    r.AcceptedBy,
	}
	if r.Open() {
		dto.Status = StatusOpen
	}
	dto.CreatedAt = FormatTime(r.CreatedAt)
	dto.UpdatedAt = FormatTime(r.UpdatedAt)
	return dto
}

// FromRequests converts a slice of store records into API DTOs.
func FromRequests(requests []*store.Request) []Request {
	if len(requests) == 0 {
		return nil
	}
	out := make([]Request, 0, len(requests))
	for _, r := range requests {
		out = append(out, FromRequest(r))
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
