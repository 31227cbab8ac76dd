package store

import "time"

// Instrument codes accepted by intake. Free-text instrument queries from the
// standalone search path are matched by substring, so codes are short exact
// tokens.
const (
	InstrumentVocal  = "vocal"
	InstrumentGuitar = "guitar"
	InstrumentBass   = "bass"
	InstrumentDrums  = "drums"
	InstrumentKeys   = "keys"
	InstrumentOther  = "other"
)

// Instruments lists the closed instrument code set in menu order.
var Instruments = []string{
	InstrumentVocal,
	InstrumentGuitar,
	InstrumentBass,
	InstrumentDrums,
	InstrumentKeys,
	InstrumentOther,
}

// NormalizeInstrument maps arbitrary input onto the closed code set,
// defaulting to "other".
func NormalizeInstrument(code string) string {
	for _, known := range Instruments {
		if code == known {
			return code
		}
	}
	return InstrumentOther
}

// Musician is a musician's persistent, searchable self-description, keyed by
// the externally supplied Telegram identity.
type Musician struct {
	TelegramID int64
	Instrument string
	Experience int
	Genres     string
	Location   string
	About      string
}

// Request is a band's open call for a musician. AcceptedBy is nil while the
// request is open and holds the accepting musician's id once closed; it is
// set exactly once and never cleared.
type Request struct {
	ID            int64
	BandID        int64
	Instrument    string
	Genre         string
	Description   string
	Location      string
	MinExperience int
	AcceptedBy    *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Open reports whether the request is still awaiting an acceptance.
func (r *Request) Open() bool {
	return r != nil && r.AcceptedBy == nil
}
