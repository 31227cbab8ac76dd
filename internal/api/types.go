package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Request status values as reported over the API.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Musician describes a musician profile in a transport-friendly format.
type Musician struct {
	ID         int64  `json:"id"`
	Instrument string `json:"instrument"`
	Experience int    `json:"experience"`
	Genres     string `json:"genres,omitempty"`
	Location   string `json:"location,omitempty"`
	About      string `json:"about,omitempty"`
}

// MusicianPatch carries a partial profile update. Nil fields are left
// untouched.
type MusicianPatch struct {
	Instrument *string `json:"instrument,omitempty"`
	Experience *int    `json:"experience,omitempty"`
	Genres     *string `json:"genres,omitempty"`
	Location   *string `json:"location,omitempty"`
	About      *string `json:"about,omitempty"`
}

// Request describes a band request in a transport-friendly format.
type Request struct {
	ID            int64  `json:"id"`
	BandID        int64  `json:"bandId"`
	Instrument    string `json:"instrument"`
	Genre         string `json:"genre"`
	Description   string `json:"description,omitempty"`
	Location      string `json:"location,omitempty"`
	MinExperience int    `json:"minExperience"`
	Status        string `json:"status"`
	AcceptedBy    *int64 `json:"acceptedBy,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}

// SubmitRequest is the body for creating a band request.
type SubmitRequest struct {
	BandID        int64  `json:"bandId"`
	Instrument    string `json:"instrument"`
	MinExperience int    `json:"minExperience"`
	Location      string `json:"location,omitempty"`
	Description   string `json:"description,omitempty"`
}

// SubmitResponse reports the outcome of a request submission.
type SubmitResponse struct {
	Request    Request `json:"request"`
	Genre      string  `json:"genre"`
	Candidates int     `json:"candidatesNotified"`
}

// AcceptRequest is the body for a musician's acceptance attempt.
type AcceptRequest struct {
	MusicianID int64 `json:"musicianId"`
}

// AcceptResponse reports whether the claim won.
type AcceptResponse struct {
	Accepted  bool  `json:"accepted"`
	RequestID int64 `json:"requestId"`
	BandID    int64 `json:"bandId,omitempty"`
}

// MusicianListResponse wraps a collection of musician profiles.
type MusicianListResponse struct {
	Musicians []Musician `json:"musicians"`
}

// RequestListResponse wraps a collection of band requests.
type RequestListResponse struct {
	Requests []Request `json:"requests"`
}

// RequestResponse wraps a single band request.
type RequestResponse struct {
	Request Request `json:"request"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DatabasePath string         `json:"databasePath"`
	LockFilePath string         `json:"lockFilePath"`
	RequestStats map[string]int `json:"requestStats"`
}

// NotifyTestRequest is the body for sending a test notification.
type NotifyTestRequest struct {
	RecipientID int64 `json:"recipientId"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
