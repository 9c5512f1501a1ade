package entities

// Status is the two-valued outcome reported alongside every query output
type Status int

const (
	StatusInvalid Status = iota
	StatusValid
)

// String returns the status name for logs
func (s Status) String() string {
	if s == StatusValid {
		return "valid"
	}
	return "invalid"
}

// Result is the outcome of one query execution; produced fresh per request
type Result struct {
	Output string
	Status Status

	// HTTPStatus carries the raw upstream status on the REST path, zero otherwise
	HTTPStatus int
}
