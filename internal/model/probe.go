package model

// ProbeStatus distinguishes "value present", "feature absent on the
// page" and "extraction actually failed" for collaborator probes, so
// skip/continue logic branches on meaning rather than on error type.
type ProbeStatus string

const (
	ProbeFound    ProbeStatus = "found"
	ProbeNotFound ProbeStatus = "not_found"
	ProbeFailed   ProbeStatus = "failed"
)

// Field is the result of probing one profile field.
type Field[T any] struct {
	Status ProbeStatus
	Value  T
}

// Found wraps a successfully extracted value.
func Found[T any](v T) Field[T] {
	return Field[T]{Status: ProbeFound, Value: v}
}

// NotFound marks the field as absent on the page.
func NotFound[T any]() Field[T] {
	return Field[T]{Status: ProbeNotFound}
}

// Failed marks the probe itself as failed.
func Failed[T any]() Field[T] {
	return Field[T]{Status: ProbeFailed}
}

// Present reports whether a value was extracted.
func (f Field[T]) Present() bool {
	return f.Status == ProbeFound
}

// Ptr returns a pointer to the value when present, nil otherwise.
func (f Field[T]) Ptr() *T {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

// Or returns the value when present, otherwise the fallback.
func (f Field[T]) Or(fallback T) T {
	if f.Present() {
		return f.Value
	}
	return fallback
}

// RawProfile is the bundle of raw field probes returned by the profile
// reader for one opened candidate page. "Present but empty" and
// "absent" are distinguished by the probe status, not by zero values.
type RawProfile struct {
	Name            Field[string]
	Age             Field[int]
	ExperienceYears Field[int]
	About           Field[string]
	Education       Field[string]
	Recommendations Field[[]string]
	HasAudio        Field[bool]
	HasTaleAudio    Field[bool]
	Phone           Field[string]
	Location        Field[string]
	CommuteMinutes  Field[int]
}
