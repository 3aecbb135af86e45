package validation

import (
	"errors"
	"strings"
)

// FieldError is the first failing rule of one field.
type FieldError struct {
	Field   Field
	Message string
}

// Errors is the aggregate result of a failed form validation, in form order.
type Errors struct {
	list []FieldError
}

func (e *Errors) add(f Field, msg string) {
	e.list = append(e.list, FieldError{Field: f, Message: msg})
}

func (e *Errors) empty() bool { return len(e.list) == 0 }

// Error implements the error interface.
func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.list))
	for _, fe := range e.list {
		parts = append(parts, string(fe.Field)+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns every failing field in form order.
func (e *Errors) Fields() []FieldError {
	out := make([]FieldError, len(e.list))
	copy(out, e.list)
	return out
}

// First returns the first errored field, the one to scroll into view.
func (e *Errors) First() FieldError {
	if len(e.list) == 0 {
		return FieldError{}
	}
	return e.list[0]
}

// Get returns the message recorded for f.
func (e *Errors) Get(f Field) (string, bool) {
	for _, fe := range e.list {
		if fe.Field == f {
			return fe.Message, true
		}
	}
	return "", false
}

// State tracks which fields are currently marked as errored.
type State struct {
	marks map[Field]string
}

// NewState returns a state with every field clean.
func NewState() *State {
	return &State{marks: make(map[Field]string)}
}

// Mark records the result of validating f: errored with its message, or clean.
func (s *State) Mark(f Field, r Result) {
	if r.Valid {
		delete(s.marks, f)
		return
	}
	s.marks[f] = r.Message
}

// Apply replaces all marks with the outcome of a form validation.
func (s *State) Apply(err error) {
	s.marks = make(map[Field]string)
	var errs *Errors
	if !errors.As(err, &errs) {
		return
	}
	for _, fe := range errs.list {
		s.marks[fe.Field] = fe.Message
	}
}

// Message returns the inline message of an errored field.
func (s *State) Message(f Field) (string, bool) {
	msg, ok := s.marks[f]
	return msg, ok
}

// FirstErrored returns the first errored field in form order.
func (s *State) FirstErrored() (Field, bool) {
	for _, f := range formOrder {
		if _, ok := s.marks[f]; ok {
			return f, true
		}
	}
	return "", false
}
