package apperrors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformedRecord    = errors.New("malformed record")
	ErrInconsistentEra    = errors.New("event predates formal review availability")
	ErrMissingGroupingKey = errors.New("record is missing the grouping key")

	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoPeriod      = errors.New("no period covers the given instant")
)

type MalformedRecordError struct {
	RecordID string
	Field    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record '%s' is missing required field '%s'", e.RecordID, e.Field)
}
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

type InconsistentEraError struct {
	PRID      string
	Timestamp time.Time
}

func (e *InconsistentEraError) Error() string {
	return fmt.Sprintf(
		"formal review on pr '%s' dated %s, before formal reviews existed",
		e.PRID, e.Timestamp.Format(time.RFC3339),
	)
}
func (e *InconsistentEraError) Is(target error) bool { return target == ErrInconsistentEra }

type MissingGroupingKeyError struct {
	RecordID string
	Key      string
}

func (e *MissingGroupingKeyError) Error() string {
	return fmt.Sprintf("record '%s' has no value for grouping key '%s'", e.RecordID, e.Key)
}
func (e *MissingGroupingKeyError) Is(target error) bool { return target == ErrMissingGroupingKey }
