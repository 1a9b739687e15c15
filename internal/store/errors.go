package store

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DataError aggregates every malformed-field or dangling-reference
// problem found during one Load call into a single error value, built
// on go-multierror so callers can still errors.Is/As through it.
type DataError struct {
	errs *multierror.Error
}

func (d *DataError) Error() string { return d.errs.Error() }

// Unwrap exposes the aggregated errors to errors.Is/As.
func (d *DataError) Unwrap() error { return d.errs }

func newDataError() *DataError {
	return &DataError{errs: &multierror.Error{
		ErrorFormat: func(es []error) string {
			if len(es) == 1 {
				return fmt.Sprintf("data error: %s", es[0])
			}
			return fmt.Sprintf("%d data errors occurred", len(es))
		},
	}}
}

func (d *DataError) add(format string, args ...any) {
	d.errs = multierror.Append(d.errs, fmt.Errorf(format, args...))
}

// HasErrors reports whether any problem was recorded.
func (d *DataError) HasErrors() bool {
	return d != nil && d.errs != nil && d.errs.Len() > 0
}

// AsError returns d itself as an error, or nil when it recorded
// nothing. Deliberately returns d rather than d.ErrorOrNil() so a
// caller using errors.As(err, &dataError) gets the DataError type
// back, not the bare *multierror.Error it wraps.
func (d *DataError) AsError() error {
	if !d.HasErrors() {
		return nil
	}
	return d
}
