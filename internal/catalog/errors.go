package catalog

import "errors"

// UnavailableError reports that a catalog could not be loaded (network,
// read or parse failure). Callers recover by treating the catalog as empty.
type UnavailableError struct {
	Catalog string
	Err     error
}

func (e *UnavailableError) Error() string {
	return "catalog unavailable: " + e.Catalog + ": " + e.Err.Error()
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func unavailable(catalog string, err error) error {
	return &UnavailableError{Catalog: catalog, Err: err}
}

// IsUnavailable reports whether err is a catalog load failure.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
