package properties

import "errors"

var (
	// ErrMissingSection is returned when the requested section is not present in the loaded file.
	ErrMissingSection = errors.New("missing section")
	// ErrMissingKey is returned when the requested key is not present in an existing section.
	ErrMissingKey = errors.New("missing key")
	// ErrMalformed is returned when the properties file cannot be parsed.
	ErrMalformed = errors.New("malformed properties file")
)
