package taxonomy

import "errors"

var (
	// ErrInvalidDomain is returned when a domain key is not in the taxonomy.
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrInvalidTaxonomy is returned when a table fails validation.
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	// ErrEmptyTaxonomy is returned when no domains are supplied.
	ErrEmptyTaxonomy = errors.New("taxonomy has no domains")
)
