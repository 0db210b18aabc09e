package enrich

import "errors"

// Sentinel kinds for structural dataset errors. Any of them aborts a load.
var (
	ErrEmptyDataset    = errors.New("dataset has no header row")
	ErrDuplicateHeader = errors.New("duplicate column name in header row")
	ErrMissingColumn   = errors.New("required column missing")
	ErrInvalidKey      = errors.New("season or game is not an integer")
	ErrGameOutOfRange  = errors.New("game number out of range")
	ErrInvalidPlace    = errors.New("place outside the points table")
)

var structural = []error{
	ErrEmptyDataset,
	ErrDuplicateHeader,
	ErrMissingColumn,
	ErrInvalidKey,
	ErrGameOutOfRange,
	ErrInvalidPlace,
}

// IsStructural reports whether err means the dataset itself is unusable.
func IsStructural(err error) bool {
	for _, target := range structural {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
