package repository

// Option applies a configuration option to the XLSXSource.
type Option func(*XLSXSource)

// WithSheet selects the sheet to read. The first sheet is used when empty.
func WithSheet(name string) Option {
	return func(s *XLSXSource) {
		s.sheet = name
	}
}

// WithSkipRows sets how many leading rows precede the embedded header row.
func WithSkipRows(n int) Option {
	return func(s *XLSXSource) {
		if n >= 0 {
			s.skipRows = n
		}
	}
}
