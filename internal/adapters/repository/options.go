package repository

// WithMaxOpenConns caps the connection pool. sqlite is forced to a
// single writer when this is left unset.
func WithMaxOpenConns(n int) SQLOption {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
