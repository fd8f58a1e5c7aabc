package sqlite

import "time"

// SetClock replaces the clock used for addedDate.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Exec runs raw SQL against the store for fixture setup.
func (s *Store) Exec(query string, args ...any) error {
	_, err := s.db.Exec(query, args...)
	return err
}
