package utils

import "time"

// Clock abstracts the current time. Booking rules compare against "now"
// (a booking that has already started can no longer be changed or
// cancelled), so services take a Clock instead of calling time.Now
// directly and tests pin the instant with MockClock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock reports a fixed instant for tests.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
