package chrono

import "time"

// API is the interface that anything depending on the system clock should use.
type API interface {
	// Now returns the current time in Location.
	Now() time.Time
	Location() *time.Location
}

// KST is Asia/Seoul. The tracker site and its consumers reason in korean
// dates, so the snapshot date must roll over at KST midnight wherever the
// job happens to run.
func KST() *time.Location {
	location, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		// no tzdata on the host, korea has not observed DST since 1988.
		return time.FixedZone("KST", 9*60*60)
	}
	return location
}

type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl() StandardImpl {
	return StandardImpl{location: KST()}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// Fixed is an API that always returns the same instant.
type Fixed struct {
	Time time.Time
}

func (f Fixed) Now() time.Time {
	return f.Time
}

func (f Fixed) Location() *time.Location {
	return f.Time.Location()
}
