package entity

// FetchWindow bundles the parameters of one provider fetch cycle.
// It is constructed fresh per poll cycle and never persisted.
type FetchWindow struct {
	Symbol    string
	Interval  string // second, minute, hour, day, week
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	Order     string // asc, desc
	Limit     int
}
