package entity

// CollectionStatus records whether a margin snapshot was obtained.
type CollectionStatus string

const (
	StatusCollected CollectionStatus = "collected"
	StatusFailed    CollectionStatus = "failed"
)

// FullMarginThreshold is the margin rate at or above which an instrument
// requires full cash margin.
const FullMarginThreshold = 100.0

// MarginPolicy is one instrument's margin-eligibility snapshot for a day.
type MarginPolicy struct {
	Code         string
	AsOf         string // YYYY-MM-DD
	IsFullMargin bool
	RatePct      *float64
	Status       CollectionStatus
	Note         string
}

// ClassifyMargin derives the full-margin flag and collection status from a
// margin rate. A missing rate is never full margin and counts as failed.
func ClassifyMargin(ratePct *float64) (bool, CollectionStatus) {
	if ratePct == nil {
		return false, StatusFailed
	}
	return *ratePct >= FullMarginThreshold, StatusCollected
}
