package domain

import "context"

// SegmentFinder looks up stored segments.
type SegmentFinder interface {
	// FindByHighway returns every segment of a highway ordered by start chainage.
	FindByHighway(ctx context.Context, highway string) ([]Segment, error)
}
