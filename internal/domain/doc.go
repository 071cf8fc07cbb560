// Package domain models highway road-condition survey sheets and the segment
// documents derived from them.
//
// # Sheet Layout
//
// Survey workbooks use a two-row header. The first row groups columns, the
// second names them:
//
//	NH Number | Start Chainage | ... | Lane L1                     | ... | Roughness BI                    | ...
//	          |                | ... | Start | Start | End | End   | ... | L1 Lane Roughness BI (in mm/km) | ...
//
// Segment-level columns carry their name in the first row only. Each lane has
// a coordinate block ("Lane L1") whose four sub-columns are start and end
// latitude/longitude; the reader disambiguates the repeated labels as
// "Start", "Start.1", "End", "End.1". Condition measurements carry the lane
// code in the second-row label ("L1 Rut Depth (in mm)").
//
// Lane codes are a direction letter (L or R) followed by digits. The set of
// lanes is not fixed: it is discovered from the headers of each sheet. See
// [DiscoverLanes].
//
// # Transformation
//
//  1. Headers are collapsed with [NormalizeHeader]; blank headers drop the column.
//  2. Lanes are discovered and rename rules built with [BuildFieldMap].
//  3. Segment-level fields are forward-filled down the sheet, because merged
//     cells span the lane sub-rows of a segment.
//  4. Coordinate and measurement columns are coerced to numbers; unparsable
//     cells become absent.
//  5. Each row becomes a [Segment] with one [Lane] per discovered lane code.
//
// # Classification
//
// Each measurement is compared with its limit:
//
//	roughness        vs IRI_Limit        (default 2400 mm/km)
//	rutDepth         vs Rutting_Limit    (default 5 mm)
//	crackPercent     vs Cracking_Limit   (default 5 % area)
//	ravellingPercent vs Ravelling_Limit  (default 5 % area)
//
// A value is critical only when it is present, non-zero and above the limit.
// A recorded zero is always normal.
//
// # Retention
//
// A lane is kept when it has a start latitude, start longitude or roughness
// reading. A segment with no kept lane is not emitted.
package domain
