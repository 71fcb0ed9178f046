package landmark

import "fmt"

// TopologySize is the number of points in the MediaPipe face mesh base
// topology. Detectors with iris refinement emit 478 points; the extra ten
// never appear in a region, so both frame lengths are accepted.
const TopologySize = 468

// RegionID identifies a named facial area.
type RegionID int

const (
	OuterLips RegionID = iota
	InnerLips
	UpperLip
	LowerLip
)

// String returns the region name.
func (r RegionID) String() string {
	switch r {
	case OuterLips:
		return "outer_lips"
	case InnerLips:
		return "inner_lips"
	case UpperLip:
		return "upper_lip"
	case LowerLip:
		return "lower_lip"
	}
	return fmt.Sprintf("region(%d)", int(r))
}

// Region index tables, walked as single closed loops from the face mesh
// lip contours: the lower arc left to right, then the opposing arc back.
// Sequential path construction over these orderings never self-intersects.
var regions = map[RegionID][]int{
	// Outer lip contour: 61 (left corner) along the lower lip to 291
	// (right corner), then back along the upper lip.
	OuterLips: {
		61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291,
		409, 270, 269, 267, 0, 37, 39, 40, 185,
	},
	// Inner lip contour, same traversal between corners 78 and 308.
	InnerLips: {
		78, 95, 88, 178, 87, 14, 317, 402, 318, 324, 308,
		415, 310, 311, 312, 13, 82, 81, 80, 191,
	},
	// Upper lip: outer upper arc left to right, inner upper arc back.
	UpperLip: {
		61, 185, 40, 39, 37, 0, 267, 269, 270, 409, 291,
		308, 415, 310, 311, 312, 13, 82, 81, 80, 191, 78,
	},
	// Lower lip: outer lower arc left to right, inner lower arc back.
	LowerLip: {
		61, 146, 91, 181, 84, 17, 314, 405, 321, 375, 291,
		308, 324, 318, 402, 317, 14, 87, 178, 88, 95, 78,
	},
}

func init() {
	for id, indices := range regions {
		for _, idx := range indices {
			if idx < 0 || idx >= TopologySize {
				panic(fmt.Sprintf("landmark: region %s references index %d outside topology size %d",
					id, idx, TopologySize))
			}
		}
	}
}

// Region returns the ordered landmark indices tracing the closed polygon
// for the given region. The returned slice is a copy.
func Region(id RegionID) []int {
	indices, ok := regions[id]
	if !ok {
		return nil
	}
	out := make([]int, len(indices))
	copy(out, indices)
	return out
}
