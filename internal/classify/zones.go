package classify

import "github.com/ayusman/mudra/internal/landmark"

// Zone is a screen rectangle in normalized coordinates where geometric
// signals are systematically weaker (e.g. the bottom of the frame, where
// perspective compresses a pointing hand). Detection thresholds inside the
// zone are scaled by Multiplier.
type Zone struct {
	MinX, MinY float64
	MaxX, MaxY float64

	// Multiplier relaxes thresholds inside the zone; values above 1 make
	// every check more lenient there.
	Multiplier float64
}

// Contains reports whether the point lies inside the zone.
func (z Zone) Contains(p landmark.Point2D) bool {
	return p.X >= z.MinX && p.X <= z.MaxX && p.Y >= z.MinY && p.Y <= z.MaxY
}

// ZoneSet is an ordered list of difficult zones. Earlier zones win when
// they overlap.
type ZoneSet []Zone

// MultiplierAt returns the threshold multiplier in effect at the given
// position: the first containing zone's multiplier, or 1 outside all zones.
func (zs ZoneSet) MultiplierAt(p landmark.Point2D) float64 {
	for _, z := range zs {
		if z.Contains(p) && z.Multiplier > 0 {
			return z.Multiplier
		}
	}
	return 1
}

// DefaultZones returns the difficult zones observed with a typical webcam:
// the bottom strip of the frame, where a pointing hand is foreshortened,
// gets a strong relaxation; a narrow band along the remaining edges gets a
// mild one.
func DefaultZones() ZoneSet {
	return ZoneSet{
		// Bottom third, full width.
		{MinX: 0, MinY: 0.66, MaxX: 1, MaxY: 1, Multiplier: 1.8},
		// Edge bands.
		{MinX: 0, MinY: 0, MaxX: 0.1, MaxY: 1, Multiplier: 1.4},
		{MinX: 0.9, MinY: 0, MaxX: 1, MaxY: 1, Multiplier: 1.4},
		{MinX: 0, MinY: 0, MaxX: 1, MaxY: 0.12, Multiplier: 1.4},
	}
}
