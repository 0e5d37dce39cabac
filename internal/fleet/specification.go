package fleet

import (
	"time"
)

// Specification is the normalized output of a successful lookup. Every named
// field is a pointer: nil means the source did not report the attribute,
// which is distinct from a reported zero or empty value. A Specification
// carries data from exactly one source and is treated as immutable once an
// adapter returns it.
type Specification struct {
	EngineType       *string
	Displacement     *string
	Power            *string
	Torque           *string
	Compression      *string
	BoreStroke       *string
	FuelSystem       *string
	Cooling          *string
	Gearbox          *string
	Transmission     *string
	Clutch           *string
	Frame            *string
	FrontSuspension  *string
	RearSuspension   *string
	FrontBrakes      *string
	RearBrakes       *string
	FrontTyre        *string
	RearTyre         *string
	FrontWheelTravel *string
	RearWheelTravel  *string
	Wheelbase        *string
	SeatHeight       *string
	GroundClearance  *string
	DryWeight        *string
	WetWeight        *string
	FuelCapacity     *string
	TopSpeed         *string

	// AdditionalInfo holds source-specific extras that have no named field
	// (drivetrain, fuel economy figures, dimensions, raw payloads). Later
	// writes within one mapping pass overwrite earlier ones for the same key.
	AdditionalInfo map[string]string

	// Provenance.
	ScrapedAt time.Time
	SourceURL string
}

// NewSpecification returns an empty specification with the additional-info
// bag initialised.
func NewSpecification() *Specification {
	return &Specification{AdditionalInfo: map[string]string{}}
}

// AddInfo merges a key/value pair into the additional-info bag.
func (s *Specification) AddInfo(key, value string) {
	if s.AdditionalInfo == nil {
		s.AdditionalInfo = map[string]string{}
	}
	s.AdditionalInfo[key] = value
}

// MergeInfo merges all entries of m into the additional-info bag, with
// entries of m taking precedence over existing keys.
func (s *Specification) MergeInfo(m map[string]string) {
	for k, v := range m {
		s.AddInfo(k, v)
	}
}

// IsEmpty reports whether no named field and no additional info was set.
// An empty specification is treated as a no-match by the adapters.
func (s *Specification) IsEmpty() bool {
	if len(s.AdditionalInfo) > 0 {
		return false
	}
	for _, f := range s.namedFields() {
		if f != nil {
			return false
		}
	}
	return true
}

// Fields returns the populated named fields keyed by attribute name,
// in a stable order suitable for display.
func (s *Specification) Fields() []Field {
	names := [...]string{
		"engine_type", "displacement", "power", "torque", "compression",
		"bore_stroke", "fuel_system", "cooling", "gearbox", "transmission",
		"clutch", "frame", "front_suspension", "rear_suspension",
		"front_brakes", "rear_brakes", "front_tyre", "rear_tyre",
		"front_wheel_travel", "rear_wheel_travel", "wheelbase", "seat_height",
		"ground_clearance", "dry_weight", "wet_weight", "fuel_capacity",
		"top_speed",
	}
	var out []Field
	for i, f := range s.namedFields() {
		if f != nil {
			out = append(out, Field{Name: names[i], Value: *f})
		}
	}
	return out
}

// Field is one populated named attribute of a specification.
type Field struct {
	Name  string
	Value string
}

func (s *Specification) namedFields() []*string {
	return []*string{
		s.EngineType, s.Displacement, s.Power, s.Torque, s.Compression,
		s.BoreStroke, s.FuelSystem, s.Cooling, s.Gearbox, s.Transmission,
		s.Clutch, s.Frame, s.FrontSuspension, s.RearSuspension,
		s.FrontBrakes, s.RearBrakes, s.FrontTyre, s.RearTyre,
		s.FrontWheelTravel, s.RearWheelTravel, s.Wheelbase, s.SeatHeight,
		s.GroundClearance, s.DryWeight, s.WetWeight, s.FuelCapacity,
		s.TopSpeed,
	}
}

// Str returns a pointer to v, for populating optional specification fields.
func Str(v string) *string {
	return &v
}
