// Package fleet defines the domain model shared across the specification
// lookup pipeline: the vehicle being resolved and the specification record
// produced by a source adapter.
package fleet

import (
	"strings"
)

// Vehicle classes recognised by the lookup pipeline. Matching on the class
// name is case-insensitive throughout.
const (
	ClassCar        = "Car"
	ClassMotorcycle = "Motorcycle"
	ClassVan        = "Van"
	ClassTruck      = "Truck"
	ClassEV         = "EV"
)

// Vehicle is the read-only input to a specification lookup. It is supplied
// by the caller and never mutated by the pipeline.
type Vehicle struct {
	Make         string
	Model        string
	Year         int    // 0 when unknown
	Registration string // number plate, empty when unknown
	Class        string // vehicle class name, e.g. "Motorcycle"
}

// IsMotorcycle reports whether the vehicle class names a motorcycle.
// The aliases mirror the class names seen in real fleet data.
func IsMotorcycle(class string) bool {
	switch strings.ToLower(class) {
	case "motorcycle", "motorbike", "bike":
		return true
	}
	return false
}
