// Package storage provides database models and repositories for FleetForge.
package storage

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a fleet vehicle row.
type Vehicle struct {
	ID           uuid.UUID
	Name         string
	Make         string
	Model        string
	Year         int
	Registration string
	Class        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Specification is a persisted specification row. Named attribute columns
// are nullable: a NULL column means the source never reported the value.
type Specification struct {
	ID        uuid.UUID
	VehicleID uuid.UUID

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

	AdditionalInfo string // JSON object, "{}" when empty
	ScrapedAt      time.Time
	SourceURL      string
	CreatedAt      time.Time
}
