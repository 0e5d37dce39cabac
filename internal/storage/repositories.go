package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
)

// VehicleRepository handles vehicle CRUD operations.
type VehicleRepository struct {
	db DB
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Create creates a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *Vehicle) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	v.UpdatedAt = time.Now()

	query := `
		INSERT INTO vehicles (id, name, make, model, year, registration, class, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID.String(), v.Name, v.Make, v.Model, v.Year, v.Registration, v.Class,
		v.CreatedAt, v.UpdatedAt,
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	query := `
		SELECT id, name, make, model, year, registration, class, created_at, updated_at
		FROM vehicles WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id.String()))
}

// List lists all vehicles ordered by name.
func (r *VehicleRepository) List(ctx context.Context) ([]*Vehicle, error) {
	query := `
		SELECT id, name, make, model, year, registration, class, created_at, updated_at
		FROM vehicles
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v := &Vehicle{}
		var id string
		if err := rows.Scan(
			&id, &v.Name, &v.Make, &v.Model, &v.Year, &v.Registration, &v.Class,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		v.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update updates a vehicle's mutable fields.
func (r *VehicleRepository) Update(ctx context.Context, v *Vehicle) error {
	v.UpdatedAt = time.Now()

	query := `
		UPDATE vehicles
		SET name = $1, make = $2, model = $3, year = $4, registration = $5, class = $6, updated_at = $7
		WHERE id = $8
	`
	res, err := r.db.ExecContext(ctx, query,
		v.Name, v.Make, v.Model, v.Year, v.Registration, v.Class, v.UpdatedAt,
		v.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a vehicle and its specifications in a single transaction.
func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM specifications WHERE vehicle_id = $1`, id.String()); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (r *VehicleRepository) scanOne(row *sql.Row) (*Vehicle, error) {
	v := &Vehicle{}
	var id string
	err := row.Scan(
		&id, &v.Name, &v.Make, &v.Model, &v.Year, &v.Registration, &v.Class,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	v.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// SpecificationRepository handles persisted specification rows.
type SpecificationRepository struct {
	db DB
}

// NewSpecificationRepository creates a new specification repository.
func NewSpecificationRepository(db DB) *SpecificationRepository {
	return &SpecificationRepository{db: db}
}

const specColumns = `id, vehicle_id, engine_type, displacement, power, torque, compression,
	bore_stroke, fuel_system, cooling, gearbox, transmission, clutch, frame,
	front_suspension, rear_suspension, front_brakes, rear_brakes, front_tyre, rear_tyre,
	front_wheel_travel, rear_wheel_travel, wheelbase, seat_height, ground_clearance,
	dry_weight, wet_weight, fuel_capacity, top_speed, additional_info, scraped_at,
	source_url, created_at`

// Create persists a specification for a vehicle, replacing any previous one.
func (r *SpecificationRepository) Create(ctx context.Context, s *Specification) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	if s.AdditionalInfo == "" {
		s.AdditionalInfo = "{}"
	}

	// The replace must be atomic; a failed insert must not lose the
	// previously stored row.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM specifications WHERE vehicle_id = $1`, s.VehicleID.String()); err != nil {
		return err
	}

	query := `
		INSERT INTO specifications (` + specColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)
	`
	if _, err := tx.ExecContext(ctx, query,
		s.ID.String(), s.VehicleID.String(),
		s.EngineType, s.Displacement, s.Power, s.Torque, s.Compression,
		s.BoreStroke, s.FuelSystem, s.Cooling, s.Gearbox, s.Transmission, s.Clutch, s.Frame,
		s.FrontSuspension, s.RearSuspension, s.FrontBrakes, s.RearBrakes, s.FrontTyre, s.RearTyre,
		s.FrontWheelTravel, s.RearWheelTravel, s.Wheelbase, s.SeatHeight, s.GroundClearance,
		s.DryWeight, s.WetWeight, s.FuelCapacity, s.TopSpeed, s.AdditionalInfo, s.ScrapedAt,
		s.SourceURL, s.CreatedAt,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByVehicle retrieves the stored specification for a vehicle.
func (r *SpecificationRepository) GetByVehicle(ctx context.Context, vehicleID uuid.UUID) (*Specification, error) {
	query := `SELECT ` + specColumns + ` FROM specifications WHERE vehicle_id = $1`

	s := &Specification{}
	var id, vid string
	err := r.db.QueryRowContext(ctx, query, vehicleID.String()).Scan(
		&id, &vid,
		&s.EngineType, &s.Displacement, &s.Power, &s.Torque, &s.Compression,
		&s.BoreStroke, &s.FuelSystem, &s.Cooling, &s.Gearbox, &s.Transmission, &s.Clutch, &s.Frame,
		&s.FrontSuspension, &s.RearSuspension, &s.FrontBrakes, &s.RearBrakes, &s.FrontTyre, &s.RearTyre,
		&s.FrontWheelTravel, &s.RearWheelTravel, &s.Wheelbase, &s.SeatHeight, &s.GroundClearance,
		&s.DryWeight, &s.WetWeight, &s.FuelCapacity, &s.TopSpeed, &s.AdditionalInfo, &s.ScrapedAt,
		&s.SourceURL, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if s.VehicleID, err = uuid.Parse(vid); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteByVehicle removes the stored specification for a vehicle.
func (r *SpecificationRepository) DeleteByVehicle(ctx context.Context, vehicleID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM specifications WHERE vehicle_id = $1`, vehicleID.String())
	return err
}
