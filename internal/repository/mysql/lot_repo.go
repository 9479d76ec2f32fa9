package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// LotRepo implements repository.LotRepository over MySQL.
type LotRepo struct{ q queryer }

// Create inserts a lot row. On success the lot's ID is populated.
func (r *LotRepo) Create(ctx context.Context, lot *model.ParkingLot) error {
	const q = `INSERT INTO parking_lots
	           (prime_location_name, address, pin_code, price_per_hour, maximum_number_of_spots)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q,
		lot.PrimeLocationName, lot.Address, lot.PinCode, lot.PricePerHour, lot.MaximumNumberOfSpots)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	lot.ID = uint64(id)
	return nil
}

// GetByID fetches a lot by id.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingLot, error) {
	const q = `SELECT id, prime_location_name, address, pin_code, price_per_hour,
	                  maximum_number_of_spots, created_at
	           FROM parking_lots WHERE id = ? LIMIT 1`
	var lot model.ParkingLot
	err := r.q.QueryRowContext(ctx, q, id).Scan(
		&lot.ID, &lot.PrimeLocationName, &lot.Address, &lot.PinCode,
		&lot.PricePerHour, &lot.MaximumNumberOfSpots, &lot.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrLotNotFound
		}
		return nil, err
	}
	return &lot, nil
}

// GetAll returns every lot ordered by id.
func (r *LotRepo) GetAll(ctx context.Context) ([]model.ParkingLot, error) {
	const q = `SELECT id, prime_location_name, address, pin_code, price_per_hour,
	                  maximum_number_of_spots, created_at
	           FROM parking_lots ORDER BY id`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ParkingLot
	for rows.Next() {
		var lot model.ParkingLot
		if err := rows.Scan(&lot.ID, &lot.PrimeLocationName, &lot.Address, &lot.PinCode,
			&lot.PricePerHour, &lot.MaximumNumberOfSpots, &lot.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, lot)
	}
	return result, rows.Err()
}

// Update rewrites the mutable lot columns.
func (r *LotRepo) Update(ctx context.Context, lot *model.ParkingLot) error {
	const q = `UPDATE parking_lots
	           SET prime_location_name = ?, address = ?, pin_code = ?,
	               price_per_hour = ?, maximum_number_of_spots = ?
	           WHERE id = ?`
	res, err := r.q.ExecContext(ctx, q,
		lot.PrimeLocationName, lot.Address, lot.PinCode,
		lot.PricePerHour, lot.MaximumNumberOfSpots, lot.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrLotNotFound
	}
	return nil
}

// Delete removes a lot and, first, all of its spots. Callers are
// responsible for refusing the delete while any spot is occupied.
func (r *LotRepo) Delete(ctx context.Context, id uint64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, id); err != nil {
		return err
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrLotNotFound
	}
	return nil
}

// Count counts all lots.
func (r *LotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_lots`).Scan(&n)
	return n, err
}
