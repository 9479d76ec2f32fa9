package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// SpotRepo implements repository.SpotRepository over MySQL.
type SpotRepo struct {
	q    queryer
	inTx bool
}

// CreateRange inserts Available spots numbered from..to for the lot
// in a single statement.
func (r *SpotRepo) CreateRange(ctx context.Context, lotID uint64, from, to int) error {
	if from > to {
		return nil
	}
	query := `INSERT INTO parking_spots (lot_id, spot_number, status) VALUES `
	args := make([]any, 0, (to-from+1)*3)
	for n := from; n <= to; n++ {
		if n > from {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, lotID, n, model.StatusAvailable)
	}
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a spot by id.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.ParkingSpot, error) {
	const q = `SELECT id, lot_id, spot_number, status, created_at
	           FROM parking_spots WHERE id = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q, id))
}

// ListByLot returns the lot's spots ordered by spot number.
func (r *SpotRepo) ListByLot(ctx context.Context, lotID uint64) ([]model.ParkingSpot, error) {
	const q = `SELECT id, lot_id, spot_number, status, created_at
	           FROM parking_spots WHERE lot_id = ? ORDER BY spot_number`
	rows, err := r.q.QueryContext(ctx, q, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ParkingSpot
	for rows.Next() {
		var s model.ParkingSpot
		if err := rows.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// FirstAvailableInLot returns the available spot with the lowest
// spot number. Inside a transaction the row is locked with
// FOR UPDATE so two concurrent bookings cannot both select it.
func (r *SpotRepo) FirstAvailableInLot(ctx context.Context, lotID uint64) (*model.ParkingSpot, error) {
	q := `SELECT id, lot_id, spot_number, status, created_at
	      FROM parking_spots
	      WHERE lot_id = ? AND status = ?
	      ORDER BY spot_number LIMIT 1`
	if r.inTx {
		q += " FOR UPDATE"
	}
	return r.scanOne(r.q.QueryRowContext(ctx, q, lotID, model.StatusAvailable))
}

func (r *SpotRepo) scanOne(row *sql.Row) (*model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := row.Scan(&s.ID, &s.LotID, &s.SpotNumber, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// UpdateStatus flips a spot between Available and Occupied.
func (r *SpotRepo) UpdateStatus(ctx context.Context, id uint64, status model.SpotStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE parking_spots SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrSpotNotFound
	}
	return nil
}

// DeleteAvailableAbove removes every Available spot of the lot whose
// number exceeds threshold. Occupied spots are never touched, so a
// capacity shrink stays best-effort.
func (r *SpotRepo) DeleteAvailableAbove(ctx context.Context, lotID uint64, threshold int) (int, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM parking_spots WHERE lot_id = ? AND status = ? AND spot_number > ?`,
		lotID, model.StatusAvailable, threshold)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// CountByLot counts all spots of a lot.
func (r *SpotRepo) CountByLot(ctx context.Context, lotID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = ?`, lotID).Scan(&n)
	return n, err
}

// CountByLotAndStatus counts a lot's spots with the given status.
func (r *SpotRepo) CountByLotAndStatus(ctx context.Context, lotID uint64, status model.SpotStatus) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE lot_id = ? AND status = ?`, lotID, status).Scan(&n)
	return n, err
}

// Count counts all spots across every lot.
func (r *SpotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_spots`).Scan(&n)
	return n, err
}

// CountByStatus counts all spots with the given status.
func (r *SpotRepo) CountByStatus(ctx context.Context, status model.SpotStatus) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parking_spots WHERE status = ?`, status).Scan(&n)
	return n, err
}
