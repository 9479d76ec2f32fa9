package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// ReservationRepo implements repository.ReservationRepository over
// MySQL. Reads join parking_spots so callers always see the resolved
// spot number and lot id.
type ReservationRepo struct{ q queryer }

const reservationColumns = `r.id, r.spot_id, r.user_id, r.parking_timestamp, r.leaving_timestamp,
	       r.parking_cost_per_hour, r.total_cost, r.created_at, s.spot_number, s.lot_id`

// Create inserts an open reservation row. On success the
// reservation's ID is populated.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (spot_id, user_id, parking_timestamp, parking_cost_per_hour)
	           VALUES (?, ?, ?, ?)`
	out, err := r.q.ExecContext(ctx, q,
		res.SpotID, res.UserID, res.ParkingTimestamp, res.ParkingCostPerHour)
	if err != nil {
		return err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// GetByID fetches a reservation with its spot resolved.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
	      FROM reservations r JOIN parking_spots s ON s.id = r.spot_id
	      WHERE r.id = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q, id))
}

// Close stamps the leaving timestamp and total cost. It refuses to
// touch a reservation that is already closed, keeping the release
// idempotency guard effective even under concurrent calls.
func (r *ReservationRepo) Close(ctx context.Context, id uint64, leavingAt time.Time, totalCost float64) error {
	const q = `UPDATE reservations
	           SET leaving_timestamp = ?, total_cost = ?
	           WHERE id = ? AND leaving_timestamp IS NULL`
	res, err := r.q.ExecContext(ctx, q, leavingAt, totalCost, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrReservationNotFound
	}
	return nil
}

// ActiveByUser returns the user's open reservation, if any.
func (r *ReservationRepo) ActiveByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
	      FROM reservations r JOIN parking_spots s ON s.id = r.spot_id
	      WHERE r.user_id = ? AND r.leaving_timestamp IS NULL LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, q, userID))
}

func (r *ReservationRepo) scanOne(row *sql.Row) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(&res.ID, &res.SpotID, &res.UserID, &res.ParkingTimestamp, &res.LeavingTimestamp,
		&res.ParkingCostPerHour, &res.TotalCost, &res.CreatedAt, &res.SpotNumber, &res.LotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// ListByUser returns all of a user's reservations, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
	      FROM reservations r JOIN parking_spots s ON s.id = r.spot_id
	      WHERE r.user_id = ? ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Reservation
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.SpotID, &res.UserID, &res.ParkingTimestamp, &res.LeavingTimestamp,
			&res.ParkingCostPerHour, &res.TotalCost, &res.CreatedAt, &res.SpotNumber, &res.LotID); err != nil {
			return nil, err
		}
		result = append(result, res)
	}
	return result, rows.Err()
}

// CountByUser counts all of a user's reservations.
func (r *ReservationRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

// CountActiveByUser counts the user's open reservations.
func (r *ReservationRepo) CountActiveByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE user_id = ? AND leaving_timestamp IS NULL`,
		userID).Scan(&n)
	return n, err
}

// CountActive counts open reservations across all users.
func (r *ReservationRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE leaving_timestamp IS NULL`).Scan(&n)
	return n, err
}

// SumCostByUser sums total_cost over the user's reservations. Open
// reservations have NULL cost and are excluded by the aggregate.
func (r *ReservationRepo) SumCostByUser(ctx context.Context, userID uint64) (float64, error) {
	var sum sql.NullFloat64
	err := r.q.QueryRowContext(ctx,
		`SELECT SUM(total_cost) FROM reservations WHERE user_id = ?`, userID).Scan(&sum)
	if err != nil {
		return 0, err
	}
	return sum.Float64, nil
}
