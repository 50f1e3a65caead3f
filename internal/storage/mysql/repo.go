package mysql

import (
	"context"
	"database/sql"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"

	"water_map/internal/domain"
)

const dupEntryErrNo = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, n domain.NewRestaurant) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertRestaurantSQL,
		n.Name, n.Address, n.Latitude, n.Longitude, string(n.Policy))
	if err != nil {
		// The unique (name, address) key is what actually guards against
		// duplicates; the service-level pre-check is only a fast path.
		var me *gomysql.MySQLError
		if errors.As(err, &me) && me.Number == dupEntryErrNo {
			return 0, domain.ErrDuplicateSubmission
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) MarkReviewed(ctx context.Context, id int64, action domain.ReviewAction, reviewedBy string, notes *string) (bool, error) {
	status := domain.StatusRejected
	if action == domain.ActionApprove {
		status = domain.StatusApproved
	}
	res, err := r.db.ExecContext(ctx, markReviewedSQL,
		string(status), reviewedBy, valStr(notes), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (domain.Restaurant, error) {
	return scanRestaurant(r.db.QueryRowContext(ctx, getRestaurantSQL, id))
}

func (r *Repo) FindByNameAddress(ctx context.Context, name, address string) (domain.Restaurant, error) {
	return scanRestaurant(r.db.QueryRowContext(ctx, findByNameAddressSQL, name, address))
}

func (r *Repo) ListApproved(ctx context.Context) ([]domain.ApprovedRestaurant, error) {
	rows, err := r.db.QueryContext(ctx, listApprovedSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApprovedRestaurant
	for rows.Next() {
		var a domain.ApprovedRestaurant
		var policy string
		if err := rows.Scan(&a.ID, &a.Name, &a.Address, &a.Latitude, &a.Longitude, &policy); err != nil {
			return nil, err
		}
		a.Policy = domain.WaterBillingPolicy(policy)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repo) ListPending(ctx context.Context) ([]domain.PendingRestaurant, error) {
	rows, err := r.db.QueryContext(ctx, listPendingSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PendingRestaurant
	for rows.Next() {
		var p domain.PendingRestaurant
		var policy, status string
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &p.Address, &p.Latitude, &p.Longitude,
			&policy, &status, &p.SubmittedAt, &notes); err != nil {
			return nil, err
		}
		p.Policy = domain.WaterBillingPolicy(policy)
		p.Status = domain.SubmissionStatus(status)
		if notes.Valid {
			s := notes.String
			p.Notes = &s
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetAdminByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	var a domain.AdminUser
	err := r.db.QueryRowContext(ctx, getAdminByUsernameSQL, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.AdminUser{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.AdminUser{}, err
	}
	return a, nil
}

// UpsertAdmin creates or rotates an admin credential. Used by the
// provisioning CLI only.
func (r *Repo) UpsertAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, upsertAdminSQL, username, passwordHash)
	return err
}

// ---- scanning helpers ----

type rowScanner interface{ Scan(dest ...any) error }

func scanRestaurant(row rowScanner) (domain.Restaurant, error) {
	var rec domain.Restaurant
	var policy, status string
	var reviewedAt sql.NullTime
	var reviewedBy, notes sql.NullString

	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Address, &rec.Latitude, &rec.Longitude,
		&policy, &status,
		&rec.SubmittedAt, &reviewedAt, &reviewedBy, &notes,
	)
	if err == sql.ErrNoRows {
		return domain.Restaurant{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Restaurant{}, err
	}

	rec.Policy = domain.WaterBillingPolicy(policy)
	rec.Status = domain.SubmissionStatus(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		rec.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		s := reviewedBy.String
		rec.ReviewedBy = &s
	}
	if notes.Valid {
		s := notes.String
		rec.Notes = &s
	}
	return rec, nil
}

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
