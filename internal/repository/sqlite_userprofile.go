package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jarosser06/mosaic/internal/db"
	"github.com/jarosser06/mosaic/internal/domain"
)

// SQLiteUserProfileRepo implements UserProfileRepo over the seeded
// singleton user_profile row.
type SQLiteUserProfileRepo struct {
	db db.DBTX
}

// NewSQLiteUserProfileRepo creates a new SQLiteUserProfileRepo.
func NewSQLiteUserProfileRepo(db db.DBTX) *SQLiteUserProfileRepo {
	return &SQLiteUserProfileRepo{db: db}
}

func (r *SQLiteUserProfileRepo) Get(ctx context.Context) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, email, timezone, week_boundary, default_privacy_level
		 FROM user_profile WHERE id = 'default'`)

	var u domain.UserProfile
	var week int
	var privacy string
	if err := row.Scan(&u.Name, &u.Email, &u.Timezone, &week, &privacy); err != nil {
		return nil, fmt.Errorf("scanning user profile: %w", err)
	}
	u.WeekBoundary = time.Weekday(week % 7)
	u.DefaultPrivacy = domain.PrivacyLevel(privacy)
	return &u, nil
}

func (r *SQLiteUserProfileRepo) Upsert(ctx context.Context, u *domain.UserProfile) error {
	query := `INSERT INTO user_profile (id, name, email, timezone, week_boundary, default_privacy_level)
		VALUES ('default', ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			timezone = excluded.timezone,
			week_boundary = excluded.week_boundary,
			default_privacy_level = excluded.default_privacy_level`
	_, err := r.db.ExecContext(ctx, query,
		u.Name, u.Email, u.Timezone, int(u.WeekBoundary), string(u.DefaultPrivacy))
	if err != nil {
		return fmt.Errorf("upserting user profile: %w", translateConstraint(err))
	}
	return nil
}
