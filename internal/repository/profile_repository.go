// Package repository contains data access logic separated from HTTP handlers.
// This file reads talent profiles. Profiles are maintained by an external
// talent-management flow, so the repository is read-only.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/talent-marketplace/internal/model"
)

// ErrProfileNotFound is returned when a profile cannot be found in the DB.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo encapsulates all database queries related to profiles.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo constructs a ProfileRepo with the provided DB handle.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

const profileColumns = `id, full_name, category, price_per_project, avatar_url, bio, sub_image1, sub_image2, voice_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(s rowScanner) (model.Profile, error) {
	var (
		p                 model.Profile
		price             sql.NullInt64
		bio               sql.NullString
		sub1, sub2, voice sql.NullString
	)
	if err := s.Scan(&p.ID, &p.FullName, &p.Category, &price, &p.AvatarURL, &bio, &sub1, &sub2, &voice); err != nil {
		return model.Profile{}, err
	}
	if price.Valid {
		v := price.Int64
		p.PricePerProject = &v
	}
	p.Bio = bio.String
	p.SubImage1 = nullStringPtr(sub1)
	p.SubImage2 = nullStringPtr(sub2)
	p.VoiceURL = nullStringPtr(voice)
	return p, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// ListAll returns every profile ordered by id.  An empty table yields an
// empty, non-nil slice.
func (r *ProfileRepo) ListAll(ctx context.Context) ([]model.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a single profile.  It returns ErrProfileNotFound if no
// row is found.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}
	return p, nil
}
