package service

import (
	"claudecode-es/backend/internal/model"
	"claudecode-es/backend/pkg/util"
	"claudecode-es/backend/pkg/validators"
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Leads struct {
	db    *gorm.DB
	clock util.Clock
}

func NewLeads(db *gorm.DB, clock util.Clock) *Leads {
	if clock == nil {
		clock = util.RealClock{}
	}

	return &Leads{
		db:    db,
		clock: clock,
	}
}

// Capture stores email once. created is false when it was already known.
func (l *Leads) Capture(ctx context.Context, email, source string) (created bool, err error) {
	if err := validators.EmailValidator(email); err != nil {
		return false, ErrInvalidEmail
	}

	lead := model.Lead{
		Email:     validators.NormalizeEmail(email),
		Source:    source,
		CreatedAt: l.clock.Now(),
	}

	r := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&lead)
	if r.Error != nil {
		return false, fmt.Errorf("failed to store lead, %w", r.Error)
	}

	return r.RowsAffected > 0, nil
}
