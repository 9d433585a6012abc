package service

import (
	"claudecode-es/backend/internal/model"
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/util"
	"claudecode-es/backend/pkg/validators"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
)

// UserManager owns the user:<email> records and the users:emails set
type UserManager struct {
	store store.Store
	clock util.Clock
}

func NewUserManager(s store.Store, clock util.Clock) *UserManager {
	if clock == nil {
		clock = util.RealClock{}
	}

	return &UserManager{
		store: s,
		clock: clock,
	}
}

// Get returns nil without error when the user doesn't exist
func (m *UserManager) Get(ctx context.Context, email string) (*model.User, error) {
	b, err := m.store.Get(ctx, store.UserKey(validators.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read user record, %w", err)
	}

	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("corrupt user record, %w", err)
	}

	if u.Progress.CompletedLessons == nil {
		u.Progress.CompletedLessons = []string{}
	}

	return &u, nil
}

func (m *UserManager) save(ctx context.Context, u *model.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}

	if err := m.store.Set(ctx, store.UserKey(u.Email), b, 0); err != nil {
		return fmt.Errorf("failed to save user record, %w", err)
	}

	return nil
}

// Upsert is called on every successful login. New users are also added to
// the export set.
func (m *UserManager) Upsert(ctx context.Context, email string) (*model.User, error) {
	email = validators.NormalizeEmail(email)

	u, err := m.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()

	if u != nil {
		u.LastLoginAt = now
		if err := m.save(ctx, u); err != nil {
			return nil, err
		}

		return u, nil
	}

	u = &model.User{
		Email:       email,
		CreatedAt:   now,
		LastLoginAt: now,
		Progress: model.Progress{
			CompletedLessons: []string{},
		},
	}

	if err := m.save(ctx, u); err != nil {
		return nil, err
	}

	if err := m.store.SAdd(ctx, store.UserEmailsKey, email); err != nil {
		return nil, fmt.Errorf("failed to add email to export set, %w", err)
	}

	return u, nil
}

// MarkLessonComplete is idempotent. Unknown users are ignored and get a nil
// progress back.
func (m *UserManager) MarkLessonComplete(ctx context.Context, email, lessonID string) (*model.Progress, error) {
	u, err := m.Get(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}

	if !slices.Contains(u.Progress.CompletedLessons, lessonID) {
		u.Progress.CompletedLessons = append(u.Progress.CompletedLessons, lessonID)
	}
	u.Progress.CurrentLesson = lessonID

	if err := m.save(ctx, u); err != nil {
		return nil, err
	}

	return &u.Progress, nil
}

func (m *UserManager) GetProgress(ctx context.Context, email string) (*model.Progress, error) {
	u, err := m.Get(ctx, email)
	if err != nil {
		return nil, err
	}

	if u == nil {
		return &model.Progress{CompletedLessons: []string{}}, nil
	}

	return &u.Progress, nil
}

// Emails lists every user that ever logged in, sorted
func (m *UserManager) Emails(ctx context.Context) ([]string, error) {
	emails, err := m.store.SMembers(ctx, store.UserEmailsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read email set, %w", err)
	}

	sort.Strings(emails)
	return emails, nil
}
