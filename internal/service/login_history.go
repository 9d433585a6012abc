package service

import (
	"claudecode-es/backend/internal/model"
	"claudecode-es/backend/pkg/util"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoginHistory keeps an audit trail of successful logins
type LoginHistory struct {
	db    *gorm.DB
	clock util.Clock
}

func NewLoginHistory(db *gorm.DB, clock util.Clock) *LoginHistory {
	if clock == nil {
		clock = util.RealClock{}
	}

	return &LoginHistory{
		db:    db,
		clock: clock,
	}
}

func (h *LoginHistory) Record(ctx context.Context, email, ip, userAgent string) error {
	if len(userAgent) > 512 {
		userAgent = userAgent[:512]
	}

	err := h.db.WithContext(ctx).Create(&model.LoginEvent{
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: h.clock.Now(),
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record login event, %w", err)
	}

	return nil
}

// Prune deletes events older than retention and returns how many were removed
func (h *LoginHistory) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	r := h.db.WithContext(ctx).
		Where("created_at < ?", h.clock.Now().Add(-retention)).
		Delete(&model.LoginEvent{})

	return r.RowsAffected, r.Error
}

// StartCleanup prunes old login events every t until ctx is done. A zero
// retention keeps events forever and doesn't start anything.
func (h *LoginHistory) StartCleanup(ctx context.Context, t, retention time.Duration) {
	if retention <= 0 {
		zap.L().Debug("Login history retention disabled")
		return
	}

	ticker := time.NewTicker(t)

	zap.L().Debug("Login history cleanup attached", zap.Duration("tick_every", t), zap.Duration("retention", retention))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := h.Prune(ctx, retention)
				if err != nil {
					zap.L().Error("Failed to prune login history", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Pruned login history", zap.Int64("count", n))
				}
			}
		}
	}()
}
