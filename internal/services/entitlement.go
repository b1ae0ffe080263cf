package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/data/repos"
	"github.com/yungbote/shadownav-backend/internal/platform/dbctx"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// EntitlementService answers "has this member paid". A missing flag row
// means unpaid.
type EntitlementService interface {
	Paid(ctx context.Context, userID string) (bool, error)
	SetPaid(ctx context.Context, userID string, paid bool) error
}

type entitlementService struct {
	db    *gorm.DB
	log   *logger.Logger
	flags repos.UserFlagRepo
}

func NewEntitlementService(gdb *gorm.DB, log *logger.Logger, flags repos.UserFlagRepo) EntitlementService {
	return &entitlementService{db: gdb, log: log.With("service", "EntitlementService"), flags: flags}
}

func (s *entitlementService) Paid(ctx context.Context, userID string) (bool, error) {
	flag, err := s.flags.Get(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return false, err
	}
	return flag != nil && flag.Paid, nil
}

func (s *entitlementService) SetPaid(ctx context.Context, userID string, paid bool) error {
	return s.flags.SetPaid(dbctx.Context{Ctx: ctx}, userID, paid)
}
