package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/shadownav-backend/internal/data/repos"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

type Repos struct {
	Run          repos.RunRepo
	Thread       repos.ThreadRepo
	Message      repos.MessageRepo
	Card         repos.CardRepo
	UserFlag     repos.UserFlagRepo
	WebhookEvent repos.WebhookEventRepo
}

func wireRepos(gdb *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Run:          repos.NewRunRepo(gdb, log),
		Thread:       repos.NewThreadRepo(gdb, log),
		Message:      repos.NewMessageRepo(gdb, log),
		Card:         repos.NewCardRepo(gdb, log),
		UserFlag:     repos.NewUserFlagRepo(gdb, log),
		WebhookEvent: repos.NewWebhookEventRepo(gdb, log),
	}
}
