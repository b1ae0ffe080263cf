package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	types "github.com/yungbote/shadownav-backend/internal/domain"
	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			dbErr = errMissingDSN
			return
		}

		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			dbErr = err
			return
		}

		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
			dbErr = err
			return
		}

		if err := autoMigrateAll(db); err != nil {
			dbErr = err
			return
		}
	})

	if errors.Is(dbErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run repo integration tests")
	}
	if dbErr != nil {
		tb.Fatalf("failed to init test db: %v", dbErr)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// UniqueUserID returns a fresh Memberstack-shaped member id and registers a
// cleanup that deletes everything the test wrote under it. Concurrency tests
// commit real rows, so Tx rollback cannot isolate them.
func UniqueUserID(tb testing.TB, db *gorm.DB) string {
	tb.Helper()
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		tb.Fatalf("rand: %v", err)
	}
	userID := fmt.Sprintf("mem_test_%s", hex.EncodeToString(buf))
	tb.Cleanup(func() {
		CleanupUser(tb, db, userID)
	})
	return userID
}

func CleanupUser(tb testing.TB, db *gorm.DB, userID string) {
	tb.Helper()
	var runIDs []string
	if err := db.Model(&types.Run{}).Where("user_id = ?", userID).Pluck("id", &runIDs).Error; err != nil {
		tb.Fatalf("cleanup: list runs: %v", err)
	}
	if len(runIDs) > 0 {
		var threadIDs []string
		if err := db.Model(&types.Thread{}).Where("run_id IN ?", runIDs).Pluck("id", &threadIDs).Error; err != nil {
			tb.Fatalf("cleanup: list threads: %v", err)
		}
		if len(threadIDs) > 0 {
			if err := db.Where("thread_id IN ?", threadIDs).Delete(&types.Message{}).Error; err != nil {
				tb.Fatalf("cleanup: delete messages: %v", err)
			}
		}
		if err := db.Where("run_id IN ?", runIDs).Delete(&types.Card{}).Error; err != nil {
			tb.Fatalf("cleanup: delete cards: %v", err)
		}
		if err := db.Where("run_id IN ?", runIDs).Delete(&types.Thread{}).Error; err != nil {
			tb.Fatalf("cleanup: delete threads: %v", err)
		}
	}
	if err := db.Where("user_id = ?", userID).Delete(&types.Run{}).Error; err != nil {
		tb.Fatalf("cleanup: delete runs: %v", err)
	}
	if err := db.Where("user_id = ?", userID).Delete(&types.UserFlag{}).Error; err != nil {
		tb.Fatalf("cleanup: delete user flags: %v", err)
	}
}

func autoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Run{},
		&types.Thread{},
		&types.Message{},
		&types.Card{},
		&types.UserFlag{},
		&types.StripeWebhookEvent{},
	)
}
