package achievement

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
	achievementRepo "ramplog.app/backend/internal/modules/achievement/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Trick{},
		&entity.TrickProgress{},
		&entity.Achievement{},
		&entity.UserAchievement{},
	))

	require.NoError(t, db.Create(&entity.Achievement{Code: CodeFirstMastery, Title: "First Mastery"}).Error)
	require.NoError(t, db.Create(&entity.Achievement{Code: CodeTenMastered, Title: "Double Digits"}).Error)
	return db
}

func newTestUser(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()
	user := &entity.User{Username: "rider", Email: "rider@ramplog.test", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func masterTricks(t *testing.T, db *gorm.DB, userID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		trick := &entity.Trick{Name: fmt.Sprintf("trick%d", i), Category: "flip", Difficulty: 1}
		require.NoError(t, db.Create(trick).Error)
		require.NoError(t, db.Create(&entity.TrickProgress{
			UserID:  userID,
			TrickID: trick.ID,
			Status:  entity.ProgressMastered,
		}).Error)
	}
}

func earnedCodes(t *testing.T, svc AchievementService, userID uuid.UUID) []string {
	t.Helper()
	grants, err := svc.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	codes := make([]string, 0, len(grants))
	for _, g := range grants {
		codes = append(codes, g.Achievement.Code)
	}
	return codes
}

func TestFirstMasteryMilestone(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(achievementRepo.NewAchievementRepository(db), nil)
	user := newTestUser(t, db)

	// No mastery yet, nothing awarded.
	require.NoError(t, svc.CheckMasteryMilestones(context.Background(), user.ID))
	assert.Empty(t, earnedCodes(t, svc, user.ID))

	masterTricks(t, db, user.ID, 1)
	require.NoError(t, svc.CheckMasteryMilestones(context.Background(), user.ID))
	assert.ElementsMatch(t, []string{CodeFirstMastery}, earnedCodes(t, svc, user.ID))

	// Re-checking never duplicates the grant.
	require.NoError(t, svc.CheckMasteryMilestones(context.Background(), user.ID))
	assert.Len(t, earnedCodes(t, svc, user.ID), 1)
}

func TestTenMasteredMilestone(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(achievementRepo.NewAchievementRepository(db), nil)
	user := newTestUser(t, db)

	masterTricks(t, db, user.ID, 10)
	require.NoError(t, svc.CheckMasteryMilestones(context.Background(), user.ID))
	assert.ElementsMatch(t, []string{CodeFirstMastery, CodeTenMastered}, earnedCodes(t, svc, user.ID))
}

func TestStartedTricksDoNotCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(achievementRepo.NewAchievementRepository(db), nil)
	user := newTestUser(t, db)

	trick := &entity.Trick{Name: "varial", Category: "flip", Difficulty: 5}
	require.NoError(t, db.Create(trick).Error)
	require.NoError(t, db.Create(&entity.TrickProgress{
		UserID:  user.ID,
		TrickID: trick.ID,
		Status:  entity.ProgressStarted,
	}).Error)

	require.NoError(t, svc.CheckMasteryMilestones(context.Background(), user.ID))
	assert.Empty(t, earnedCodes(t, svc, user.ID))
}
