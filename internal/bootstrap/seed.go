package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"ramplog.app/backend/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Trick{},
		&entity.Article{},
		&entity.Product{},
		&entity.Park{},
		&entity.Event{},
		&entity.EventRegistration{},
		&entity.TrickProgress{},
		&entity.Achievement{},
		&entity.UserAchievement{},
		&entity.LikeEdge{},
		&entity.Comment{},
		&entity.ReactionCounter{},
		&entity.Favorite{},
		&entity.HiddenFeedItem{},
		&entity.ArticleRead{},
		&entity.Notification{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Catalog administrator"},
		{Name: entity.RoleRider, Description: "Rider"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAchievements makes sure the milestone rows exist before anyone can
// earn them.
func SeedAchievements(db *gorm.DB) error {
	defaults := []entity.Achievement{
		{Code: "first_mastery", Title: "First Mastery", Description: "Mastered your first trick"},
		{Code: "ten_mastered", Title: "Double Digits", Description: "Mastered ten tricks"},
	}

	for _, achievement := range defaults {
		var count int64
		if err := db.Model(&entity.Achievement{}).
			Where("code = ?", achievement.Code).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&achievement).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func SeedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@ramplog.app").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@ramplog.app",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	adminProfile := entity.Profile{
		UserID:   adminUser.ID,
		FullName: "Administrator",
		Bio:      stringPtr("System Administrator"),
	}

	if err := db.Create(&adminProfile).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@ramplog.app")
	log.Println("   Password: admin123")

	return nil
}

func stringPtr(s string) *string {
	return &s
}
