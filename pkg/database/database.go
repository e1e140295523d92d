package database

import (
	"fmt"
	"log"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := SeedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Journey{},
		&model.Chapter{},
		&model.Lesson{},
		&model.Gym{},
		&model.UserJourney{},
		&model.LessonProgress{},
		&model.RewardGrant{},
		&model.GymChallengeRecord{},
	)
}

// SeedCatalog 在空库时写入默认课程目录
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Journey{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	journey := &model.Journey{
		Name:        "軟體設計模式精通之旅",
		Slug:        "design-patterns",
		Description: "從物件導向基礎一路打到設計模式道館",
		Author:      "水球潘",
		IsPremium:   true,
	}
	if err := db.Create(journey).Error; err != nil {
		return err
	}

	chapters := []struct {
		name    string
		lessons []model.Lesson
		gyms    []model.Gym
	}{
		{
			name: "物件導向基礎",
			lessons: []model.Lesson{
				{Name: "類別與物件", Type: model.LessonTypeVideo, VideoSeconds: 600, RewardExp: 100},
				{Name: "封裝與介面", Type: model.LessonTypeVideo, VideoSeconds: 720, RewardExp: 100},
				{Name: "多型", Type: model.LessonTypeVideo, VideoSeconds: 540, RewardExp: 100, PremiumOnly: true},
			},
			gyms: []model.Gym{
				{Name: "OOP 白色道館", Type: model.GymWhite, Difficulty: 1, RewardExp: 300, BadgeName: "OOP 白帶"},
			},
		},
		{
			name: "經典設計模式",
			lessons: []model.Lesson{
				{Name: "策略模式", Type: model.LessonTypeVideo, VideoSeconds: 900, RewardExp: 150, PremiumOnly: true},
				{Name: "觀察者模式", Type: model.LessonTypeVideo, VideoSeconds: 840, RewardExp: 150, PremiumOnly: true},
			},
			gyms: []model.Gym{
				{Name: "設計模式黑色道館", Type: model.GymBlack, Difficulty: 3, RewardExp: 500, BadgeName: "設計模式黑帶"},
			},
		},
	}

	for i, spec := range chapters {
		chapter := &model.Chapter{
			JourneyID: journey.ID,
			Name:      spec.name,
			Order:     i + 1,
		}
		if err := db.Create(chapter).Error; err != nil {
			return err
		}

		for j := range spec.lessons {
			lesson := spec.lessons[j]
			lesson.ChapterID = chapter.ID
			lesson.JourneyID = journey.ID
			lesson.Order = j + 1
			if err := db.Create(&lesson).Error; err != nil {
				return err
			}
		}
		for j := range spec.gyms {
			gym := spec.gyms[j]
			gym.ChapterID = chapter.ID
			gym.JourneyID = journey.ID
			gym.Order = j + 1
			if err := db.Create(&gym).Error; err != nil {
				return err
			}
		}
	}

	log.Println("Seeded default journey catalog")
	return nil
}
