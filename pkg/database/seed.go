package database

import (
	"estudiapro_backend/internal/model"

	"gorm.io/gorm"
)

// DefaultAchievements is the catalog installed on an empty database.
var DefaultAchievements = []model.Achievement{
	{Name: "Primeros pasos", Description: "Completa tu primer recurso", Icon: "footprints", Type: model.AchievementResourcesCompleted, Threshold: 1, RewardPoints: 10},
	{Name: "Lector constante", Description: "Completa 25 recursos", Icon: "book", Type: model.AchievementResourcesCompleted, Threshold: 25, RewardPoints: 50},
	{Name: "Aprobado", Description: "Aprueba tu primer examen", Icon: "check", Type: model.AchievementExamsPassed, Threshold: 1, RewardPoints: 20},
	{Name: "Examinador", Description: "Aprueba 10 examenes", Icon: "medal", Type: model.AchievementExamsPassed, Threshold: 10, RewardPoints: 100},
	{Name: "Curso terminado", Description: "Completa un curso", Icon: "trophy", Type: model.AchievementCoursesCompleted, Threshold: 1, RewardPoints: 50},
	{Name: "Racha de 7 dias", Description: "Estudia 7 dias seguidos", Icon: "flame", Type: model.AchievementStreak, Threshold: 7, RewardPoints: 30},
	{Name: "Centenario", Description: "Alcanza 100 puntos", Icon: "star", Type: model.AchievementPoints, Threshold: 100, RewardPoints: 0},
}

func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, a := range DefaultAchievements {
		a.Active = true
		if err := db.Create(&a).Error; err != nil {
			return err
		}
	}
	return nil
}
