package database

import (
	"errors"
	"fmt"

	"github.com/bugpredictor/config"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/models"
	"github.com/bugpredictor/utils"
	"gorm.io/gorm"
)

// EnsureSuperuser creates the configured operator account if it does not exist yet
func EnsureSuperuser(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}
	if cfg.Password == "" {
		return errors.New("admin password must be set when admin email is configured")
	}

	var existing models.User
	err := db.Where("email = ?", cfg.Email).First(&existing).Error
	if err == nil {
		if !existing.IsSuperuser {
			return db.Model(&existing).Update("is_superuser", true).Error
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}
	admin := models.User{
		Username:    cfg.Username,
		Email:       cfg.Email,
		Password:    hashed,
		FullName:    "Administrator",
		Role:        models.RoleProjectOwner,
		Verified:    true,
		IsSuperuser: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}
	logger.Info("Created superuser %s", cfg.Email)
	return nil
}

var demoMembers = []struct{ Username, FullName string }{
	{"ava", "Ava Thompson"},
	{"liam", "Liam Carter"},
	{"mia", "Mia Robinson"},
	{"noah", "Noah Patel"},
	{"zoe", "Zoe Martinez"},
	{"ethan", "Ethan Brooks"},
	{"lily", "Lily Nguyen"},
	{"owen", "Owen Fischer"},
	{"ruby", "Ruby Alvarez"},
	{"jack", "Jack Sullivan"},
}

// SeedDemoData creates one demo project with ten team members sharing password
func SeedDemoData(db *gorm.DB, password string) (*models.Project, error) {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	project := models.Project{
		Name:        "Bug Severity Prediction Project",
		Description: "This project is for predicting bug severity",
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, m := range demoMembers {
			user := models.User{
				Username:  m.Username,
				Email:     m.Username + "@example.com",
				Password:  hashed,
				FullName:  m.FullName,
				Role:      models.RoleTeamMember,
				ProjectID: &project.ID,
				Verified:  true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create demo member %s: %w", m.Username, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}
