package database

import (
	"fmt"
	"os"
	"time"

	"access-governance/internal/catalog"
	"access-governance/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) error {
	log := zap.S()
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Info("connected to DB successfully")
			break
		}

		log.Warnw("failed to connect to DB", "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return fmt.Errorf("failed to connect to db after %d attempts: %w", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		return err
	}

	createDefaultAdmin()
	seedDefaultUsers()
	return nil
}

// Migrate создаёт и обновляет схему.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.BusinessRole{},
		&models.RoleGrant{},
		&models.SoDRule{},
		&models.Violation{},
		&models.Framework{},
		&models.ControlObjective{},
		&models.Evidence{},
		&models.AssessmentResult{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// админ только из кода/конфига
func createDefaultAdmin() {
	log := zap.S()

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin@grc.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "Admin123!"
	}

	var count int64
	if err := DB.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		log.Errorw("failed to check admin user", "error", err)
		return
	}
	if count > 0 {
		// админ уже есть, ничего не делаем
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorw("failed to hash default admin password", "error", err)
		return
	}

	now := time.Now()
	admin := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		FullName:     "Console Administrator",
		LastLoginAt:  &now,
	}

	if err := DB.Create(&admin).Error; err != nil {
		log.Errorw("failed to create default admin", "error", err)
		return
	}

	log.Infow("created default admin user", "username", username)
}

// пара тестовых операторов для демо (auditor и manager)
func seedDefaultUsers() {
	log := zap.S()

	type seedUser struct {
		Username string
		Password string
		Role     models.UserRole
	}

	users := []seedUser{
		{Username: "auditor@grc.local", Password: "Audit123!", Role: models.RoleAuditor},
		{Username: "manager@grc.local", Password: "Manage123!", Role: models.RoleManager},
	}

	for _, u := range users {
		var count int64
		if err := DB.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			log.Errorw("failed to check seed user", "username", u.Username, "error", err)
			continue
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Errorw("failed to hash seed password", "username", u.Username, "error", err)
			continue
		}

		user := models.User{
			Username:     u.Username,
			PasswordHash: string(hash),
			Role:         u.Role,
		}
		if err := DB.Create(&user).Error; err != nil {
			log.Errorw("failed to create seed user", "username", u.Username, "error", err)
			continue
		}

		log.Infow("created seed user", "username", u.Username, "role", u.Role)
	}
}

// SeedCatalog наполняет справочники из YAML-каталога. Уже существующие записи
// (по коду / ID) не трогает, так что повторный запуск безопасен.
func SeedCatalog(c *catalog.Catalog) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		roleIDs := make(map[string]uint)
		for _, r := range c.Roles {
			role := models.BusinessRole{
				Code:        r.Code,
				Name:        r.Name,
				System:      r.System,
				RiskLevel:   r.RiskLevel,
				IsSensitive: r.Sensitive,
			}
			if role.Name == "" {
				role.Name = r.Code
			}
			if err := tx.Where(models.BusinessRole{Code: r.Code}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", r.Code, err)
			}
			roleIDs[r.Code] = role.ID
		}

		for _, r := range c.Rules {
			rule := RuleToModel(r)
			if err := tx.Where(models.SoDRule{Code: r.ID}).FirstOrCreate(&rule).Error; err != nil {
				return fmt.Errorf("seed rule %s: %w", r.ID, err)
			}
		}

		for _, fw := range c.FrameworkList() {
			objectives := fw.Objectives
			fw.Objectives = nil
			if err := tx.Where(models.Framework{ID: fw.ID}).FirstOrCreate(&fw).Error; err != nil {
				return fmt.Errorf("seed framework %s: %w", fw.ID, err)
			}
			for _, o := range objectives {
				if err := tx.Where(models.ControlObjective{ID: o.ID}).FirstOrCreate(&o).Error; err != nil {
					return fmt.Errorf("seed objective %s: %w", o.ID, err)
				}
			}
		}

		var evidenceCount int64
		if err := tx.Model(&models.Evidence{}).Count(&evidenceCount).Error; err != nil {
			return err
		}
		if evidenceCount == 0 {
			records := c.EvidenceRecords()
			now := time.Now()
			for i := range records {
				if records[i].CollectedAt.IsZero() {
					records[i].CollectedAt = now
				}
			}
			if len(records) > 0 {
				if err := tx.Create(&records).Error; err != nil {
					return fmt.Errorf("seed evidence: %w", err)
				}
			}
		}

		// пользователи каталога, субъекты проверок, входа в консоль у них нет
		for _, s := range c.Subjects {
			username := s.Username
			if username == "" {
				username = "subject-" + s.ID
			}
			var count int64
			if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			user := models.User{
				Username:     username,
				PasswordHash: "!",
				Role:         models.RoleViewer,
				FullName:     s.Name,
				Department:   s.Department,
				RiskScore:    s.RiskScore,
				LastLoginAt:  s.LastLoginAt,
			}
			for _, g := range s.Grants {
				user.Grants = append(user.Grants, models.RoleGrant{
					BusinessRoleID: roleIDs[g.Role],
					Justification:  g.Justification,
				})
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed subject %s: %w", s.ID, err)
			}
		}

		zap.S().Infow("catalog seeded",
			"roles", len(c.Roles), "rules", len(c.Rules),
			"frameworks", len(c.Frameworks), "subjects", len(c.Subjects))
		return nil
	})
}
