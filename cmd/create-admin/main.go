// Seeds the role table and an administrator account. Usage:
//
//	create-admin -email admin@example.com -password secret -name "HR Admin"
package main

import (
	"flag"
	"log"
	"time"

	"onboarding-portal-api/config"
	"onboarding-portal-api/models"
	"onboarding-portal-api/utils"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "", "admin email address")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Administrator", "admin full name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Both -email and -password are required")
	}
	if !utils.ValidateEmail(*email) {
		log.Fatal("Invalid email address")
	}
	if ok, msg := utils.ValidatePassword(*password); !ok {
		log.Fatal(msg)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.InitDB()

	seedRoles()

	var existing models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", *email).First(&existing).Error; err == nil {
		log.Fatalf("User %s already exists", *email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	admin := models.User{
		FullName: *name,
		Email:    *email,
		Password: string(hashed),
		RoleID:   models.RoleAdmin,
		CreateAt: &now,
		UpdateAt: &now,
	}

	if err := config.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	log.Printf("Admin user %s created (user_id=%d)", admin.Email, admin.UserID)
}

func seedRoles() {
	roles := map[int]string{
		models.RoleApplicant: models.RoleNameApplicant,
		models.RoleEmployee:  models.RoleNameEmployee,
		models.RoleAdmin:     models.RoleNameAdmin,
	}

	now := time.Now()
	for id, name := range roles {
		var existing models.Role
		if err := config.DB.Where("role_id = ?", id).First(&existing).Error; err == nil {
			continue
		}
		role := models.Role{
			RoleID:   id,
			Role:     name,
			CreateAt: &now,
			UpdateAt: &now,
		}
		if err := config.DB.Create(&role).Error; err != nil {
			log.Fatalf("Failed to seed role %s: %v", name, err)
		}
	}
}
