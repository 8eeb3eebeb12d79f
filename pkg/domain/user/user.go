package user

import (
	"regexp"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustBook/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeEducator Type = "educator"
	TypeStudent  Type = "student"
)

var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	UserType  Type      `json:"user_type" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return u.Validate()
}

func (u *User) Validate() error {
	if !emailPattern.MatchString(u.Email) {
		return domain.NewValidationError("invalid email format")
	}
	if strings.TrimSpace(u.Name) == "" {
		return domain.NewValidationError("name is required")
	}
	switch u.UserType {
	case TypeEducator, TypeStudent:
	default:
		return domain.NewValidationError("user_type must be 'educator' or 'student'")
	}
	return nil
}
