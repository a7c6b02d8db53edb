package models

import (
	"time"

	"github.com/portal/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Username         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	FirstName        string `gorm:"type:varchar(100)"`
	LastName         string `gorm:"type:varchar(100)"`
	Email            string `gorm:"type:varchar(200)"`
	PasswordHash     string `gorm:"type:varchar(255);not null"`
	IsAdmin          bool   `gorm:"not null;default:false;index"`
	BenefitStartDate *time.Time
	SSN              string `gorm:"column:ssn;type:varchar(20)"`
	DOB              string `gorm:"column:dob;type:varchar(20)"`
	Address          string `gorm:"type:varchar(500)"`
	BankAcc          string `gorm:"type:varchar(50)"`
	BankRouting      string `gorm:"type:varchar(50)"`
	Website          string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:       m.BaseModel.ToDomain(),
		Username:         m.Username,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		IsAdmin:          m.IsAdmin,
		BenefitStartDate: m.BenefitStartDate,
		Profile: identity.Profile{
			SSN:         m.SSN,
			DOB:         m.DOB,
			Address:     m.Address,
			BankAcc:     m.BankAcc,
			BankRouting: m.BankRouting,
			Website:     m.Website,
		},
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Username = u.Username
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.IsAdmin = u.IsAdmin
	m.BenefitStartDate = u.BenefitStartDate
	m.SSN = u.Profile.SSN
	m.DOB = u.Profile.DOB
	m.Address = u.Profile.Address
	m.BankAcc = u.Profile.BankAcc
	m.BankRouting = u.Profile.BankRouting
	m.Website = u.Profile.Website
}

// UserModelFromDomain creates a new persistence model from a domain User.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
