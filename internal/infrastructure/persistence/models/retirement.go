package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/shopspring/decimal"
)

// ContributionsModel stores one row of 401k percentages per user.
type ContributionsModel struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primary_key"`
	PreTax    decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	AfterTax  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Roth      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContributionsModel) TableName() string {
	return "contributions"
}

// ToDomain converts the persistence model to domain Contributions
func (m *ContributionsModel) ToDomain() *retirement.Contributions {
	return &retirement.Contributions{
		UserID:   m.UserID,
		PreTax:   m.PreTax,
		AfterTax: m.AfterTax,
		Roth:     m.Roth,
	}
}

// ContributionsModelFromDomain creates a persistence model from domain Contributions
func ContributionsModelFromDomain(c *retirement.Contributions) *ContributionsModel {
	return &ContributionsModel{
		UserID:    c.UserID,
		PreTax:    c.PreTax,
		AfterTax:  c.AfterTax,
		Roth:      c.Roth,
		UpdatedAt: time.Now(),
	}
}

// AllocationModel stores a user's asset allocation split in percent.
type AllocationModel struct {
	UserID uuid.UUID `gorm:"type:uuid;primary_key"`
	Stocks int       `gorm:"not null"`
	Funds  int       `gorm:"not null"`
	Bonds  int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AllocationModel) TableName() string {
	return "allocations"
}

// ToDomain converts the persistence model to a domain Allocation
func (m *AllocationModel) ToDomain() *retirement.Allocation {
	return &retirement.Allocation{
		UserID: m.UserID,
		Stocks: m.Stocks,
		Funds:  m.Funds,
		Bonds:  m.Bonds,
	}
}

// AllocationModelFromDomain creates a persistence model from a domain Allocation
func AllocationModelFromDomain(a *retirement.Allocation) *AllocationModel {
	return &AllocationModel{
		UserID: a.UserID,
		Stocks: a.Stocks,
		Funds:  a.Funds,
		Bonds:  a.Bonds,
	}
}

// MemoModel is the persistence model for a Memo.
type MemoModel struct {
	BaseModel
	Body string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (MemoModel) TableName() string {
	return "memos"
}

// ToDomain converts the persistence model to a domain Memo
func (m *MemoModel) ToDomain() *retirement.Memo {
	return &retirement.Memo{
		BaseEntity: m.BaseModel.ToDomain(),
		Body:       m.Body,
	}
}

// MemoModelFromDomain creates a persistence model from a domain Memo
func MemoModelFromDomain(memo *retirement.Memo) *MemoModel {
	m := &MemoModel{Body: memo.Body}
	m.FromDomainBaseEntity(memo.BaseEntity)
	return m
}
