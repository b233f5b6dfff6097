package models

import (
	"github.com/landerp/backend/internal/domain/partner"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	Code    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string               `gorm:"type:varchar(200);not null;index"`
	Phone   string               `gorm:"type:varchar(50);not null"`
	Email   string               `gorm:"type:varchar(200)"`
	NID     string               `gorm:"column:nid;type:varchar(20);index"`
	Address string               `gorm:"type:text"`
	Status  partner.ClientStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Notes   string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *partner.Client {
	c := &partner.Client{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Phone:             m.Phone,
		Email:             m.Email,
		NID:               m.NID,
		Address:           m.Address,
		Status:            m.Status,
		Notes:             m.Notes,
	}
	c.MarkPersisted()
	return c
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Code = c.Code
	m.Name = c.Name
	m.Phone = c.Phone
	m.Email = c.Email
	m.NID = c.NID
	m.Address = c.Address
	m.Status = c.Status
	m.Notes = c.Notes
}

// ClientModelFromDomain creates a new persistence model from a domain Client
func ClientModelFromDomain(c *partner.Client) *ClientModel {
	m := &ClientModel{}
	m.FromDomain(c)
	return m
}
