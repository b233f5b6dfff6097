// Package partner holds the clients who buy plots. Clients are referenced
// by sales, receipts and cancellations but never owned by them.
package partner

import (
	"regexp"
	"strings"

	"github.com/landerp/backend/internal/domain/shared"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "ACTIVE"
	ClientStatusInactive ClientStatus = "INACTIVE"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	nidPattern   = regexp.MustCompile(`^\d{10}$|^\d{13}$|^\d{17}$`)
)

// Client is a plot buyer
type Client struct {
	shared.BaseAggregateRoot
	Code    string
	Name    string
	Phone   string
	Email   string
	NID     string // national ID: 10, 13 or 17 digits
	Address string
	Status  ClientStatus
	Notes   string
}

// NewClient creates an active client
func NewClient(code, name, phone string) (*Client, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := validateClientCode(code); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Phone:             strings.TrimSpace(phone),
		Status:            ClientStatusActive,
	}, nil
}

// Update updates the client's name and phone
func (c *Client) Update(name, phone string) error {
	name = strings.TrimSpace(name)
	if err := validateClientName(name); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	c.Name = name
	c.Phone = strings.TrimSpace(phone)
	c.IncrementVersion()
	return nil
}

// SetIdentity sets email, national ID and postal address
func (c *Client) SetIdentity(email, nid, address string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if len(email) > 200 {
			return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
		}
		if !emailPattern.MatchString(email) {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	nid = strings.TrimSpace(nid)
	if nid != "" && !nidPattern.MatchString(nid) {
		return shared.NewDomainError("INVALID_NID", "National ID must have 10, 13 or 17 digits")
	}
	if len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	c.Email = email
	c.NID = nid
	c.Address = strings.TrimSpace(address)
	c.IncrementVersion()
	return nil
}

// SetNotes sets free-form notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.IncrementVersion()
}

// Activate activates the client
func (c *Client) Activate() error {
	if c.Status == ClientStatusActive {
		return shared.NewInvalidStateError("Client is already active")
	}
	c.Status = ClientStatusActive
	c.IncrementVersion()
	return nil
}

// Deactivate deactivates the client
func (c *Client) Deactivate() error {
	if c.Status == ClientStatusInactive {
		return shared.NewInvalidStateError("Client is already inactive")
	}
	c.Status = ClientStatusInactive
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the client is active
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

func validateClientCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Client code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Client code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is required")
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}
