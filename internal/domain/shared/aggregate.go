package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the identity and timestamps every stored record carries
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// AggregateRoot is what a unit of work tracks: a versioned record that
// buffers the events produced by its mutations.
type AggregateRoot interface {
	GetVersion() int
	PersistedVersion() int
	IncrementVersion()
	MarkPersisted()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot implements AggregateRoot.
// Version moves at most one step ahead of the stored version per unit of
// work; SaveWithLock compares the stored row against PersistedVersion.
type BaseAggregateRoot struct {
	BaseEntity
	Version          int           `gorm:"not null;default:1"`
	persistedVersion int           `gorm:"-"`
	domainEvents     []DomainEvent `gorm:"-"`
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int { return a.Version }

// PersistedVersion is the version last read from or written to storage
func (a *BaseAggregateRoot) PersistedVersion() int { return a.persistedVersion }

// IsNew reports whether the aggregate has never touched storage
func (a *BaseAggregateRoot) IsNew() bool { return a.persistedVersion == 0 }

// IncrementVersion bumps the version once per unit of work and refreshes
// UpdatedAt. Aggregates that were never stored keep version 1.
func (a *BaseAggregateRoot) IncrementVersion() {
	if a.persistedVersion > 0 && a.Version == a.persistedVersion {
		a.Version++
	}
	a.UpdatedAt = time.Now()
}

func (a *BaseAggregateRoot) MarkPersisted() { a.persistedVersion = a.Version }

func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }

func (a *BaseAggregateRoot) ClearDomainEvents() { a.domainEvents = nil }

// AuditedAggregateRoot adds the user who created the record
type AuditedAggregateRoot struct {
	BaseAggregateRoot
	CreatedBy uuid.UUID `gorm:"type:uuid;index"`
}

func NewAuditedAggregateRoot(createdBy uuid.UUID) AuditedAggregateRoot {
	return AuditedAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), CreatedBy: createdBy}
}
