// Package partner exposes client management.
package partner

import (
	"context"

	"github.com/google/uuid"
	appshared "github.com/landerp/backend/internal/application/shared"
	"github.com/landerp/backend/internal/domain/partner"
	"github.com/landerp/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientService provides client use cases
type ClientService struct {
	uow    *appshared.UnitOfWork
	logger *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(uow *appshared.UnitOfWork, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{uow: uow, logger: logger}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Code, req.Name, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := client.SetIdentity(req.Email, req.NID, req.Address); err != nil {
		return nil, err
	}
	client.SetNotes(req.Notes)

	err = s.uow.Do(ctx, nil, func(w *appshared.Work) error {
		exists, err := w.Repos.Clients().ExistsByCode(ctx, client.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Client code "+client.Code+" already exists")
		}
		return w.Repos.Clients().Save(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	var resp ClientResponse
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		client, err := repos.Clients().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToClientResponse(client)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List lists clients
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientResponse, int64, error) {
	domainFilter := partner.ClientFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status := partner.ClientStatus(filter.Status)
		if status != partner.ClientStatusActive && status != partner.ClientStatusInactive {
			return nil, 0, shared.NewValidationError("Invalid client status: " + filter.Status)
		}
		domainFilter.Status = &status
	}

	var (
		out   []ClientResponse
		total int64
	)
	err := s.uow.Read(ctx, func(repos appshared.Repositories) error {
		clients, n, err := repos.Clients().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total = n
		out = make([]ClientResponse, len(clients))
		for i := range clients {
			out[i] = ToClientResponse(&clients[i])
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update updates a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	return s.mutate(ctx, id, func(c *partner.Client) error {
		if err := c.Update(req.Name, req.Phone); err != nil {
			return err
		}
		if err := c.SetIdentity(req.Email, req.NID, req.Address); err != nil {
			return err
		}
		c.SetNotes(req.Notes)
		return nil
	})
}

// Activate activates a client
func (s *ClientService) Activate(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	return s.mutate(ctx, id, func(c *partner.Client) error {
		return c.Activate()
	})
}

// Deactivate deactivates a client. Existing sales are unaffected but no
// new sale or reservation can be made for them.
func (s *ClientService) Deactivate(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	return s.mutate(ctx, id, func(c *partner.Client) error {
		return c.Deactivate()
	})
}

// Delete removes a client that has no active sale
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockClient, id)}, func(w *appshared.Work) error {
		client, err := w.Repos.Clients().FindByID(ctx, id)
		if err != nil {
			return err
		}
		active, err := w.Repos.Sales().CountActiveForClient(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return shared.NewInvalidStateError("Client " + client.Code + " has active sales and cannot be deleted")
		}
		return w.Repos.Clients().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *ClientService) mutate(ctx context.Context, id uuid.UUID, fn func(*partner.Client) error) (*ClientResponse, error) {
	var client *partner.Client
	err := s.uow.Do(ctx, []string{shared.LockKey(appshared.LockClient, id)}, func(w *appshared.Work) error {
		var err error
		if client, err = w.Repos.Clients().FindByID(ctx, id); err != nil {
			return err
		}
		if err := fn(client); err != nil {
			return err
		}
		return w.Repos.Clients().Save(ctx, client)
	})
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}
