package usecase

import (
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type ClientUseCase interface {
	CreateClient(client *domain.Client) (*domain.Client, error)
	GetClientByID(id int) (*domain.Client, error)
	ListClients() ([]domain.Client, error)
}

type clientUseCase struct {
	clientRepo domain.ClientRepository
	log        *logrus.Logger
}

func NewClientUseCase(repo domain.ClientRepository, logger *logrus.Logger) ClientUseCase {
	return &clientUseCase{
		clientRepo: repo,
		log:        logger,
	}
}

func (uc *clientUseCase) CreateClient(client *domain.Client) (*domain.Client, error) {
	if client.Name == "" {
		uc.log.Warn("Use Case: Attempted to create client with empty name")
		return nil, &domain.ValidationError{Reason: "client name cannot be empty"}
	}

	uc.log.Infof("Use Case: Attempting to create client '%s'", client.Name)
	createdClient, err := uc.clientRepo.CreateClient(client)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create client '%s': %v", client.Name, err)
		return nil, err
	}
	return createdClient, nil
}

func (uc *clientUseCase) GetClientByID(id int) (*domain.Client, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get client with invalid ID: %d", id)
		return nil, &domain.ValidationError{Reason: "invalid client ID"}
	}
	return uc.clientRepo.GetClientByID(id)
}

func (uc *clientUseCase) ListClients() ([]domain.Client, error) {
	clients, err := uc.clientRepo.ListClients()
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list clients: %v", err)
		return nil, fmt.Errorf("could not retrieve clients: %w", err)
	}
	return clients, nil
}
