package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresClientRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresClientRepository(db *sql.DB, logger *logrus.Logger) domain.ClientRepository {
	return &postgresClientRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresClientRepository) CreateClient(client *domain.Client) (*domain.Client, error) {
	query := `
        INSERT INTO clients (name, address)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, client.Name, client.Address).
		Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		r.log.Errorf("Failed to create client '%s': %v", client.Name, err)
		return nil, fmt.Errorf("could not create client: %w", err)
	}
	r.log.Infof("Client created successfully with ID: %d, Name: %s", client.ID, client.Name)
	return client, nil
}

func (r *postgresClientRepository) GetClientByID(id int) (*domain.Client, error) {
	query := `SELECT id, name, address, created_at, updated_at FROM clients WHERE id = $1`
	client := &domain.Client{}
	var address sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&client.ID,
		&client.Name,
		&address,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Client with ID %d not found", id)
			return nil, &domain.NotFoundError{Entity: "client", ID: id}
		}
		r.log.Errorf("Failed to get client by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get client by id: %w", err)
	}
	client.Address = address.String
	return client, nil
}

func (r *postgresClientRepository) ListClients() ([]domain.Client, error) {
	query := `SELECT id, name, address, created_at, updated_at FROM clients ORDER BY id ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		r.log.Errorf("Failed to list clients: %v", err)
		return nil, fmt.Errorf("could not list clients: %w", err)
	}
	defer rows.Close()

	clients := []domain.Client{}
	for rows.Next() {
		var client domain.Client
		var address sql.NullString
		if err := rows.Scan(&client.ID, &client.Name, &address, &client.CreatedAt, &client.UpdatedAt); err != nil {
			r.log.Errorf("Failed to scan client row: %v", err)
			return nil, fmt.Errorf("error scanning client data: %w", err)
		}
		client.Address = address.String
		clients = append(clients, client)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during clients list iteration: %v", err)
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	r.log.Infof("Retrieved %d clients", len(clients))
	return clients, nil
}
