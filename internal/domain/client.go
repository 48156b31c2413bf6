package domain

import "time"

// Client is the buyer reference entity. No invariants beyond a name.
type Client struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ClientRepository interface {
	CreateClient(client *Client) (*Client, error)
	GetClientByID(id int) (*Client, error)
	ListClients() ([]Client, error)
}
