package api

import (
	"time"

	"github.com/google/uuid"
)

// CreateSpaceRequest is the space creation representation:
// {"controller": <identity URI>, "link": <href of the space's linkset>}.
type CreateSpaceRequest struct {
	Controller string `json:"controller" binding:"required"`
	Link       string `json:"link" binding:"required"`
}

// SpaceResponse is returned by the admin listing.
type SpaceResponse struct {
	ID          uuid.UUID `json:"id"`
	Controller  string    `json:"controller"`
	LinksetHref string    `json:"linkset_href"`
	CreatedAt   time.Time `json:"created_at"`
}

// TokenResponse is returned by the session-token exchange.
type TokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}
