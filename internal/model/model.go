// Package model defines the records, session and inputs shared by the client layers.
package model

import (
	"encoding/json"
	"time"
)

// Session is the authenticated state of the console. Only the tokens are persisted.
type Session struct {
	AccessToken      string
	RefreshToken     string
	IsAuthenticated  bool
	CurrentUserEmail string
}

// Pagination mirrors the list metadata returned by paginated resources.
type Pagination struct {
	TotalCount  int `json:"totalCount"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// Author is an admin-managed account (also listed as "users" by the console).
type Author struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	CoverImage string    `json:"coverImage,omitempty"`
	IsActive   bool      `json:"isActive"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RecordID returns the server-issued id.
func (a Author) RecordID() string { return a.ID }

// WithActive returns a copy with the active flag set.
func (a Author) WithActive(v bool) Author { a.IsActive = v; return a }

// UnmarshalJSON accepts both "id" and the document-store "_id".
func (a *Author) UnmarshalJSON(b []byte) error {
	type plain Author
	var aux struct {
		plain
		DocID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*a = Author(aux.plain)
	if a.ID == "" {
		a.ID = aux.DocID
	}
	return nil
}

// Category is a news category.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	Image     string    `json:"image,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordID returns the server-issued id.
func (c Category) RecordID() string { return c.ID }

// WithActive returns a copy with the active flag set.
func (c Category) WithActive(v bool) Category { c.IsActive = v; return c }

// UnmarshalJSON accepts both "id" and "_id".
func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	var aux struct {
		plain
		DocID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Category(aux.plain)
	if c.ID == "" {
		c.ID = aux.DocID
	}
	return nil
}

// Dashboard is the free-form payload of the dashboard endpoint.
type Dashboard map[string]any

// LoginResult is the data part of a successful login envelope.
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Author       struct {
		Email string `json:"email"`
	} `json:"author"`
}
