package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// CreateDonationDTO used for POST /donations
type CreateDonationDTO struct {
	BookTitle string  `json:"book_title" binding:"required,max=255"`
	Author    string  `json:"author" binding:"required,max=255"`
	ISBN      *string `json:"isbn,omitempty" binding:"omitempty,max=20"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateDonationDTO used for PUT /donations/:id while the request is pending
type UpdateDonationDTO struct {
	BookTitle *string `json:"book_title,omitempty" binding:"omitempty,min=1,max=255"`
	Author    *string `json:"author,omitempty" binding:"omitempty,min=1,max=255"`
	ISBN      *string `json:"isbn,omitempty" binding:"omitempty,max=20"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateDonationStatusDTO used for PUT /donations/:id/status
type UpdateDonationStatusDTO struct {
	Status     string  `json:"status" binding:"required,oneof=APPROVED REJECTED"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// DonationDecisionDTO is the optional body of the approve and reject shortcuts.
type DonationDecisionDTO struct {
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// DonationListQuery binds the admin donation listing filters.
type DonationListQuery struct {
	PageQuery
	UserID *int64 `form:"user_id" binding:"omitempty,min=1"`
	Status string `form:"status"`
}

type DonationResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	BookTitle  string    `json:"book_title"`
	Author     string    `json:"author"`
	ISBN       *string   `json:"isbn,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Status     string    `json:"status"`
	AdminNotes *string   `json:"admin_notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (d CreateDonationDTO) ToModel() models.Donation {
	return models.Donation{
		BookTitle: d.BookTitle,
		Author:    d.Author,
		ISBN:      d.ISBN,
		Notes:     d.Notes,
	}
}

func (d UpdateDonationDTO) ApplyTo(m *models.Donation) {
	if d.BookTitle != nil {
		m.BookTitle = *d.BookTitle
	}
	if d.Author != nil {
		m.Author = *d.Author
	}
	if d.ISBN != nil {
		m.ISBN = d.ISBN
	}
	if d.Notes != nil {
		m.Notes = d.Notes
	}
}

func FromDonation(d *models.Donation) DonationResponse {
	resp := DonationResponse{
		ID:         d.ID,
		UserID:     d.UserID,
		BookTitle:  d.BookTitle,
		Author:     d.Author,
		ISBN:       d.ISBN,
		Notes:      d.Notes,
		Status:     d.Status,
		AdminNotes: d.AdminNotes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.User != nil {
		resp.Username = d.User.Username
	}
	return resp
}

func FromDonations(list []models.Donation) []DonationResponse {
	out := make([]DonationResponse, 0, len(list))
	for i := range list {
		out = append(out, FromDonation(&list[i]))
	}
	return out
}
