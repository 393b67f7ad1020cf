package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

// CreateReviewDTO for creating a review
type CreateReviewDTO struct {
	BookID  int64   `json:"book_id" binding:"required,min=1"`
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// UpdateReviewDTO for changing the own review
type UpdateReviewDTO struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// ReviewResponse for returning review information
type ReviewResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	BookID    int64     `json:"book_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d CreateReviewDTO) ToModel() models.Review {
	return models.Review{BookID: d.BookID, Rating: d.Rating, Comment: d.Comment}
}

func (d UpdateReviewDTO) ApplyTo(r *models.Review) {
	if d.Rating != nil {
		r.Rating = *d.Rating
	}
	if d.Comment != nil {
		r.Comment = d.Comment
	}
}

// FromReview converts a Review model to ReviewResponse DTO
func FromReview(r *models.Review) ReviewResponse {
	resp := ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		BookID:    r.BookID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.Username = r.User.Username
	}
	return resp
}

func FromReviews(list []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(list))
	for i := range list {
		out = append(out, FromReview(&list[i]))
	}
	return out
}
