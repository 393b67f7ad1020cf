package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/media"
)

// CreateCategoryDTO used for POST /categories
type CreateCategoryDTO struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=255"`
}

// UpdateCategoryDTO used for PUT /categories/:id (partial updates allowed)
type UpdateCategoryDTO struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=255"`
}

type CategoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BookCount   int64     `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d CreateCategoryDTO) ToModel() models.Category {
	return models.Category{Name: d.Name, Description: d.Description}
}

func (d UpdateCategoryDTO) ApplyTo(c *models.Category) {
	if d.Name != nil {
		c.Name = *d.Name
	}
	if d.Description != nil {
		c.Description = d.Description
	}
}

func FromCategory(c *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		BookCount:   c.BookCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromCategories(list []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, FromCategory(&list[i]))
	}
	return out
}

// BookQuery binds the catalog filters of GET /books
type BookQuery struct {
	PageQuery
	CategoryID *int64 `form:"category_id" binding:"omitempty,min=1"`
	Format     string `form:"format"`
	Search     string `form:"search" binding:"max=100"`
}

// CreateBookDTO used for POST /books
type CreateBookDTO struct {
	Title           string  `json:"title" binding:"required,max=200"`
	Author          string  `json:"author" binding:"required,max=100"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=500"`
	Cover           *string `json:"cover,omitempty" binding:"omitempty,max=255"`
	PDFFile         *string `json:"pdf_file,omitempty" binding:"omitempty,max=255"`
	AudioFile       *string `json:"audio_file,omitempty" binding:"omitempty,max=255"`
	CategoryID      *int64  `json:"category_id,omitempty" binding:"omitempty,min=1"`
	Format          string  `json:"format" binding:"required"`
	CopiesTotal     int     `json:"copies_total" binding:"min=0"`
	CopiesAvailable *int    `json:"copies_available,omitempty" binding:"omitempty,min=0"`
}

// UpdateBookDTO used for PUT /books/:id (partial updates allowed)
type UpdateBookDTO struct {
	Title           *string `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Author          *string `json:"author,omitempty" binding:"omitempty,min=1,max=100"`
	Description     *string `json:"description,omitempty" binding:"omitempty,max=500"`
	Cover           *string `json:"cover,omitempty" binding:"omitempty,max=255"`
	PDFFile         *string `json:"pdf_file,omitempty" binding:"omitempty,max=255"`
	AudioFile       *string `json:"audio_file,omitempty" binding:"omitempty,max=255"`
	CategoryID      *int64  `json:"category_id,omitempty" binding:"omitempty,min=1"`
	Format          *string `json:"format,omitempty"`
	CopiesTotal     *int    `json:"copies_total,omitempty" binding:"omitempty,min=0"`
	CopiesAvailable *int    `json:"copies_available,omitempty" binding:"omitempty,min=0"`
}

type BookResponse struct {
	ID              int64             `json:"id"`
	Title           string            `json:"title"`
	Author          string            `json:"author"`
	Description     *string           `json:"description,omitempty"`
	Cover           *string           `json:"cover,omitempty"`
	PDFFile         *string           `json:"pdf_file,omitempty"`
	AudioFile       *string           `json:"audio_file,omitempty"`
	CategoryID      *int64            `json:"category_id,omitempty"`
	Category        *CategoryResponse `json:"category,omitempty"`
	Format          string            `json:"format"`
	CopiesTotal     int               `json:"copies_total"`
	CopiesAvailable int               `json:"copies_available"`
	IsAvailable     bool              `json:"is_available"`
	AverageRating   float64           `json:"average_rating"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type AvailabilityResponse struct {
	BookID          int64 `json:"book_id"`
	IsAvailable     bool  `json:"is_available"`
	CopiesAvailable int   `json:"copies_available"`
	CopiesTotal     int   `json:"copies_total"`
}

// ToModel fills copies_available with copies_total when it is not given.
func (d CreateBookDTO) ToModel() models.Book {
	available := d.CopiesTotal
	if d.CopiesAvailable != nil {
		available = *d.CopiesAvailable
	}
	return models.Book{
		Title:           d.Title,
		Author:          d.Author,
		Description:     d.Description,
		Cover:           d.Cover,
		PDFFile:         d.PDFFile,
		AudioFile:       d.AudioFile,
		CategoryID:      d.CategoryID,
		Format:          d.Format,
		CopiesTotal:     d.CopiesTotal,
		CopiesAvailable: available,
	}
}

func (d UpdateBookDTO) ApplyTo(b *models.Book) {
	if d.Title != nil {
		b.Title = *d.Title
	}
	if d.Author != nil {
		b.Author = *d.Author
	}
	if d.Description != nil {
		b.Description = d.Description
	}
	if d.Cover != nil {
		b.Cover = d.Cover
	}
	if d.PDFFile != nil {
		b.PDFFile = d.PDFFile
	}
	if d.AudioFile != nil {
		b.AudioFile = d.AudioFile
	}
	if d.CategoryID != nil {
		b.CategoryID = d.CategoryID
	}
	if d.Format != nil {
		b.Format = *d.Format
	}
	if d.CopiesTotal != nil {
		b.CopiesTotal = *d.CopiesTotal
	}
	if d.CopiesAvailable != nil {
		b.CopiesAvailable = *d.CopiesAvailable
	}
}

// FromBook converts a book, turning stored media references into public URLs.
func FromBook(b *models.Book, r *media.Resolver) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Description:     b.Description,
		Cover:           r.PublicURL(b.Cover),
		PDFFile:         r.PublicURL(b.PDFFile),
		AudioFile:       r.PublicURL(b.AudioFile),
		CategoryID:      b.CategoryID,
		Format:          b.Format,
		CopiesTotal:     b.CopiesTotal,
		CopiesAvailable: b.CopiesAvailable,
		IsAvailable:     b.IsAvailable(),
		AverageRating:   b.AverageRating,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.Category != nil {
		c := FromCategory(b.Category)
		resp.Category = &c
	}
	return resp
}

func FromBooks(list []models.Book, r *media.Resolver) []BookResponse {
	out := make([]BookResponse, 0, len(list))
	for i := range list {
		out = append(out, FromBook(&list[i], r))
	}
	return out
}

func NewAvailabilityResponse(b *models.Book) AvailabilityResponse {
	return AvailabilityResponse{
		BookID:          b.ID,
		IsAvailable:     b.IsAvailable(),
		CopiesAvailable: b.CopiesAvailable,
		CopiesTotal:     b.CopiesTotal,
	}
}

// BookSummary is the short book form embedded in borrow, booking and review responses.
type BookSummary struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
	Cover  *string `json:"cover,omitempty"`
	Format string  `json:"format"`
}

func summarizeBook(b *models.Book, r *media.Resolver) *BookSummary {
	if b == nil {
		return nil
	}
	return &BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, Cover: r.PublicURL(b.Cover), Format: b.Format}
}

// CreateFeaturedDTO used for POST /featured-books
type CreateFeaturedDTO struct {
	BookID int64 `json:"book_id" binding:"required,min=1"`
}

// UpdateFeaturedDTO used for PUT /featured-books/:id
type UpdateFeaturedDTO struct {
	BookID int64 `json:"book_id" binding:"required,min=1"`
}

type FeaturedResponse struct {
	ID        int64         `json:"id"`
	BookID    int64         `json:"book_id"`
	Book      *BookResponse `json:"book,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

func FromFeatured(f *models.FeaturedBook, r *media.Resolver) FeaturedResponse {
	resp := FeaturedResponse{ID: f.ID, BookID: f.BookID, CreatedAt: f.CreatedAt}
	if f.Book != nil {
		b := FromBook(f.Book, r)
		resp.Book = &b
	}
	return resp
}

func FromFeaturedList(list []models.FeaturedBook, r *media.Resolver) []FeaturedResponse {
	out := make([]FeaturedResponse, 0, len(list))
	for i := range list {
		out = append(out, FromFeatured(&list[i], r))
	}
	return out
}
