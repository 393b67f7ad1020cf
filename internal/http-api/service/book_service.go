package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

const (
	MediaPDF   = "pdf"
	MediaAudio = "audio"

	shelfSize = 10
)

var ErrBookHasOpenBorrows = errs.Conflict("book has open borrows and cannot be deleted")

type BookService interface {
	Create(ctx context.Context, b *models.Book) (*models.Book, error)
	Update(ctx context.Context, id int64, patch Patch[models.Book]) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, f repository.BookFilter, page, pageSize int) ([]models.Book, int64, error)
	ListByCategory(ctx context.Context, categoryID int64, page, pageSize int) ([]models.Book, int64, error)
	IsAvailable(ctx context.Context, id int64) (*models.Book, error)
	Recommended(ctx context.Context) ([]models.Book, error)
	Popular(ctx context.Context) ([]models.Book, error)
	NewCollection(ctx context.Context) ([]models.Book, error)
	// MediaPath returns the stored pdf or audio reference of a book.
	MediaPath(ctx context.Context, id int64, kind string) (string, error)
}

type bookService struct {
	repo         repository.BookRepository
	categoryRepo repository.CategoryRepository
}

func NewBookService(repo repository.BookRepository, categoryRepo repository.CategoryRepository) BookService {
	return &bookService{repo: repo, categoryRepo: categoryRepo}
}

func (s *bookService) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	if err := s.validate(ctx, b); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return s.Get(ctx, b.ID)
}

func (s *bookService) Update(ctx context.Context, id int64, patch Patch[models.Book]) (*models.Book, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	old := *b
	patch.ApplyTo(b)
	explicitAvailable := b.CopiesAvailable != old.CopiesAvailable

	// a new total without an explicit available count keeps the lent copies lent
	if b.CopiesTotal != old.CopiesTotal && !explicitAvailable {
		b.CopiesAvailable = min(max(old.CopiesAvailable+b.CopiesTotal-old.CopiesTotal, 0), b.CopiesTotal)
	}

	if err := s.validate(ctx, b); err != nil {
		return nil, err
	}

	changes := bookChanges(&old, b, explicitAvailable)
	if changes.IsEmpty() {
		return b, nil
	}
	if err := s.repo.Update(ctx, id, changes); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case repository.IsNotFound(err):
		return ErrBookNotFound
	case errors.Is(err, repository.ErrBookHasOpenBorrows):
		return ErrBookHasOpenBorrows
	default:
		return fmt.Errorf("delete book: %w", err)
	}
}

func (s *bookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

func (s *bookService) List(ctx context.Context, f repository.BookFilter, page, pageSize int) ([]models.Book, int64, error) {
	if f.Format != "" {
		f.Format = strings.ToUpper(f.Format)
		if !models.ValidFormat(f.Format) {
			return nil, 0, errs.Validation("unknown book format " + f.Format)
		}
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.repo.List(ctx, f, page, pageSize)
}

func (s *bookService) ListByCategory(ctx context.Context, categoryID int64, page, pageSize int) ([]models.Book, int64, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, ErrCategoryNotFound
		}
		return nil, 0, fmt.Errorf("find category: %w", err)
	}
	return s.List(ctx, repository.BookFilter{CategoryID: &categoryID}, page, pageSize)
}

func (s *bookService) IsAvailable(ctx context.Context, id int64) (*models.Book, error) {
	return s.Get(ctx, id)
}

func (s *bookService) Recommended(ctx context.Context) ([]models.Book, error) {
	return s.repo.Top(ctx, "average_rating DESC", shelfSize)
}

func (s *bookService) Popular(ctx context.Context) ([]models.Book, error) {
	return s.repo.Top(ctx, "copies_total DESC", shelfSize)
}

func (s *bookService) NewCollection(ctx context.Context) ([]models.Book, error) {
	return s.repo.Top(ctx, "created_at DESC", shelfSize)
}

func (s *bookService) MediaPath(ctx context.Context, id int64, kind string) (string, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	var ref *string
	switch kind {
	case MediaPDF:
		ref = b.PDFFile
	case MediaAudio:
		ref = b.AudioFile
	default:
		return "", errs.Validation("unknown media kind " + kind)
	}
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return "", ErrMediaNotFound
	}
	return *ref, nil
}

func (s *bookService) validate(ctx context.Context, b *models.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Format = strings.ToUpper(b.Format)

	switch {
	case b.Title == "":
		return errs.Validation("title is required")
	case b.Author == "":
		return errs.Validation("author is required")
	case !models.ValidFormat(b.Format):
		return errs.Validation("format must be one of HARD_COPY, E_BOOK, AUDIO_BOOK")
	case b.CopiesTotal < 0:
		return errs.Validation("copies_total must not be negative")
	case b.CopiesAvailable < 0 || b.CopiesAvailable > b.CopiesTotal:
		return errs.Validation("copies_available must be between 0 and copies_total")
	}

	if b.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *b.CategoryID); err != nil {
			if repository.IsNotFound(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("find category: %w", err)
		}
	}
	return nil
}

// bookChanges collects the columns the patch changed. Copy counts go through
// CopiesTotal/CopiesAvailable so the repository can apply them to the stored row.
func bookChanges(old, b *models.Book, explicitAvailable bool) repository.BookChanges {
	fields := map[string]any{}
	if b.Title != old.Title {
		fields["title"] = b.Title
	}
	if b.Author != old.Author {
		fields["author"] = b.Author
	}
	if b.Format != old.Format {
		fields["format"] = b.Format
	}
	if !sameString(old.Description, b.Description) {
		fields["description"] = b.Description
	}
	if !sameString(old.Cover, b.Cover) {
		fields["cover"] = b.Cover
	}
	if !sameString(old.PDFFile, b.PDFFile) {
		fields["pdf_file"] = b.PDFFile
	}
	if !sameString(old.AudioFile, b.AudioFile) {
		fields["audio_file"] = b.AudioFile
	}
	if !sameID(old.CategoryID, b.CategoryID) {
		fields["category_id"] = b.CategoryID
	}

	changes := repository.BookChanges{Fields: fields}
	if b.CopiesTotal != old.CopiesTotal {
		changes.CopiesTotal = &b.CopiesTotal
	}
	if explicitAvailable {
		changes.CopiesAvailable = &b.CopiesAvailable
	}
	return changes
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
