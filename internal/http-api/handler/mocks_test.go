package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"libraryhub/internal/http-api/middleware"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	args := m.Called(ctx, username, email, password)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) RegisterAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	args := m.Called(ctx, username, email, password)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), userOrNil(args.Get(1)), args.Error(2)
}

func (m *MockAuthService) IssueToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockAuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	args := m.Called(ctx, username, email, password)
	return userOrNil(args.Get(0)), args.Bool(1), args.Error(2)
}

func userOrNil(v any) *models.User {
	if v == nil {
		return nil
	}
	return v.(*models.User)
}

// MockBookService mocks the BookService interface
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	args := m.Called(ctx, b)
	return bookOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookService) Update(ctx context.Context, id int64, patch service.Patch[models.Book]) (*models.Book, error) {
	args := m.Called(ctx, id, patch)
	return bookOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	return bookOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookService) List(ctx context.Context, f repository.BookFilter, page, pageSize int) ([]models.Book, int64, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookService) ListByCategory(ctx context.Context, categoryID int64, page, pageSize int) ([]models.Book, int64, error) {
	args := m.Called(ctx, categoryID, page, pageSize)
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookService) IsAvailable(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	return bookOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookService) Recommended(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) Popular(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) NewCollection(ctx context.Context) ([]models.Book, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookService) MediaPath(ctx context.Context, id int64, kind string) (string, error) {
	args := m.Called(ctx, id, kind)
	return args.String(0), args.Error(1)
}

func bookOrNil(v any) *models.Book {
	if v == nil {
		return nil
	}
	return v.(*models.Book)
}

// MockBorrowService mocks the BorrowService interface
type MockBorrowService struct {
	mock.Mock
}

func (m *MockBorrowService) Create(ctx context.Context, actor service.Actor, bookID int64, days int) (*models.Borrow, error) {
	args := m.Called(ctx, actor, bookID, days)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Return(ctx context.Context, actor service.Actor, bookID int64) (*models.Borrow, error) {
	args := m.Called(ctx, actor, bookID)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Extend(ctx context.Context, actor service.Actor, bookID int64, extendDays int) (*models.Borrow, error) {
	args := m.Called(ctx, actor, bookID, extendDays)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Accept(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	args := m.Called(ctx, userID, bookID)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Activate(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	args := m.Called(ctx, userID, bookID)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Reject(ctx context.Context, userID, bookID int64) (*models.Borrow, error) {
	args := m.Called(ctx, userID, bookID)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) Get(ctx context.Context, actor service.Actor, id int64) (*models.Borrow, error) {
	args := m.Called(ctx, actor, id)
	return borrowOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBorrowService) ListMine(ctx context.Context, actor service.Actor, page, pageSize int) ([]models.Borrow, int64, error) {
	args := m.Called(ctx, actor, page, pageSize)
	return args.Get(0).([]models.Borrow), args.Get(1).(int64), args.Error(2)
}

func (m *MockBorrowService) List(ctx context.Context, f service.BorrowListFilter, page, pageSize int) ([]models.Borrow, int64, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).([]models.Borrow), args.Get(1).(int64), args.Error(2)
}

func (m *MockBorrowService) ListActive(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Borrow), args.Get(1).(int64), args.Error(2)
}

func (m *MockBorrowService) ListOverdue(ctx context.Context, page, pageSize int) ([]models.Borrow, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Borrow), args.Get(1).(int64), args.Error(2)
}

func (m *MockBorrowService) Stats(ctx context.Context) (*repository.BorrowStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BorrowStats), args.Error(1)
}

func (m *MockBorrowService) UserStats(ctx context.Context, actor service.Actor) (*repository.BorrowStats, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BorrowStats), args.Error(1)
}

func (m *MockBorrowService) RemindOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func borrowOrNil(v any) *models.Borrow {
	if v == nil {
		return nil
	}
	return v.(*models.Borrow)
}

// MockBookingService mocks the BookingService interface
type MockBookingService struct {
	mock.Mock
	now time.Time
}

func (m *MockBookingService) Create(ctx context.Context, actor service.Actor, bookID int64, expected time.Time) (*models.Booking, error) {
	args := m.Called(ctx, actor, bookID, expected)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookingService) Update(ctx context.Context, actor service.Actor, id int64, patch service.Patch[models.Booking]) (*models.Booking, error) {
	args := m.Called(ctx, actor, id, patch)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, actor service.Actor, id int64) (*models.Booking, error) {
	args := m.Called(ctx, actor, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookingService) Fulfill(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookingService) Delete(ctx context.Context, actor service.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockBookingService) Get(ctx context.Context, actor service.Actor, id int64) (*models.Booking, error) {
	args := m.Called(ctx, actor, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *MockBookingService) ListMine(ctx context.Context, actor service.Actor, page, pageSize int) ([]models.Booking, int64, error) {
	args := m.Called(ctx, actor, page, pageSize)
	return args.Get(0).([]models.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) List(ctx context.Context, f service.BookingListFilter, page, pageSize int) ([]models.Booking, int64, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).([]models.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) ListExpired(ctx context.Context, page, pageSize int) ([]models.Booking, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) ListByBook(ctx context.Context, bookID int64, page, pageSize int) ([]models.Booking, int64, error) {
	args := m.Called(ctx, bookID, page, pageSize)
	return args.Get(0).([]models.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) ExpireOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingService) Now() time.Time {
	return m.now
}

func bookingOrNil(v any) *models.Booking {
	if v == nil {
		return nil
	}
	return v.(*models.Booking)
}

// MockDonationService mocks the DonationService interface
type MockDonationService struct {
	mock.Mock
}

func (m *MockDonationService) Create(ctx context.Context, actor service.Actor, d *models.Donation) (*models.Donation, error) {
	args := m.Called(ctx, actor, d)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) Update(ctx context.Context, actor service.Actor, id int64, patch service.Patch[models.Donation]) (*models.Donation, error) {
	args := m.Called(ctx, actor, id, patch)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) Delete(ctx context.Context, actor service.Actor, id int64) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockDonationService) UpdateStatus(ctx context.Context, id int64, status string, adminNotes *string) (*models.Donation, error) {
	args := m.Called(ctx, id, status, adminNotes)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) Approve(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error) {
	args := m.Called(ctx, id, adminNotes)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) Reject(ctx context.Context, id int64, adminNotes *string) (*models.Donation, error) {
	args := m.Called(ctx, id, adminNotes)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) Get(ctx context.Context, actor service.Actor, id int64) (*models.Donation, error) {
	args := m.Called(ctx, actor, id)
	return donationOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDonationService) ListMine(ctx context.Context, actor service.Actor, page, pageSize int) ([]models.Donation, int64, error) {
	args := m.Called(ctx, actor, page, pageSize)
	return args.Get(0).([]models.Donation), args.Get(1).(int64), args.Error(2)
}

func (m *MockDonationService) List(ctx context.Context, f service.DonationListFilter, page, pageSize int) ([]models.Donation, int64, error) {
	args := m.Called(ctx, f, page, pageSize)
	return args.Get(0).([]models.Donation), args.Get(1).(int64), args.Error(2)
}

func donationOrNil(v any) *models.Donation {
	if v == nil {
		return nil
	}
	return v.(*models.Donation)
}

var (
	member = service.Actor{UserID: 7, Username: "reader", Role: models.RoleUser}
	admin  = service.Actor{UserID: 1, Username: "admin", Role: models.RoleAdmin}
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	RegisterValidatorNames()
	return gin.New()
}

// as stands in for AuthMiddleware with a fixed caller.
func as(actor service.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, actor.UserID)
		c.Set(middleware.UsernameKey, actor.Username)
		c.Set(middleware.RoleKey, actor.Role)
		c.Next()
	}
}

func doJSON(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var out T
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}
