package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/errs"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
)

func newBorrowRouter(borrowService service.BorrowService, actor service.Actor) *gin.Engine {
	router := setupRouter()
	h := NewBorrowHandler(borrowService, Options{})
	h.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	h.RegisterRoutes(&router.RouterGroup, as(actor))
	return router
}

func sampleBorrow(status string, due time.Time) *models.Borrow {
	return &models.Borrow{
		ID:         11,
		UserID:     member.UserID,
		BookID:     3,
		BorrowDate: due.AddDate(0, 0, -14),
		DueDate:    due,
		Status:     status,
	}
}

func TestCreateBorrow(t *testing.T) {
	days := 21
	tests := []struct {
		name     string
		body     dto.CreateBorrowDTO
		wantDays int
	}{
		{"default days", dto.CreateBorrowDTO{BookID: 3}, 0},
		{"explicit days", dto.CreateBorrowDTO{BookID: 3, Days: &days}, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBorrowService := new(MockBorrowService)
			router := newBorrowRouter(mockBorrowService, member)

			borrow := sampleBorrow(models.BorrowActive, time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC))
			mockBorrowService.On("Create", mock.Anything, member, int64(3), tt.wantDays).Return(borrow, nil)

			w := doJSON(router, http.MethodPost, "/borrow/create", tt.body)

			assert.Equal(t, http.StatusCreated, w.Code)
			response := decode[dto.BorrowResponse](w)
			assert.Equal(t, models.BorrowActive, response.Status)
			assert.False(t, response.IsOverdue)
			mockBorrowService.AssertExpectations(t)
		})
	}
}

func TestCreateBorrow_MissingBook(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	w := doJSON(router, http.MethodPost, "/borrow/create", map[string]any{"days": 3})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "required", decode[errs.ValidationErrorResponse](w).Fields["book_id"])
	mockBorrowService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateBorrow_Conflict(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	mockBorrowService.On("Create", mock.Anything, member, int64(3), 0).Return(nil, service.ErrAlreadyBorrowed)

	w := doJSON(router, http.MethodPost, "/borrow/create", dto.CreateBorrowDTO{BookID: 3})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, service.ErrAlreadyBorrowed.Error(), decode[map[string]string](w)["error"])
}

func TestReturnBorrow_NoOpenBorrow(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	mockBorrowService.On("Return", mock.Anything, member, int64(3)).Return(nil, service.ErrNoOpenBorrow)

	w := doJSON(router, http.MethodPut, "/borrow/return?book_id=3", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockBorrowService.AssertExpectations(t)
}

func TestExtendBorrow_PassesDays(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	borrow := sampleBorrow(models.BorrowActive, time.Date(2026, 1, 29, 12, 0, 0, 0, time.UTC))
	borrow.ExtensionCount = 1
	mockBorrowService.On("Extend", mock.Anything, member, int64(3), 5).Return(borrow, nil)

	w := doJSON(router, http.MethodPut, "/borrow/extend_due_date?book_id=3&extend_days=5", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.BorrowResponse](w).ExtensionCount)
	mockBorrowService.AssertExpectations(t)
}

func TestBorrowResponse_ReportsOverdue(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	borrow := sampleBorrow(models.BorrowActive, time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC))
	mockBorrowService.On("Get", mock.Anything, member, int64(11)).Return(borrow, nil)

	w := doJSON(router, http.MethodGet, "/borrow/retrieve/11", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.BorrowResponse](w).IsOverdue)
}

func TestAdminBorrowRoutes_ForbiddenForMembers(t *testing.T) {
	router := newBorrowRouter(new(MockBorrowService), member)

	for _, path := range []string{"/borrow/list", "/borrow/active", "/borrow/overdue", "/borrow/stats"} {
		w := doJSON(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}
	w := doJSON(router, http.MethodPut, "/borrow/accept?user_id=7&book_id=3", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAcceptBorrow(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, admin)

	borrow := sampleBorrow(models.BorrowAccepted, time.Date(2026, 1, 24, 12, 0, 0, 0, time.UTC))
	mockBorrowService.On("Accept", mock.Anything, int64(7), int64(3)).Return(borrow, nil)

	w := doJSON(router, http.MethodPut, "/borrow/accept?user_id=7&book_id=3", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.BorrowAccepted, decode[dto.BorrowResponse](w).Status)
	mockBorrowService.AssertExpectations(t)
}

func TestRejectBorrow_MissingQuery(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, admin)

	w := doJSON(router, http.MethodPut, "/borrow/reject?book_id=3", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "required", decode[errs.ValidationErrorResponse](w).Fields["user_id"])
}

func TestListBorrows_Pagination(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, admin)

	borrows := []models.Borrow{*sampleBorrow(models.BorrowActive, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))}
	filter := service.BorrowListFilter{Status: "OVERDUE"}
	mockBorrowService.On("List", mock.Anything, filter, 2, 5).Return(borrows, int64(11), nil)

	w := doJSON(router, http.MethodGet, "/borrow/list?page=2&page_size=5&status=OVERDUE", nil)

	require.Equal(t, http.StatusOK, w.Code)
	response := decode[dto.PagedResponse[dto.BorrowResponse]](w)
	assert.Len(t, response.Data, 1)
	assert.Equal(t, dto.Pagination{Page: 2, PageSize: 5, Total: 11, TotalPages: 3}, response.Pagination)
	mockBorrowService.AssertExpectations(t)
}

func TestListBorrows_PageSizeTooLarge(t *testing.T) {
	router := newBorrowRouter(new(MockBorrowService), admin)

	w := doJSON(router, http.MethodGet, "/borrow/active?page_size=500", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "max=100", decode[errs.ValidationErrorResponse](w).Fields["page_size"])
}

func TestBorrowStats(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, admin)

	stats := &repository.BorrowStats{Total: 4, Active: 2, Returned: 1, Overdue: 1}
	mockBorrowService.On("Stats", mock.Anything).Return(stats, nil)

	w := doJSON(router, http.MethodGet, "/borrow/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, *stats, decode[repository.BorrowStats](w))
}

func TestBorrow_InternalErrorHidden(t *testing.T) {
	mockBorrowService := new(MockBorrowService)
	router := newBorrowRouter(mockBorrowService, member)

	mockBorrowService.On("ListMine", mock.Anything, member, 1, 20).
		Return([]models.Borrow(nil), int64(0), errors.New("pq: connection refused"))

	w := doJSON(router, http.MethodGet, "/borrow/user/me", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode[map[string]string](w)["error"])
}
