package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessErrorHTTPStatus(t *testing.T) {
	tests := []struct {
		code   int
		status int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeTenantRequired, http.StatusBadRequest},
		{CodeInvalidTransition, http.StatusBadRequest},
		{CodeTenantNotFound, http.StatusNotFound},
		{CodePromptNotFound, http.StatusNotFound},
		{CodeCommentNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeInternalError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(GetErrorMessage(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.status, NewBusinessError(tt.code, "").HTTPStatus())
		})
	}
}

func TestErrorHelpersUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewNotFoundError(CodePromptNotFound, "prompt p1 not found"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))

	assert.True(t, IsValidation(NewValidationError("title is required")))
	assert.False(t, IsNotFound(errors.New("plain")))

	assert.Equal(t, "tenant not found", NewBusinessError(CodeTenantNotFound, "").Message)
	assert.Equal(t, CodeNotFound, NewNotFoundError(0, "x").Code)
}

func TestPaginationHelpers(t *testing.T) {
	p := PaginationRequest{Page: 0, PageSize: 500}.Normalize(50)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 50, p.PageSize)
	assert.Equal(t, DefaultPageSize, PaginationRequest{}.Normalize(0).PageSize)
	assert.Equal(t, 40, PaginationRequest{Page: 3, PageSize: 20}.GetOffset())

	assert.Equal(t, 1, NewPaginationMeta(1, 20, 0).TotalPages)
	assert.Equal(t, 3, NewPaginationMeta(1, 20, 41).TotalPages)
	assert.Equal(t, 2, NewPaginationMeta(1, 4, 8).TotalPages)
}

func TestResponseFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"校验错误", NewValidationError("title is required"), http.StatusBadRequest},
		{"包装后的 NotFound", fmt.Errorf("wrap: %w", NewNotFoundError(CodeTenantNotFound, "tenant x not found")), http.StatusNotFound},
		{"普通错误", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			ResponseFromError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestResponseEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ResponseCreated(c, map[string]int{"version": 1})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"version":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ResponseList(c, ListResponse{
		Data:       []string{},
		Pagination: NewPaginationMeta(2, 20, 8),
		Sort:       SortMeta{SortBy: "updatedAt", Order: "desc"},
		Filters:    map[string]any{"search": nil},
	})
	assert.JSONEq(t, `{"data":[],"pagination":{"page":2,"pageSize":20,"total":8,"totalPages":1},"sort":{"sortBy":"updatedAt","order":"desc"},"filters":{"search":null}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	ResponseBadRequest(c, "")
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}
