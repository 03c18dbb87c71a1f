package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResponseSuccess 返回成功响应
func ResponseSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// ResponseCreated 返回创建成功响应（201）
func ResponseCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}

// ResponseNoContent 返回无内容响应（204）
func ResponseNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ResponseList 返回分页列表响应
func ResponseList(c *gin.Context, list ListResponse) {
	c.JSON(http.StatusOK, list)
}

// ResponseError 返回错误响应
func ResponseError(c *gin.Context, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	c.JSON(status, ErrorBody{Error: message})
}

// ResponseBadRequest 返回参数错误响应
func ResponseBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = GetErrorMessage(CodeInvalidRequest)
	}
	ResponseError(c, http.StatusBadRequest, message)
}

// ResponseBusinessError 返回业务错误响应
func ResponseBusinessError(c *gin.Context, err *BusinessError) {
	ResponseError(c, err.HTTPStatus(), err.Message)
}

// ResponseFromError 按错误类型写出响应，非业务错误统一 500
func ResponseFromError(c *gin.Context, err error) {
	if be, ok := AsBusinessError(err); ok {
		ResponseBusinessError(c, be)
		return
	}
	ResponseError(c, http.StatusInternalServerError, err.Error())
}
