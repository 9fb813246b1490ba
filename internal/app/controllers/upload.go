package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/models/dto"
)

// formFile opens the named multipart file, answering 400 when it is missing
func formFile(ctx *gin.Context, field string) (multipart.File, string, bool) {
	header, err := ctx.FormFile(field)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "No file provided").WithField(field).WithDetails(err.Error())
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorAPIResponse(detail))
		return nil, "", false
	}
	file, err := header.Open()
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Uploaded file cannot be read").WithField(field)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorAPIResponse(detail))
		return nil, "", false
	}
	return file, header.Filename, true
}
