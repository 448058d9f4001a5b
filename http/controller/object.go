package controller

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tnqbao/gau-object-gallery/entity"
	"github.com/tnqbao/gau-object-gallery/http/controller/dto"
	"github.com/tnqbao/gau-object-gallery/service"
	"github.com/tnqbao/gau-object-gallery/utils"
)

// multipart overhead allowed on top of the image size limit
const formOverhead = 1 << 20

func (ctrl *Controller) CreateObject(c *gin.Context) {
	ctx := c.Request.Context()

	if maxSize := ctrl.Config.EnvConfig.Upload.MaxSize; maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+formOverhead)
	}

	var req dto.CreateObjectRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		if isBodyTooLarge(err) {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Upload body exceeds limit")
			utils.JSON413(c, "Image exceeds the maximum upload size")
			return
		}
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Invalid create request: %v", err)
		utils.JSON400(c, "Invalid request: "+err.Error())
		return
	}

	input := service.CreateObjectInput{
		Title:       req.Title,
		Description: req.Description,
	}

	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to open uploaded file")
			utils.JSON400(c, "Failed to read image")
			return
		}
		defer file.Close()

		input.File = &service.FileUpload{
			Reader:      file,
			Size:        fileHeader.Size,
			ContentType: contentTypeOf(fileHeader),
			Filename:    fileHeader.Filename,
		}
	case isBodyTooLarge(err):
		utils.JSON413(c, "Image exceeds the maximum upload size")
		return
	case errors.Is(err, http.ErrMissingFile):
		// left nil, rejected by validation
	default:
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Failed to get image from form data: %v", err)
		utils.JSON400(c, "Failed to get image: "+err.Error())
		return
	}

	object, err := ctrl.ObjectService.Create(ctx, input)
	if err != nil {
		ctrl.respondError(c, err, "Failed to create object")
		return
	}

	utils.JSON201(c, object)
}

func (ctrl *Controller) ListObjects(c *gin.Context) {
	var query dto.ListObjectsQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSON400(c, "Invalid query: "+err.Error())
		return
	}

	objects, err := ctrl.ObjectService.List(c.Request.Context(), query.Search)
	if err != nil {
		ctrl.respondError(c, err, "Failed to list objects")
		return
	}

	utils.JSON200(c, objects)
}

func (ctrl *Controller) GetObject(c *gin.Context) {
	object, err := ctrl.ObjectService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		ctrl.respondError(c, err, "Failed to get object")
		return
	}

	utils.JSON200(c, object)
}

func (ctrl *Controller) DeleteObject(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.ObjectService.Remove(c.Request.Context(), id); err != nil {
		ctrl.respondError(c, err, "Failed to delete object")
		return
	}

	utils.JSON200(c, dto.DeleteObjectResponseDTO{ID: id})
}

func (ctrl *Controller) respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	switch {
	case errors.Is(err, entity.ErrValidation):
		utils.JSON400(c, err.Error())
	case errors.Is(err, entity.ErrTooLarge):
		utils.JSON413(c, err.Error())
	case errors.Is(err, entity.ErrNotFound):
		utils.JSON404(c, "Object not found")
	default:
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] %s: %v", fallback, err)
		utils.JSON500(c, fallback)
	}
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

func contentTypeOf(fileHeader *multipart.FileHeader) string {
	if contentType := fileHeader.Header.Get("Content-Type"); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
