package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/requests"
	"github.com/parcel-tracker/app/responses"
	"github.com/parcel-tracker/app/services"
	"go.uber.org/zap"
)

const defaultMaxImageBytes = 5 << 20

var errImageTooLarge = errors.New("ảnh vượt quá kích thước cho phép")

// ScanController controller xử lý scan nhãn
type ScanController struct {
	scanService   *services.ScanService
	maxImageBytes int64
	logger        *zap.Logger
}

// NewScanController tạo mới ScanController. maxImageBytes <= 0 dùng mặc định 5MB.
func NewScanController(scanService *services.ScanService, maxImageBytes int64, logger *zap.Logger) *ScanController {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultMaxImageBytes
	}
	return &ScanController{
		scanService:   scanService,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// Scan scan từ text
func (sc *ScanController) Scan(c *gin.Context) {
	var req requests.ScanTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := sc.scanService.ScanText(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScanManual scan bằng địa chỉ nhập tay
func (sc *ScanController) ScanManual(c *gin.Context) {
	var req requests.ManualScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	result, err := sc.scanService.ScanManual(c.Request.Context(), req.ToInput())
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ScanImage nhận ảnh multipart, OCR rồi scan
func (sc *ScanController) ScanImage(c *gin.Context) {
	var form requests.ImageScanForm
	if err := c.ShouldBind(&form); err != nil {
		respondInvalid(c, err)
		return
	}

	image, ok := sc.readImage(c)
	if !ok {
		return
	}

	result, err := sc.scanService.ScanImage(c.Request.Context(), image, form.ToInput())
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// OCR chỉ trả về text của ảnh
func (sc *ScanController) OCR(c *gin.Context) {
	image, ok := sc.readImage(c)
	if !ok {
		return
	}

	text, err := sc.scanService.Recognize(c.Request.Context(), image)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.OCRResponse{Text: text})
}

// ListScans lấy scan log
func (sc *ScanController) ListScans(c *gin.Context) {
	var query requests.ListScansQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondInvalid(c, err)
		return
	}

	logs, err := sc.scanService.ListScans(c.Request.Context(), services.ScanLogFilter{
		SubDistrict: query.SubDistrict,
		Village:     query.Village,
		Outcome:     query.Outcome,
		Limit:       query.Limit,
	})
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scans": logs, "total": len(logs)})
}

// readImage đọc field "image", tự trả lỗi 400/413 khi không đọc được
func (sc *ScanController) readImage(c *gin.Context) ([]byte, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		respondInvalid(c, fmt.Errorf("thiếu ảnh: %w", err))
		return nil, false
	}
	if header.Size > sc.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody(c, "IMAGE_TOO_LARGE", errImageTooLarge.Error()))
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondInvalid(c, err)
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, sc.maxImageBytes+1))
	if err != nil {
		respondInvalid(c, err)
		return nil, false
	}
	if int64(len(image)) > sc.maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorBody(c, "IMAGE_TOO_LARGE", errImageTooLarge.Error()))
		return nil, false
	}
	return image, true
}
