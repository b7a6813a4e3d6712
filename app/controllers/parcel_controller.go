package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parcel-tracker/app/models"
	"github.com/parcel-tracker/app/requests"
	"github.com/parcel-tracker/app/responses"
	"github.com/parcel-tracker/app/services"
	"go.uber.org/zap"
)

// ParcelController controller quản lý danh bạ địa chỉ
type ParcelController struct {
	parcelService *services.ParcelService
	logger        *zap.Logger
}

// NewParcelController tạo mới ParcelController
func NewParcelController(parcelService *services.ParcelService, logger *zap.Logger) *ParcelController {
	return &ParcelController{
		parcelService: parcelService,
		logger:        logger,
	}
}

// List lấy record theo sub_district/village
func (pc *ParcelController) List(c *gin.Context) {
	records, err := pc.parcelService.List(c.Request.Context(), c.Query("sub_district"), c.Query("village"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListAll lấy toàn bộ record
func (pc *ParcelController) ListAll(c *gin.Context) {
	records, err := pc.parcelService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Get lấy một record
func (pc *ParcelController) Get(c *gin.Context) {
	record, err := pc.parcelService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create thêm địa chỉ
func (pc *ParcelController) Create(c *gin.Context) {
	var req requests.CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	record, err := pc.parcelService.Create(c.Request.Context(), req.ToRecord())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update cập nhật địa chỉ
func (pc *ParcelController) Update(c *gin.Context) {
	var req requests.UpdateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	record, err := pc.parcelService.Update(c.Request.Context(), req.ToRecord())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete xóa địa chỉ
func (pc *ParcelController) Delete(c *gin.Context) {
	var req requests.DeleteParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	if !req.Valid() {
		respondInvalid(c, errors.New("cần id hoặc sub_district, village, address"))
		return
	}

	err := pc.parcelService.Delete(c.Request.Context(), &models.AddressRecord{
		ID:          req.ID,
		SubDistrict: req.SubDistrict,
		Village:     req.Village,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateStatus đặt trạng thái lên xe bằng tay
func (pc *ParcelController) UpdateStatus(c *gin.Context) {
	var req requests.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	record, err := pc.parcelService.UpdateStatus(c.Request.Context(), c.Param("id"), *req.OnTruck, req.IsDuplicate)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{Success: true, Message: "updated", Data: record, Timestamp: now()})
}

// Reorder cập nhật display order
func (pc *ParcelController) Reorder(c *gin.Context) {
	var req requests.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	updated, err := pc.parcelService.Reorder(c.Request.Context(), req.Updates)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.ReorderResponse{Success: true, Updated: updated})
}

// Reset bỏ trạng thái lên xe của toàn bộ record
func (pc *ParcelController) Reset(c *gin.Context) {
	count, err := pc.parcelService.Reset(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.ResetResponse{Success: true, Count: count})
}

// Search tìm địa chỉ full-text
func (pc *ParcelController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondInvalid(c, errors.New("thiếu tham số q"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	hits, err := pc.parcelService.Search(c.Request.Context(), query, c.Query("sub_district"), c.Query("village"), limit)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, responses.SearchResponse{Query: query, Hits: hits, Total: len(hits)})
}

// Locations sub_district -> villages
func (pc *ParcelController) Locations(c *gin.Context) {
	locations, err := pc.parcelService.Locations(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, locations)
}

// VillageNames mã village -> tên đầy đủ
func (pc *ParcelController) VillageNames(c *gin.Context) {
	names, err := pc.parcelService.VillageNames(c.Request.Context())
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, names)
}
