package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// assetListParams are the query parameters ListAssets accepts besides paging.
type assetListParams struct {
	Category string `form:"category" binding:"omitempty,asset_category"`
}

// ListAssets returns the mixing asset catalogue, optionally narrowed to one category.
func (h *Handlers) ListAssets(c *gin.Context) {
	var params assetListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.ProblemValidationError(c, "The request contains invalid data", utils.FormatValidationErrors(err))
		return
	}

	result, err := h.assetSvc.List(c.Request.Context(), params.Category, utils.ParseListQuery(c))
	if err != nil {
		handleServiceError(c, err, "Asset")
		return
	}
	utils.Success(c, result)
}

// GetAsset returns a single mixing asset.
func (h *Handlers) GetAsset(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	asset, err := h.assetSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "Asset")
		return
	}
	utils.Success(c, asset)
}
