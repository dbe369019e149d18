package utils

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oszuidwest/zwfm-mixdown/internal/models"
)

// InitializeValidators registers custom validation rules with Gin's binding engine.
// Must be called during application startup to enable custom validation tags.
// Panics if validator registration fails, as this is a critical configuration error.
func InitializeValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// Register notblank validator - ensures string is not empty or whitespace-only
		if err := v.RegisterValidation("notblank", notBlankValidator); err != nil {
			panic(fmt.Sprintf("Failed to register notblank validator: %v", err))
		}

		if err := v.RegisterValidation("asset_category", assetCategoryValidator); err != nil {
			panic(fmt.Sprintf("Failed to register asset_category validator: %v", err))
		}
	}
}

// notBlankValidator validates that a string field is not empty or whitespace-only.
// More strict than the standard required validator which allows whitespace.
func notBlankValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != ""
}

// assetCategoryValidator accepts an empty value or a known asset category.
func assetCategoryValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || models.AssetCategory(value).IsValid()
}
