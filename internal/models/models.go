// Package models contains the data models for the mixdown service.
package models

import (
	"time"
)

// AssetCategory tells where a mixing asset may be used.
type AssetCategory string

const (
	AssetCategoryBackground AssetCategory = "background"
	AssetCategoryEffect     AssetCategory = "effect"
)

// IsValid checks if the category is a known value
func (c AssetCategory) IsValid() bool {
	switch c {
	case AssetCategoryBackground, AssetCategoryEffect:
		return true
	}
	return false
}

// MixingAsset is a selectable background or effect track. It is reference data;
// mixing never modifies it.
type MixingAsset struct {
	ID       int64         `gorm:"primaryKey" json:"id" yaml:"-"`
	Name     string        `gorm:"size:255;not null;uniqueIndex" json:"name" yaml:"name"`
	Category AssetCategory `gorm:"size:32;not null;index" json:"category" yaml:"category"`
	// URL points at remote audio; FileName at a file in the assets directory. One of them is set.
	URL             string    `gorm:"size:1024" json:"url,omitempty" yaml:"url"`
	FileName        string    `gorm:"size:255" json:"-" yaml:"file"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty" yaml:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"-"`
}

// TableName pins the table name used by the migrations.
func (MixingAsset) TableName() string {
	return "mixing_assets"
}

// Mix is an export request and, once rendered, the stored WAV file.
type Mix struct {
	ID     int64     `gorm:"primaryKey" json:"id"`
	Status MixStatus `gorm:"size:16;not null;index" json:"status"`
	// Error holds the user facing failure message when Status is error.
	Error *string `gorm:"size:1024" json:"error,omitempty"`

	// Signature identifies the inputs and settings; equal signatures render identical audio.
	Signature         string `gorm:"size:64;not null;index" json:"signature"`
	Settings          string `gorm:"type:json;not null" json:"settings"`
	BackgroundAssetID *int64 `json:"background_asset_id,omitempty"`

	Filename        string  `gorm:"size:255" json:"filename,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	FileSize        int64   `json:"file_size"`
	SampleRate      int     `json:"sample_rate"`

	FilePurgedAt *time.Time `json:"file_purged_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName pins the table name used by the migrations.
func (Mix) TableName() string {
	return "mixes"
}

// HasAudio reports whether the rendered file is still available.
func (m *Mix) HasAudio() bool {
	return m.Status == MixStatusReady && m.Filename != "" && m.FilePurgedAt == nil
}
