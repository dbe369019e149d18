package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oszuidwest/zwfm-mixdown/internal/api/validation"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
	fieldvalidation "github.com/oszuidwest/zwfm-mixdown/internal/validation"
)

// mixForm is the parsed multipart body shared by mix export and preview.
type mixForm struct {
	Narration         *audio.Source
	Background        *audio.Source
	BackgroundAssetID *int64
	Settings          audio.MixingSettings
}

// bindMixForm parses the multipart mix form. It responds with 422 and returns false when invalid.
func (h *Handlers) bindMixForm(c *gin.Context, requireNarration bool) (*mixForm, bool) {
	result := fieldvalidation.New()
	form := &mixForm{Settings: audio.DefaultMixingSettings()}

	form.Narration = h.audioField(c, result, "narration")
	if requireNarration && form.Narration == nil && !result.Has("narration") {
		result.AddError("narration", "narration file or narration_url is required")
	}

	form.Background = h.audioField(c, result, "background")
	if raw := strings.TrimSpace(c.PostForm("background_asset_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			result.AddError("background_asset_id", "background_asset_id must be a positive integer")
		} else {
			form.BackgroundAssetID = &id
		}
	}
	if form.Background != nil && form.BackgroundAssetID != nil {
		result.AddError("background", "use either a background upload or background_asset_id, not both")
	}

	if raw := strings.TrimSpace(c.PostForm("settings")); raw != "" {
		settings, settingsResult := parseSettings(raw)
		result.Merge(settingsResult)
		form.Settings = settings
	}

	if result.HasErrors() {
		respondValidation(c, result)
		return nil, false
	}
	return form, true
}

// audioField reads <name> as an uploaded file or <name>_url as a remote reference.
func (h *Handlers) audioField(c *gin.Context, result *fieldvalidation.Result, name string) *audio.Source {
	fileHeader, err := c.FormFile(name)
	switch {
	case err == nil:
		data, readErr := validation.ReadAudioUpload(fileHeader, h.config.Server.MaxUploadBytes)
		if readErr != nil {
			result.AddError(name, readErr.Error())
			return nil
		}
		src := audio.BlobSource(validation.SanitizeFilename(fileHeader.Filename), data)
		return &src
	case !errors.Is(err, http.ErrMissingFile):
		result.AddErrorf(name, "could not read upload: %v", err)
		return nil
	}

	raw := strings.TrimSpace(c.PostForm(name + "_url"))
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.AddError(name+"_url", "must be an absolute http or https URL")
		return nil
	}
	src := audio.URLSource(u.String())
	return &src
}

// parseSettings merges a JSON settings document over the defaults and checks the binding rules.
func parseSettings(raw string) (audio.MixingSettings, *fieldvalidation.Result) {
	settings := audio.DefaultMixingSettings()
	result := fieldvalidation.New()

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&settings); err != nil {
		return settings, result.AddErrorf("settings", "invalid settings JSON: %v", err)
	}
	if err := binding.Validator.ValidateStruct(&settings); err != nil {
		return settings, result.AddAll(utils.FormatValidationErrors(err))
	}
	return settings, result
}

func respondValidation(c *gin.Context, r *fieldvalidation.Result) {
	utils.ProblemValidationError(c, "The request contains invalid data", r.Errors())
}

// readUploads reads every file in a multipart field, in order.
func readUploads(files []*multipart.FileHeader, field string, maxBytes int64) ([][]byte, *fieldvalidation.Result) {
	result := fieldvalidation.New()
	blobs := make([][]byte, 0, len(files))
	for i, fh := range files {
		data, err := validation.ReadAudioUpload(fh, maxBytes)
		if err != nil {
			result.AddErrorf(fmt.Sprintf("%s[%d]", field, i), "%v", err)
			continue
		}
		blobs = append(blobs, data)
	}
	return blobs, result
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
