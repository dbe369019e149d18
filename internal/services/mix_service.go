package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/cache"
	"github.com/oszuidwest/zwfm-mixdown/internal/models"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/internal/storage"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// Mixer decodes, mixes and joins audio; *audio.Service implements it.
type Mixer interface {
	SampleRate() int
	DecodeToBuffer(ctx context.Context, src audio.Source) (*audio.Buffer, error)
	ExportMixToWAV(ctx context.Context, narration, background, effect *audio.Buffer, settings audio.MixingSettings) (*audio.EncodedAudio, error)
	ConcatenateAudios(ctx context.Context, blobs [][]byte) (*audio.EncodedAudio, error)
}

// MixRequest describes a single export.
type MixRequest struct {
	Narration audio.Source
	// Background is an uploaded bed; BackgroundAssetID selects one from the catalogue instead.
	Background        *audio.Source
	BackgroundAssetID *int64
	Settings          audio.MixingSettings
}

// MixResult is a finished export.
type MixResult struct {
	Mix   *models.Mix
	Audio *audio.EncodedAudio
	// Cached is set when the audio came from the mix cache instead of a render.
	Cached bool
}

// MixService runs export jobs: decode, render, store and record.
type MixService struct {
	repo   repository.MixRepository
	assets *AssetService
	mixer  Mixer
	store  storage.Store
	cache  cache.MixCache

	wg sync.WaitGroup
}

// NewMixService creates a new mix service instance.
func NewMixService(
	repo repository.MixRepository,
	assets *AssetService,
	mixer Mixer,
	store storage.Store,
	mixCache cache.MixCache,
) *MixService {
	if mixCache == nil {
		mixCache = cache.NopCache{}
	}
	return &MixService{
		repo:   repo,
		assets: assets,
		mixer:  mixer,
		store:  store,
		cache:  mixCache,
	}
}

type mixJob struct {
	mix        *models.Mix
	narration  audio.Source
	background *audio.Source
	settings   audio.MixingSettings
}

// Export renders the request and waits for the result.
func (s *MixService) Export(ctx context.Context, req MixRequest) (*MixResult, error) {
	job, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, job)
}

// Submit records the request and renders it in the background. The returned
// record is idle, or already ready when the rendering was cached.
func (s *MixService) Submit(ctx context.Context, req MixRequest) (*models.Mix, error) {
	job, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if entry, ok := s.lookup(ctx, job.mix.Signature); ok {
		res, err := s.finishCached(ctx, job, entry)
		if err != nil {
			return nil, err
		}
		return res.Mix, nil
	}

	snapshot := *job.mix
	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				_ = s.fail(runCtx, job, fmt.Errorf("render panicked: %v", p))
			}
		}()
		if _, err := s.render(runCtx, job); err != nil {
			logger.Warn("Mix %d failed: %v", job.mix.ID, err)
		}
	}()
	return &snapshot, nil
}

// Wait blocks until all background jobs have finished.
func (s *MixService) Wait() {
	s.wg.Wait()
}

// prepare validates the request, resolves the background and creates the idle job record.
func (s *MixService) prepare(ctx context.Context, req MixRequest) (*mixJob, error) {
	const op = "MixService.prepare"

	if req.Narration.URL == "" && len(req.Narration.Data) == 0 {
		return nil, apperrors.InvalidInput("Narration audio is required").WithField("narration")
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, apperrors.TranslateAudioError(op, err)
	}

	background, asset, err := s.assets.ResolveBackground(ctx, req.Background, req.BackgroundAssetID)
	if err != nil {
		return nil, err
	}

	settingsJSON, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal settings: %w", op, err)
	}

	mix := &models.Mix{
		Status:     models.MixStatusIdle,
		Signature:  s.signature(req.Narration, background, asset, settingsJSON),
		Settings:   string(settingsJSON),
		SampleRate: s.mixer.SampleRate(),
	}
	if asset != nil {
		mix.BackgroundAssetID = &asset.ID
	}

	if err := s.repo.Create(ctx, mix); err != nil {
		return nil, MapRepoError(op, err)
	}

	return &mixJob{mix: mix, narration: req.Narration, background: background, settings: req.Settings}, nil
}

// signature identifies the rendering: narration, background, settings and render rate.
func (s *MixService) signature(narration audio.Source, background *audio.Source, asset *models.MixingAsset, settingsJSON []byte) string {
	var bg []byte
	switch {
	case asset != nil:
		bg = fmt.Appendf(nil, "asset:%d:%s:%s:%d", asset.ID, asset.URL, asset.FileName, asset.UpdatedAt.UnixNano())
	case background != nil:
		bg = sourceKey(*background)
	}
	return cache.Signature(
		[]byte("mix"),
		sourceKey(narration),
		bg,
		settingsJSON,
		[]byte(strconv.Itoa(s.mixer.SampleRate())),
	)
}

// sourceKey keys uploads by content and URLs by address only; content
// replaced behind the same URL is not detected.
func sourceKey(src audio.Source) []byte {
	if len(src.Data) > 0 {
		return src.Data
	}
	return []byte("url:" + src.URL)
}

func (s *MixService) lookup(ctx context.Context, signature string) (cache.Entry, bool) {
	entry, ok, err := s.cache.Get(ctx, signature)
	if err != nil {
		logger.Warn("Mix cache lookup failed: %v", err)
		return cache.Entry{}, false
	}
	return entry, ok
}

func (s *MixService) run(ctx context.Context, job *mixJob) (*MixResult, error) {
	if entry, ok := s.lookup(ctx, job.mix.Signature); ok {
		return s.finishCached(ctx, job, entry)
	}
	return s.render(ctx, job)
}

// finishCached stores a cached rendering for the job and moves it straight to ready.
func (s *MixService) finishCached(ctx context.Context, job *mixJob, entry cache.Entry) (*MixResult, error) {
	encoded := encodedFromEntry(entry)
	if err := s.complete(ctx, job, encoded); err != nil {
		return nil, s.fail(ctx, job, err)
	}
	return &MixResult{Mix: job.mix, Audio: encoded, Cached: true}, nil
}

// render walks the job through decoding and rendering to ready.
func (s *MixService) render(ctx context.Context, job *mixJob) (*MixResult, error) {
	const op = "MixService.render"

	if err := s.transition(ctx, job.mix, models.MixStatusDecoding, nil); err != nil {
		return nil, err
	}

	narration, err := s.mixer.DecodeToBuffer(ctx, job.narration)
	if err != nil {
		return nil, s.fail(ctx, job, apperrors.TranslateAudioError(op, err))
	}

	var background *audio.Buffer
	if job.background != nil {
		if background, err = s.mixer.DecodeToBuffer(ctx, *job.background); err != nil {
			return nil, s.fail(ctx, job, apperrors.TranslateAudioError(op, err))
		}
	}

	if err := s.transition(ctx, job.mix, models.MixStatusRendering, nil); err != nil {
		return nil, err
	}

	encoded, err := s.mixer.ExportMixToWAV(ctx, narration, background, nil, job.settings)
	if err != nil {
		return nil, s.fail(ctx, job, apperrors.TranslateAudioError(op, err))
	}

	if err := s.complete(ctx, job, encoded); err != nil {
		return nil, s.fail(ctx, job, err)
	}

	if err := s.cache.Put(ctx, job.mix.Signature, entryFromEncoded(encoded)); err != nil {
		logger.Warn("Failed to cache mix %d: %v", job.mix.ID, err)
	}

	logger.Info("Rendered mix %d (%.2fs, %d bytes)", job.mix.ID, encoded.Duration, len(encoded.Data))
	return &MixResult{Mix: job.mix, Audio: encoded}, nil
}

// complete stores the encoded file and marks the job ready.
func (s *MixService) complete(ctx context.Context, job *mixJob, encoded *audio.EncodedAudio) error {
	const op = "MixService.complete"

	filename := uuid.NewString() + ".wav"
	if _, err := s.store.Save(ctx, filename, encoded.Data); err != nil {
		return apperrors.TranslateStorageError(op, err)
	}

	fields := map[string]any{
		"filename":         filename,
		"duration_seconds": encoded.Duration,
		"file_size":        int64(len(encoded.Data)),
		"sample_rate":      encoded.SampleRate,
	}
	if err := s.transition(ctx, job.mix, models.MixStatusReady, fields); err != nil {
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), filename); rmErr != nil {
			logger.Warn("Failed to remove orphaned mix file %s: %v", filename, rmErr)
		}
		return err
	}

	job.mix.Filename = filename
	job.mix.DurationSeconds = encoded.Duration
	job.mix.FileSize = int64(len(encoded.Data))
	job.mix.SampleRate = encoded.SampleRate
	return nil
}

func (s *MixService) transition(ctx context.Context, mix *models.Mix, to models.MixStatus, fields map[string]any) error {
	if err := s.repo.Transition(ctx, mix.ID, mix.Status, to, fields); err != nil {
		return MapRepoError("MixService.transition", err)
	}
	mix.Status = to
	return nil
}

// fail records err on the job and returns it. The record is updated even when ctx is cancelled.
func (s *MixService) fail(ctx context.Context, job *mixJob, err error) error {
	logAppError(fmt.Sprintf("mix %d", job.mix.ID), err)

	if job.mix.Status.IsTerminal() {
		return err
	}
	msg := userMessage(err)
	if tErr := s.transition(context.WithoutCancel(ctx), job.mix, models.MixStatusError, map[string]any{"error": msg}); tErr != nil {
		logger.Error("Failed to record failure of mix %d: %v", job.mix.ID, tErr)
		return err
	}
	job.mix.Error = &msg
	return err
}

// GetByID returns a mix record.
func (s *MixService) GetByID(ctx context.Context, id int64) (*models.Mix, error) {
	mix, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, MapRepoError("MixService.GetByID", err)
	}
	return mix, nil
}

// List returns mix records.
func (s *MixService) List(ctx context.Context, query *repository.ListQuery) (*repository.ListResult[models.Mix], error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, MapRepoError("MixService.List", err)
	}
	return result, nil
}

// OpenAudio returns the stored WAV of a ready mix. The caller closes the reader.
func (s *MixService) OpenAudio(ctx context.Context, id int64) (*models.Mix, io.ReadCloser, int64, error) {
	mix, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	if mix.Status != models.MixStatusReady {
		return nil, nil, 0, apperrors.Conflict(fmt.Sprintf("Mix is %s, not ready", mix.Status))
	}
	if !mix.HasAudio() {
		return nil, nil, 0, apperrors.NotFound("Mix audio has been purged")
	}

	rc, size, err := s.store.Open(ctx, mix.Filename)
	if err != nil {
		return nil, nil, 0, apperrors.TranslateStorageError("MixService.OpenAudio", err)
	}
	return mix, rc, size, nil
}

// Concatenate joins encoded chunks into one WAV, reusing a cached result for identical chunks.
func (s *MixService) Concatenate(ctx context.Context, blobs [][]byte) (*audio.EncodedAudio, error) {
	const op = "MixService.Concatenate"

	parts := make([][]byte, 0, len(blobs)+1)
	parts = append(parts, []byte("concat"))
	parts = append(parts, blobs...)
	signature := cache.Signature(parts...)

	if entry, ok := s.lookup(ctx, signature); ok {
		return encodedFromEntry(entry), nil
	}

	encoded, err := s.mixer.ConcatenateAudios(ctx, blobs)
	if err != nil {
		return nil, apperrors.TranslateAudioError(op, err)
	}

	if err := s.cache.Put(ctx, signature, entryFromEncoded(encoded)); err != nil {
		logger.Warn("Failed to cache concatenation: %v", err)
	}
	return encoded, nil
}

func entryFromEncoded(encoded *audio.EncodedAudio) cache.Entry {
	return cache.Entry{
		Data:       encoded.Data,
		SampleRate: encoded.SampleRate,
		Channels:   encoded.Channels,
		Frames:     encoded.Frames,
		Duration:   encoded.Duration,
	}
}

func encodedFromEntry(entry cache.Entry) *audio.EncodedAudio {
	return &audio.EncodedAudio{
		Data:       entry.Data,
		SampleRate: entry.SampleRate,
		Channels:   entry.Channels,
		Frames:     entry.Frames,
		Duration:   entry.Duration,
	}
}
