package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/models"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
)

// fakeMixRepo keeps mixes in memory and enforces the job state machine.
type fakeMixRepo struct {
	mu      sync.Mutex
	nextID  int64
	mixes   map[int64]*models.Mix
	history map[int64][]models.MixStatus
}

func newFakeMixRepo() *fakeMixRepo {
	return &fakeMixRepo{mixes: map[int64]*models.Mix{}, history: map[int64][]models.MixStatus{}}
}

func (r *fakeMixRepo) Create(_ context.Context, mix *models.Mix) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	mix.ID = r.nextID
	mix.CreatedAt = time.Now()
	stored := *mix
	r.mixes[mix.ID] = &stored
	r.history[mix.ID] = []models.MixStatus{mix.Status}
	return nil
}

func (r *fakeMixRepo) GetByID(_ context.Context, id int64) (*models.Mix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mix, ok := r.mixes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *mix
	return &out, nil
}

func (r *fakeMixRepo) List(context.Context, *repository.ListQuery) (*repository.ListResult[models.Mix], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := &repository.ListResult[models.Mix]{Limit: repository.DefaultListLimit}
	for id := int64(1); id <= r.nextID; id++ {
		if mix, ok := r.mixes[id]; ok {
			result.Data = append(result.Data, *mix)
		}
	}
	result.Total = int64(len(result.Data))
	return result, nil
}

func (r *fakeMixRepo) FindReadyBySignature(_ context.Context, signature string) (*models.Mix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mix := range r.mixes {
		if mix.Signature == signature && mix.Status == models.MixStatusReady {
			out := *mix
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMixRepo) Transition(_ context.Context, id int64, from, to models.MixStatus, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !from.CanTransition(to) {
		return repository.ErrInvalidTransition
	}
	mix, ok := r.mixes[id]
	if !ok {
		return repository.ErrNotFound
	}
	if mix.Status != from {
		return repository.ErrInvalidTransition
	}
	mix.Status = to
	for k, v := range fields {
		switch k {
		case "filename":
			mix.Filename = v.(string)
		case "duration_seconds":
			mix.DurationSeconds = v.(float64)
		case "file_size":
			mix.FileSize = v.(int64)
		case "sample_rate":
			mix.SampleRate = v.(int)
		case "error":
			msg := v.(string)
			mix.Error = &msg
		}
	}
	r.history[id] = append(r.history[id], to)
	return nil
}

func (r *fakeMixRepo) GetExpired(context.Context, time.Time) ([]models.Mix, error) { return nil, nil }
func (r *fakeMixRepo) MarkFilePurged(context.Context, int64) error                 { return nil }
func (r *fakeMixRepo) GetAllFilenames(context.Context) ([]string, error)           { return nil, nil }

func (r *fakeMixRepo) statuses(id int64) []models.MixStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MixStatus(nil), r.history[id]...)
}

type fakeAssetRepo struct {
	assets map[int64]*models.MixingAsset
}

func (r *fakeAssetRepo) GetByID(_ context.Context, id int64) (*models.MixingAsset, error) {
	asset, ok := r.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return asset, nil
}

func (r *fakeAssetRepo) List(_ context.Context, category models.AssetCategory, _ *repository.ListQuery) (*repository.ListResult[models.MixingAsset], error) {
	result := &repository.ListResult[models.MixingAsset]{Limit: repository.DefaultListLimit}
	for _, a := range r.assets {
		if category == "" || a.Category == category {
			result.Data = append(result.Data, *a)
		}
	}
	result.Total = int64(len(result.Data))
	return result, nil
}

func (r *fakeAssetRepo) Upsert(context.Context, *models.MixingAsset) error { return nil }

// fakeMixer decodes every source to one second of silence. Sources named
// "bad" fail to decode.
type fakeMixer struct {
	mu      sync.Mutex
	decoded []string
	renders int
	concats int
}

const fakeRate = 8000

func (m *fakeMixer) SampleRate() int { return fakeRate }

func (m *fakeMixer) DecodeToBuffer(_ context.Context, src audio.Source) (*audio.Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decoded = append(m.decoded, src.Name)
	if src.Name == "explode" {
		panic("decoder blew up")
	}
	if src.Name == "bad" {
		return nil, audio.NewDecodeError(src.Name, errors.New("not audio"))
	}
	return audio.NewBuffer(fakeRate, 1, fakeRate), nil
}

func (m *fakeMixer) ExportMixToWAV(_ context.Context, narration, background, _ *audio.Buffer, _ audio.MixingSettings) (*audio.EncodedAudio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders++
	if narration == nil {
		return nil, audio.NewMixingError("narration", errors.New("missing"))
	}
	data := []byte("RIFF-mix")
	if background != nil {
		data = append(data, "+bed"...)
	}
	return &audio.EncodedAudio{Data: data, SampleRate: fakeRate, Channels: 2, Frames: fakeRate, Duration: 1}, nil
}

func (m *fakeMixer) ConcatenateAudios(_ context.Context, blobs [][]byte) (*audio.EncodedAudio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concats++
	if len(blobs) == 0 {
		return nil, audio.NewConcatenationError("chunks", errors.New("empty"))
	}
	var data []byte
	for _, b := range blobs {
		data = append(data, b...)
	}
	return &audio.EncodedAudio{Data: data, SampleRate: fakeRate, Channels: 1, Frames: len(blobs) * fakeRate, Duration: float64(len(blobs))}, nil
}

func (m *fakeMixer) decodedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.decoded...)
}
