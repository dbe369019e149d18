package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Source references playable audio: a remote URL or an in-memory blob.
type Source struct {
	URL  string
	Data []byte
	// Name identifies the source in errors and logs.
	Name string
}

// URLSource references remote audio.
func URLSource(url string) Source {
	return Source{URL: url, Name: url}
}

// BlobSource references in-memory audio.
func BlobSource(name string, data []byte) Source {
	return Source{Data: data, Name: name}
}

func (s Source) label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.URL != "" {
		return s.URL
	}
	return "blob"
}

// Decoder fetches and decodes audio into buffers at a fixed sample rate.
type Decoder struct {
	sampleRate int
	client     *http.Client
	policy     FetchPolicy
}

// NewDecoder creates a decoder producing buffers at sampleRate that fetches remote audio under policy.
func NewDecoder(sampleRate int, policy FetchPolicy) *Decoder {
	return &Decoder{
		sampleRate: sampleRate,
		client:     policy.newClient(),
		policy:     policy,
	}
}

// SampleRate returns the rate of decoded buffers.
func (d *Decoder) SampleRate() int {
	return d.sampleRate
}

// DecodeToBuffer fetches the source if remote and decodes it at the decoder's sample rate.
// All failures are reported as decode errors; nothing is retried.
func (d *Decoder) DecodeToBuffer(ctx context.Context, src Source) (*Buffer, error) {
	data := src.Data
	if src.URL != "" && data == nil {
		fetched, err := d.fetch(ctx, src.URL)
		if err != nil {
			return nil, NewDecodeError(src.label(), err)
		}
		data = fetched
	}

	buf, err := d.decodeBytes(data)
	if err != nil {
		return nil, NewDecodeError(src.label(), err)
	}
	return buf, nil
}

func (d *Decoder) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if err := d.policy.checkURL(u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	maxBytes := d.policy.MaxBytes
	body := io.Reader(resp.Body)
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("audio exceeds %d bytes", maxBytes)
	}
	return data, nil
}

func (d *Decoder) decodeBytes(data []byte) (*Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("empty audio data")
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
		err    error
	)

	mtype := mimetype.Detect(data)
	switch {
	case mtype.Is("audio/wav"):
		stream, format, err = wav.Decode(bytes.NewReader(data))
	case mtype.Is("audio/mpeg"):
		stream, format, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("unsupported audio format %s", mtype.String())
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()

	var s beep.Streamer = stream
	if int(format.SampleRate) != d.sampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(d.sampleRate), stream)
	}

	buf, err := collect(s, d.sampleRate, format.NumChannels)
	if err != nil {
		return nil, err
	}
	if buf.Frames() == 0 {
		return nil, errors.New("audio contains no samples")
	}
	return buf, nil
}
