package syncer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dcache-admin/internal/logger"
	"dcache-admin/internal/metrics"

	"go.uber.org/zap"
)

const (
	DefaultProbeAttempts = 10
	DefaultProbeBackoff  = 100 * time.Millisecond
)

var (
	// ErrUnavailable is returned when the source never answered 200.
	ErrUnavailable = errors.New("source unavailable")
	ErrNoDigest    = errors.New("response carries no adler32 digest")
)

// Checksum is what the prober learns about a source file.
type Checksum struct {
	Adler32 string
	Size    int64
}

func (c Checksum) String() string {
	return "adler32:" + c.Adler32
}

// Prober checks that a freshly written file is readable through the door
// and fetches its checksum. The close event can arrive before the upload
// is visible, so it retries for a short while.
type Prober struct {
	client   *http.Client
	attempts int
	backoff  time.Duration
}

func NewProber(hc *http.Client, attempts int, backoff time.Duration) *Prober {
	if attempts <= 0 {
		attempts = DefaultProbeAttempts
	}
	if backoff < 0 {
		backoff = DefaultProbeBackoff
	}
	return &Prober{client: hc, attempts: attempts, backoff: backoff}
}

func (p *Prober) Probe(ctx context.Context, sourceURL string) (Checksum, error) {
	var last error

	for attempt := 1; attempt <= p.attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, p.backoff); err != nil {
				return Checksum{}, err
			}
		}

		resp, err := p.head(ctx, sourceURL)
		if err != nil {
			if ctx.Err() != nil {
				return Checksum{}, ctx.Err()
			}
			last = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			last = fmt.Errorf("HEAD %s: %s", sourceURL, resp.Status)
			continue
		}

		metrics.ProbeAttempts.Observe(float64(attempt))
		logger.Log.Debug("source available",
			zap.String("url", sourceURL),
			zap.Int("attempt", attempt),
			zap.Any("headers", resp.Header))

		return parseChecksum(resp)
	}

	return Checksum{}, fmt.Errorf("%w after %d attempts: %w", ErrUnavailable, p.attempts, last)
}

func (p *Prober) head(ctx context.Context, sourceURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build probe request: %w", err)
	}
	req.Header.Set("Want-Digest", "adler32")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	return resp, nil
}

func parseChecksum(resp *http.Response) (Checksum, error) {
	adler32, ok := digest(resp.Header.Values("Digest"), "adler32")
	if !ok {
		return Checksum{}, ErrNoDigest
	}

	size := resp.ContentLength
	if v := resp.Header.Get("Content-Length"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Checksum{}, fmt.Errorf("invalid Content-Length %q: %w", v, err)
		}
		size = n
	}
	if size < 0 {
		return Checksum{}, errors.New("response carries no Content-Length")
	}

	return Checksum{Adler32: adler32, Size: size}, nil
}

// digest picks one algorithm out of RFC 3230 Digest header values such as
// "md5=..., adler32=0a1b2c3d".
func digest(values []string, algorithm string) (string, bool) {
	for _, v := range values {
		for item := range strings.SplitSeq(v, ",") {
			name, value, ok := strings.Cut(strings.TrimSpace(item), "=")
			if ok && strings.EqualFold(name, algorithm) && value != "" {
				return value, true
			}
		}
	}
	return "", false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
