package integrity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/retry"
	"git.home.luguber.info/inful/sitecfg/internal/util/sets"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxBytes      = 5 << 20
	defaultMaxConcurrent = 4
	userAgent            = "sitecfg-integrity/1.0"
)

// Resource is a fetchable asset with optional integrity metadata.
type Resource struct {
	Href      string
	Integrity string
}

// Failure pairs a resource with the reason it must not be applied.
type Failure struct {
	Resource Resource
	Err      error
}

// Report partitions resources by verification outcome. Only Verified and
// Unchecked resources may be applied to a page.
type Report struct {
	Verified  []Resource
	Unchecked []Resource
	Failed    []Failure
}

// Applicable returns the resources that passed or declared no integrity, in input order.
func (r *Report) Applicable(in []Resource) []Resource {
	failed := sets.New[Resource]()
	for _, f := range r.Failed {
		failed.Add(f.Resource)
	}
	var out []Resource
	for _, res := range in {
		if !failed.Has(res) {
			out = append(out, res)
		}
	}
	return out
}

// Verifier fetches resources over HTTP and checks them against their integrity metadata.
type Verifier struct {
	client        *http.Client
	baseURL       string
	maxBytes      int64
	maxConcurrent int
	logger        *slog.Logger
	recorder      metrics.Recorder
	retry         retry.Policy
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) VerifierOption { return func(v *Verifier) { v.client = c } }

// WithBaseURL resolves root-relative hrefs against base.
func WithBaseURL(base string) VerifierOption { return func(v *Verifier) { v.baseURL = base } }

// WithMaxConcurrent bounds parallel fetches.
func WithMaxConcurrent(n int) VerifierOption {
	return func(v *Verifier) {
		if n > 0 {
			v.maxConcurrent = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) VerifierOption { return func(v *Verifier) { v.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) VerifierOption { return func(v *Verifier) { v.recorder = r } }

// WithRetry sets the backoff applied to transient fetch failures.
func WithRetry(p retry.Policy) VerifierOption { return func(v *Verifier) { v.retry = p } }

// NewVerifier creates a Verifier with a timeout-bound client honouring proxy env vars.
func NewVerifier(timeout time.Duration, opts ...VerifierOption) *Verifier {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	v := &Verifier{
		client:        &http.Client{Timeout: timeout, Transport: transport},
		maxBytes:      defaultMaxBytes,
		maxConcurrent: defaultMaxConcurrent,
		logger:        slog.Default(),
		recorder:      metrics.NoopRecorder{},
		retry:         retry.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VerifyAll fetches every resource that declares integrity metadata and
// verifies it. Resources without metadata are reported as unchecked. The
// returned error joins every failure; the report is always returned.
func (v *Verifier) VerifyAll(ctx context.Context, resources []Resource) (*Report, error) {
	type outcome struct {
		err     error
		checked bool
	}
	results := make([]outcome, len(resources))
	sem := make(chan struct{}, v.maxConcurrent)
	var wg sync.WaitGroup

	for i, res := range resources {
		if strings.TrimSpace(res.Integrity) == "" {
			continue
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int, res Resource) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = outcome{err: v.verifyOne(ctx, res), checked: true}
		}(i, res)
	}
	wg.Wait()

	report := &Report{}
	var errs []error
	for i, res := range resources {
		switch r := results[i]; {
		case !r.checked:
			report.Unchecked = append(report.Unchecked, res)
			v.recorder.IncIntegrityResult(metrics.IntegrityUnchecked)
		case r.err != nil:
			report.Failed = append(report.Failed, Failure{Resource: res, Err: r.err})
			errs = append(errs, r.err)
			v.logger.Error("Stylesheet failed integrity check", logfields.URL(res.Href), logfields.Error(r.err))
		default:
			report.Verified = append(report.Verified, res)
			v.recorder.IncIntegrityResult(metrics.IntegrityVerified)
			v.logger.Debug("Stylesheet verified", logfields.URL(res.Href))
		}
	}
	return report, errors.Join(errs...)
}

func (v *Verifier) verifyOne(ctx context.Context, res Resource) error {
	target, err := v.resolve(res.Href)
	if err != nil {
		v.recorder.IncIntegrityResult(metrics.IntegrityFetchFailed)
		return err
	}
	var body []byte
	err = v.retry.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			v.logger.Debug("Retrying stylesheet fetch", logfields.URL(target), slog.Int("attempt", attempt))
		}
		start := time.Now()
		var ferr error
		body, ferr = v.fetch(ctx, target)
		v.recorder.ObserveAssetFetch(time.Since(start), ferr == nil)
		return ferr
	})
	if err != nil {
		v.recorder.IncIntegrityResult(metrics.IntegrityFetchFailed)
		return err
	}
	if err := Verify(body, res.Integrity); err != nil {
		if ce, ok := ferrors.AsClassified(err); ok && ce.Code() == ferrors.CodeIntegrityMismatch {
			v.recorder.IncIntegrityResult(metrics.IntegrityMismatch)
			return ce.WithContext(ferrors.ContextTarget, res.Href)
		}
		return err
	}
	return nil
}

func (v *Verifier) resolve(href string) (string, error) {
	u, err := url.Parse(href)
	if err != nil {
		return "", ferrors.InvalidURL("href", href).WithCause(err).Build()
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href, nil
	}
	if v.baseURL == "" {
		return "", ferrors.NetworkError("cannot fetch relative stylesheet without a base url").
			WithContext(ferrors.ContextTarget, href).Build()
	}
	base, err := url.Parse(v.baseURL)
	if err != nil {
		return "", ferrors.InvalidURL("baseUrl", v.baseURL).WithCause(err).Build()
	}
	return base.ResolveReference(u).String(), nil
}

func (v *Verifier) fetch(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create request").
			WithContext(ferrors.ContextTarget, target).Build()
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "request failed").
			Retryable().WithContext(ferrors.ContextTarget, target).Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		eb := ferrors.NetworkError(fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithContext(ferrors.ContextTarget, target).
			WithContext("status", resp.StatusCode)
		// Only server errors and throttling are worth another attempt.
		if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
			eb = eb.WithRetry(ferrors.RetryNever)
		}
		return nil, eb.Build()
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, v.maxBytes+1))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to read response").
			WithContext(ferrors.ContextTarget, target).Build()
	}
	if int64(len(body)) > v.maxBytes {
		return nil, ferrors.NetworkError("stylesheet exceeds size limit").WithRetry(ferrors.RetryNever).
			WithContext(ferrors.ContextTarget, target).Build()
	}
	return body, nil
}
