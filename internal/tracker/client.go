// Waypost - GPS Tracker Geofence Ingestion and Map Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypost

package tracker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/tomtom215/waypost/internal/config"
	"github.com/tomtom215/waypost/internal/logging"
	"github.com/tomtom215/waypost/internal/metrics"
	"github.com/tomtom215/waypost/internal/models"
)

// Fetcher is implemented by Client and CircuitBreakerClient.
type Fetcher interface {
	FetchLatest(ctx context.Context) ([]models.LocationReport, error)
	Ping(ctx context.Context) error
}

// Client talks to the 365gps web API.
//
// Every FetchLatest builds a fresh cookie session, logs in and posts for the
// marker list. A shared limiter spaces requests across overlapping calls.
// Client is safe for concurrent use.
type Client struct {
	cfg       *config.VendorConfig
	limiter   *rate.Limiter
	markerURL string
	signalLoc *time.Location
}

// NewClient returns a client for cfg.
func NewClient(cfg *config.VendorConfig) (*Client, error) {
	u, err := url.Parse(cfg.MarkerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid marker url: %w", err)
	}
	q := u.Query()
	q.Set("timezonemins", strconv.Itoa(cfg.TimezoneMinutes))
	u.RawQuery = q.Encode()

	burst := int(math.Ceil(cfg.MaxRequestsPerSecond))
	if burst < 1 {
		burst = 1
	}

	return &Client{
		cfg:       cfg,
		limiter:   rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), burst),
		markerURL: u.String(),
		signalLoc: VendorLocation(cfg.TimezoneMinutes),
	}, nil
}

type session struct {
	http      *http.Client
	transport *http.Transport
}

func (s *session) close() {
	s.transport.CloseIdleConnections()
}

func (c *Client) newSession() (*session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: c.cfg.InsecureSkipVerify, //nolint:gosec // vendor certificate chain does not verify
		},
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: c.cfg.Timeout,
		MaxIdleConnsPerHost:   1,
	}

	return &session{
		http: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   c.cfg.Timeout,
		},
		transport: transport,
	}, nil
}

// FetchLatest logs in and returns the current marker list.
func (c *Client) FetchLatest(ctx context.Context) ([]models.LocationReport, error) {
	s, err := c.newSession()
	if err != nil {
		return nil, &NetworkError{Op: "session", Err: err}
	}
	defer s.close()

	if err := c.login(ctx, s); err != nil {
		return nil, err
	}

	body, err := c.markers(ctx, s)
	if err != nil {
		return nil, err
	}

	reports, err := DecodeMarkers(body, c.signalLoc)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("imei", logging.MaskIMEI(c.cfg.IMEI)).
		Int("reports", len(reports)).
		Int("bytes", len(body)).
		Msg("Fetched vendor markers")
	return reports, nil
}

// Ping performs the login step only.
func (c *Client) Ping(ctx context.Context) error {
	s, err := c.newSession()
	if err != nil {
		return &NetworkError{Op: "session", Err: err}
	}
	defer s.close()
	return c.login(ctx, s)
}

func (c *Client) login(ctx context.Context, s *session) error {
	form := url.Values{}
	form.Set("demo", "F")
	form.Set("username", c.cfg.IMEI)
	form.Set("password", c.cfg.Password)
	form.Set("form_type", "0")

	resp, err := c.post(ctx, s, "login", c.cfg.LoginURL, form.Encode())
	if err != nil {
		return err
	}
	if resp.status < 200 || resp.status > 299 {
		return &AuthError{Status: resp.status}
	}
	return nil
}

func (c *Client) markers(ctx context.Context, s *session) ([]byte, error) {
	resp, err := c.post(ctx, s, "markers", c.markerURL, "")
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status > 299 {
		return nil, &NetworkError{Op: "markers", Status: resp.status}
	}

	body, err := decompress(resp.encoding, resp.body)
	if err != nil {
		return nil, &DecodeError{Index: -1, Preview: preview(resp.body), Err: err}
	}
	return body, nil
}

type rawResponse struct {
	status   int
	encoding string
	body     []byte
}

func (c *Client) post(ctx context.Context, s *session, op, target, form string) (*rawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		metrics.RecordVendorRequest(op, "error", time.Since(start))
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	metrics.RecordVendorRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodySize {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("body exceeds %d bytes", maxBodySize)}
	}

	return &rawResponse{
		status:   resp.StatusCode,
		encoding: resp.Header.Get("Content-Encoding"),
		body:     body,
	}, nil
}
