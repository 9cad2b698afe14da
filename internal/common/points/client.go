// Package points is the creation service client.
package points

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"collection-points/internal/common/errors"
	commonhttp "collection-points/internal/common/http"
	"collection-points/internal/models"

	"github.com/google/uuid"
)

const IdempotencyHeader = "Idempotency-Key"

type Client struct {
	http  *commonhttp.Client
	newID func() string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWith(commonhttp.NewClient(baseURL, timeout))
}

func NewClientWith(httpClient *commonhttp.Client) *Client {
	return &Client{http: httpClient, newID: uuid.NewString}
}

// CreatePoint sends req as one multipart POST /points. Each call carries a
// fresh idempotency key. Failures are SUBMISSION_FAILED; a 4xx status makes
// the error non-retryable.
func (c *Client) CreatePoint(ctx context.Context, req *models.CreationRequest) (*models.Point, error) {
	var body bytes.Buffer
	contentType, err := EncodeMultipart(&body, req)
	if err != nil {
		return nil, errors.NewSubmissionFailedError(0, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.http.URL("points"), &body)
	if err != nil {
		return nil, errors.NewSubmissionFailedError(0, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	key := c.newID()
	httpReq.Header.Set(IdempotencyHeader, key)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.NewSubmissionFailedError(0, fmt.Errorf("failed to execute request: %w", err)).
			WithMetadata("idempotencyKey", key)
	}
	defer resp.Body.Close()

	if err := commonhttp.CheckStatus(resp); err != nil {
		return nil, errors.NewSubmissionFailedError(resp.StatusCode, err).
			WithMetadata("idempotencyKey", key)
	}

	return decodePoint(resp.Body, req), nil
}

// decodePoint reads the created record. The point exists once the service
// answered 2xx, so an empty or unreadable body falls back to the submitted
// values instead of failing.
func decodePoint(r io.Reader, req *models.CreationRequest) *models.Point {
	var point models.Point
	if err := json.NewDecoder(r).Decode(&point); err == nil {
		if point.Items == nil {
			point.Items = uniqueSorted(req.Items)
		}
		return &point
	}
	return &models.Point{
		Name:      req.Profile.Name,
		Email:     req.Profile.Email,
		Whatsapp:  req.Profile.Phone,
		UF:        req.Region.StateCode,
		City:      req.Region.CityName,
		Latitude:  req.Coordinate.Latitude,
		Longitude: req.Coordinate.Longitude,
		Items:     uniqueSorted(req.Items),
	}
}

func uniqueSorted(ids []int) []int {
	out := append([]int{}, ids...)
	sort.Ints(out)
	n := 0
	for i, id := range out {
		if i > 0 && out[n-1] == id {
			continue
		}
		out[n] = id
		n++
	}
	return out[:n]
}
