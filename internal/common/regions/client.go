// Package regions is the region directory client: federative units (states)
// and the cities inside each of them.
package regions

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"collection-points/internal/common/errors"
	commonhttp "collection-points/internal/common/http"
)

const ServiceName = "region-directory"

// Dialect selects the wire format of the directory.
type Dialect string

const (
	// DialectGeneric: GET /states -> [{code}], GET /states/{code}/cities -> [{name}].
	DialectGeneric Dialect = "generic"
	// DialectIBGE: GET /estados -> [{sigla}], GET /estados/{uf}/municipios -> [{nome}].
	DialectIBGE Dialect = "ibge"
)

type Client struct {
	http    *commonhttp.Client
	dialect Dialect
}

func NewClient(baseURL string, timeout time.Duration, dialect Dialect) *Client {
	return NewClientWith(commonhttp.NewClient(baseURL, timeout), dialect)
}

func NewClientWith(httpClient *commonhttp.Client, dialect Dialect) *Client {
	if dialect == "" {
		dialect = DialectGeneric
	}
	return &Client{http: httpClient, dialect: dialect}
}

type genericState struct {
	Code string `json:"code"`
}

type genericCity struct {
	Name string `json:"name"`
}

type ibgeState struct {
	Sigla string `json:"sigla"`
}

type ibgeCity struct {
	Nome string `json:"nome"`
}

// ListStates returns the state codes in directory order. Blank codes are dropped.
func (c *Client) ListStates(ctx context.Context) ([]string, error) {
	var codes []string

	switch c.dialect {
	case DialectIBGE:
		var resp []ibgeState
		if err := c.http.GetJSON(ctx, "estados", &resp); err != nil {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, err)
		}
		for _, s := range resp {
			codes = appendNonBlank(codes, s.Sigla)
		}
	default:
		var resp []genericState
		if err := c.http.GetJSON(ctx, "states", &resp); err != nil {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, err)
		}
		for _, s := range resp {
			codes = appendNonBlank(codes, s.Code)
		}
	}

	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

// ListCities returns the city names of stateCode.
func (c *Client) ListCities(ctx context.Context, stateCode string) ([]string, error) {
	if strings.TrimSpace(stateCode) == "" {
		return nil, errors.NewDirectoryUnavailableError(ServiceName, fmt.Errorf("state code is required"))
	}
	code := url.PathEscape(stateCode)
	var names []string

	switch c.dialect {
	case DialectIBGE:
		var resp []ibgeCity
		if err := c.http.GetJSON(ctx, "estados/"+code+"/municipios", &resp); err != nil {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, err).WithMetadata("stateCode", stateCode)
		}
		for _, city := range resp {
			names = appendNonBlank(names, city.Nome)
		}
	default:
		var resp []genericCity
		if err := c.http.GetJSON(ctx, "states/"+code+"/cities", &resp); err != nil {
			return nil, errors.NewDirectoryUnavailableError(ServiceName, err).WithMetadata("stateCode", stateCode)
		}
		for _, city := range resp {
			names = appendNonBlank(names, city.Name)
		}
	}

	if names == nil {
		names = []string{}
	}
	return names, nil
}

func appendNonBlank(dst []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return dst
	}
	return append(dst, v)
}
