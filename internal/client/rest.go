package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// restClient implements EntityClient against a REST admin API where each
// entity type is a collection resource ({base}/{type}, {base}/{type}/{id}).
// Gateway and Konnect clients are thin configurations of this type.
type restClient struct {
	systemID   string
	baseURL    string
	authHeader string
	authValue  string
	client     *http.Client

	connCode errors.ErrorCode
	authCode errors.ErrorCode
}

type listResponse struct {
	Data   []entity.Fields `json:"data"`
	Offset string          `json:"offset,omitempty"`
	Next   string          `json:"next,omitempty"`
}

// List returns every entity of the given type, following pagination offsets.
func (c *restClient) List(ctx context.Context, typ entity.Type) ([]entity.Snapshot, error) {
	var snapshots []entity.Snapshot
	offset := ""

	for {
		path := fmt.Sprintf("/%s", typ)
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}

		var page listResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}

		for _, fields := range page.Data {
			snapshots = append(snapshots, c.snapshot(typ, fields))
		}

		if page.Offset == "" {
			return snapshots, nil
		}
		offset = page.Offset
	}
}

// Get returns one entity by name or id.
func (c *restClient) Get(ctx context.Context, typ entity.Type, nameOrID string) (entity.Snapshot, error) {
	var fields entity.Fields
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%s/%s", typ, url.PathEscape(nameOrID)), nil, &fields); err != nil {
		return entity.Snapshot{}, err
	}
	return c.snapshot(typ, fields), nil
}

// Lookup checks for existence without treating absence as a failure.
func (c *restClient) Lookup(ctx context.Context, typ entity.Type, nameOrID string) (Lookup, error) {
	snap, err := c.Get(ctx, typ, nameOrID)
	if err != nil {
		if errors.IsNotFound(err) {
			return Lookup{Found: false}, nil
		}
		return Lookup{}, err
	}
	return Lookup{Found: true, Entity: snap}, nil
}

// Create adds a new entity.
func (c *restClient) Create(ctx context.Context, typ entity.Type, fields entity.Fields) (entity.Snapshot, error) {
	var created entity.Fields
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/%s", typ), fields, &created); err != nil {
		return entity.Snapshot{}, err
	}
	return c.snapshot(typ, created), nil
}

// Update replaces the mutable fields of an existing entity.
func (c *restClient) Update(ctx context.Context, typ entity.Type, nameOrID string, fields entity.Fields) (entity.Snapshot, error) {
	var updated entity.Fields
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/%s/%s", typ, url.PathEscape(nameOrID)), fields, &updated); err != nil {
		return entity.Snapshot{}, err
	}
	return c.snapshot(typ, updated), nil
}

// Delete removes an entity.
func (c *restClient) Delete(ctx context.Context, typ entity.Type, nameOrID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%s/%s", typ, url.PathEscape(nameOrID)), nil, nil)
}

func (c *restClient) snapshot(typ entity.Type, fields entity.Fields) entity.Snapshot {
	id, _ := fields["id"].(string)
	return entity.Snapshot{Type: typ, ID: id, Fields: fields}
}

func (c *restClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authHeader != "" {
		req.Header.Set(c.authHeader, c.authValue)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(c.connCode, fmt.Sprintf("%s unreachable: %s", c.systemID, c.baseURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", c.systemID, err)
		}
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(c.authCode, fmt.Sprintf("%s rejected credentials", c.systemID),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	case http.StatusNotFound:
		return errors.New(errors.ErrCodeEntityNotFound,
			fmt.Sprintf("%s: %s %s returned 404", c.systemID, method, path))
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return errors.Wrap(errors.ErrCodeSchemaInvalid, fmt.Sprintf("%s rejected the entity", c.systemID),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	default:
		return fmt.Errorf("%s: %s %s returned status %d: %s", c.systemID, method, path, resp.StatusCode, msg)
	}
}

// NewGateway creates a client for the self-hosted gateway's admin API.
func NewGateway(adminURL string) EntityClient {
	return &restClient{
		systemID: "gateway",
		baseURL:  adminURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		connCode: errors.ErrCodeGatewayUnreachable,
		authCode: errors.ErrCodeGatewayAuth,
	}
}

// NewKonnect creates a client for the Konnect control plane mirror.
// Entities live under the control plane's core-entities collection.
func NewKonnect(apiURL, controlPlaneID, token string) EntityClient {
	return &restClient{
		systemID:   "konnect",
		baseURL:    fmt.Sprintf("%s/v2/control-planes/%s/core-entities", apiURL, controlPlaneID),
		authHeader: "Authorization",
		authValue:  "Bearer " + token,
		client:     &http.Client{Timeout: 30 * time.Second},
		connCode:   errors.ErrCodeKonnectUnreachable,
		authCode:   errors.ErrCodeKonnectAuth,
	}
}

var _ EntityClient = (*restClient)(nil)
