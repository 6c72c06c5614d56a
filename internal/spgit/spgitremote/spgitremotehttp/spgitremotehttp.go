// Copyright 2021-2025 The spgit Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package spgitremotehttp implements RemoteList over the catalog's JSON
// HTTP API: paginated reads, batched replacement writes, bearer-token
// authentication, and exponential-backoff retries on transient failures.
package spgitremotehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jdx/go-netrc"
	"github.com/pap-art/spgit/internal/spgit/spgitconfig"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitremote"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// fetchPageSize is the catalog's maximum read page.
	fetchPageSize = 100
	// replaceBatchSize is the catalog's maximum write batch.
	replaceBatchSize = 100
)

// Client implements spgitremote.RemoteList over HTTP.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

var _ spgitremote.RemoteList = (*Client)(nil)

// ClientOption is an option for a new Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// WithToken sets the bearer token sent on every request.
func WithToken(token string) ClientOption {
	return func(client *Client) {
		client.token = token
	}
}

// NewClient returns a new Client for the catalog at baseURL.
func NewClient(logger *zap.Logger, baseURL string, options ...ClientOption) *Client {
	client := &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// ResolveToken returns the credential for host: the user config first, a
// netrc entry for the host second.
func ResolveToken(userConfig *spgitconfig.UserConfig, host string) (string, error) {
	if credential, ok := userConfig.Credentials[host]; ok && credential.Token != "" {
		return credential.Token, nil
	}
	homeDirPath, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	netrcData, err := netrc.Parse(filepath.Join(homeDirPath, ".netrc"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	machine := netrcData.Machine(host)
	if machine == nil {
		return "", nil
	}
	return machine.Get("password"), nil
}

type itemsPage struct {
	Items []spgitobject.Item `json:"items"`
	Total int                `json:"total"`
}

// FetchItems implements spgitremote.RemoteList, reading the list page by
// page.
func (c *Client) FetchItems(ctx context.Context, listID string) ([]spgitobject.Item, error) {
	var items []spgitobject.Item
	offset := 0
	for {
		requestURL := fmt.Sprintf(
			"%s/v1/lists/%s/items?offset=%d&limit=%d",
			c.baseURL,
			url.PathEscape(listID),
			offset,
			fetchPageSize,
		)
		var page itemsPage
		if err := c.do(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		offset += len(page.Items)
		if offset >= page.Total || len(page.Items) == 0 {
			break
		}
	}
	for position := range items {
		items[position].Position = position
	}
	c.logger.Debug("fetched items", zap.String("list", listID), zap.Int("count", len(items)))
	return items, nil
}

type replaceRequest struct {
	IDs []string `json:"ids"`
}

// ReplaceItems implements spgitremote.RemoteList: the first batch replaces
// the list, subsequent batches append.
func (c *Client) ReplaceItems(ctx context.Context, listID string, itemIDs []string) error {
	itemsURL := fmt.Sprintf("%s/v1/lists/%s/items", c.baseURL, url.PathEscape(listID))
	first := itemIDs
	if len(first) > replaceBatchSize {
		first = first[:replaceBatchSize]
	}
	if err := c.do(ctx, http.MethodPut, itemsURL, replaceRequest{IDs: first}, nil); err != nil {
		return err
	}
	for offset := replaceBatchSize; offset < len(itemIDs); offset += replaceBatchSize {
		end := offset + replaceBatchSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		if err := c.do(ctx, http.MethodPost, itemsURL, replaceRequest{IDs: itemIDs[offset:end]}, nil); err != nil {
			return err
		}
	}
	c.logger.Debug("replaced items", zap.String("list", listID), zap.Int("count", len(itemIDs)))
	return nil
}

// ResolveURL implements spgitremote.RemoteList.
func (c *Client) ResolveURL(ctx context.Context, listURL string) (string, error) {
	requestURL := fmt.Sprintf("%s/v1/resolve?url=%s", c.baseURL, url.QueryEscape(listURL))
	var response struct {
		ListID string `json:"list_id"`
	}
	if err := c.do(ctx, http.MethodGet, requestURL, nil, &response); err != nil {
		return "", err
	}
	if response.ListID == "" {
		return "", spgitremote.NewError("catalog did not resolve %s", listURL)
	}
	return response.ListID, nil
}

// CreateList implements spgitremote.RemoteList.
func (c *Client) CreateList(ctx context.Context, name string) (string, error) {
	requestURL := fmt.Sprintf("%s/v1/lists", c.baseURL)
	var response struct {
		ListID string `json:"list_id"`
	}
	request := struct {
		Name string `json:"name"`
	}{Name: name}
	if err := c.do(ctx, http.MethodPost, requestURL, request, &response); err != nil {
		return "", err
	}
	if response.ListID == "" {
		return "", spgitremote.NewError("catalog did not return a list id")
	}
	return response.ListID, nil
}

// do performs one request with retries on transient failures. 4xx responses
// other than 429 are permanent.
func (c *Client) do(ctx context.Context, method string, requestURL string, requestBody interface{}, responseBody interface{}) error {
	var encoded []byte
	if requestBody != nil {
		var err error
		encoded, err = json.Marshal(requestBody)
		if err != nil {
			return err
		}
	}
	operation := func() error {
		return c.doOnce(ctx, method, requestURL, encoded, responseBody)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return spgitremote.WrapError(err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method string, requestURL string, encoded []byte, responseBody interface{}) (retErr error) {
	var bodyReader io.Reader
	if encoded != nil {
		bodyReader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return backoff.Permanent(err)
	}
	if encoded != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}
	response, err := c.httpClient.Do(request)
	if err != nil {
		// network errors are retryable
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, response.Body.Close())
	}()
	switch {
	case response.StatusCode == http.StatusOK:
	case response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500:
		return fmt.Errorf("catalog returned %d for %s %s", response.StatusCode, method, requestURL)
	default:
		return backoff.Permanent(fmt.Errorf("catalog returned %d for %s %s", response.StatusCode, method, requestURL))
	}
	if responseBody == nil {
		_, err := io.Copy(io.Discard, response.Body)
		return err
	}
	if err := json.NewDecoder(response.Body).Decode(responseBody); err != nil {
		return backoff.Permanent(fmt.Errorf("invalid catalog response for %s %s: %v", method, requestURL, err))
	}
	return nil
}
