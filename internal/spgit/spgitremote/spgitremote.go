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

// Package spgitremote defines the contract between the engine and the
// external mutable ordered item catalog: reads of the current list state
// and last-writer-wins replacement of it.
//
// Authentication, pagination mechanics, and rate limits are the
// implementation's concern; the engine consumes the interface only.
package spgitremote

import (
	"context"
	"errors"
	"fmt"

	"github.com/pap-art/spgit/internal/spgit/spgitobject"
)

// RemoteList is the external catalog capability the engine consumes.
//
// Reads are idempotent; writes are last-writer-wins.
type RemoteList interface {
	// FetchItems reads the current ordered item list.
	FetchItems(ctx context.Context, listID string) ([]spgitobject.Item, error)
	// ReplaceItems replaces the list contents with the given item
	// identifiers, in order.
	ReplaceItems(ctx context.Context, listID string, itemIDs []string) error
	// ResolveURL resolves a catalog URL to a list identifier.
	ResolveURL(ctx context.Context, url string) (string, error)
	// CreateList creates a new empty list and returns its identifier.
	CreateList(ctx context.Context, name string) (string, error)
}

var errRemote = errors.New("remote error")

// NewError returns an error that satisfies IsRemoteError.
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errRemote, fmt.Sprintf(format, args...))
}

// WrapError marks err as a remote error, preserving its chain.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errRemote, err)
}

// IsRemoteError returns true if the error came from the external catalog.
func IsRemoteError(err error) bool {
	return errors.Is(err, errRemote)
}
