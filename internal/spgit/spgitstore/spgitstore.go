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

// Package spgitstore persists objects under a two-level hex fan-out:
// objects/<first 2 hex>/<remaining 38 hex>, zlib-deflated.
//
// Writes are write-if-absent: putting bytes that hash to an existing digest
// is a no-op, which is the store's natural deduplication.
package spgitstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pap-art/spgit/internal/pkg/atomicfile"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"go.uber.org/zap"
)

var errNotExist = errors.New("object does not exist")

// IsNotExist returns true if the error reports a missing object.
func IsNotExist(err error) bool {
	return errors.Is(err, errNotExist)
}

// NewErrNotExist returns a new error for an object not existing.
func NewErrNotExist(digest spgithash.Digest) error {
	return fmt.Errorf("%w: %s", errNotExist, digest.String())
}

// Store is the content-addressed object store.
//
// A single process assumption: no cross-process coordination beyond atomic
// temp-file-plus-rename writes.
type Store struct {
	logger         *zap.Logger
	objectsDirPath string
}

// NewStore returns a new Store rooted at objectsDirPath.
func NewStore(logger *zap.Logger, objectsDirPath string) *Store {
	return &Store{
		logger:         logger,
		objectsDirPath: objectsDirPath,
	}
}

// Put frames, hashes, and stores the payload, returning its digest.
//
// If an object with the resulting digest already exists this is a no-op.
func (s *Store) Put(ctx context.Context, kind spgitobject.Kind, payload []byte) (spgithash.Digest, error) {
	frame := spgitobject.Frame(kind, payload)
	digest := spgitobject.DigestForFrame(frame)
	objectPath := s.objectPath(digest)
	if _, err := os.Stat(objectPath); err == nil {
		return digest, nil
	} else if !os.IsNotExist(err) {
		return spgithash.Digest{}, err
	}
	compressed, err := spgitobject.Deflate(frame)
	if err != nil {
		return spgithash.Digest{}, err
	}
	if err := atomicfile.Write(objectPath, compressed, 0444); err != nil {
		return spgithash.Digest{}, err
	}
	s.logger.Debug(
		"object written",
		zap.String("digest", digest.String()),
		zap.String("kind", kind.String()),
		zap.Int("size", len(payload)),
	)
	return digest, nil
}

// Get reads, inflates, and parses the object for the digest.
//
// The stored bytes are re-hashed on read: a digest mismatch reports the
// object as corrupt.
func (s *Store) Get(ctx context.Context, digest spgithash.Digest) (spgitobject.Kind, []byte, error) {
	compressed, err := os.ReadFile(s.objectPath(digest))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil, NewErrNotExist(digest)
		}
		return 0, nil, err
	}
	frame, err := spgitobject.Inflate(compressed)
	if err != nil {
		return 0, nil, fmt.Errorf("object %s: %w", digest.String(), err)
	}
	if actual := spgitobject.DigestForFrame(frame); actual != digest {
		return 0, nil, fmt.Errorf(
			"object %s: %w",
			digest.String(),
			spgitobject.NewCorruptError("content hashes to %s", actual.String()),
		)
	}
	kind, payload, err := spgitobject.ParseFrame(frame)
	if err != nil {
		return 0, nil, fmt.Errorf("object %s: %w", digest.String(), err)
	}
	return kind, payload, nil
}

// Exists returns true if an object with the digest is stored.
func (s *Store) Exists(ctx context.Context, digest spgithash.Digest) (bool, error) {
	if _, err := os.Stat(s.objectPath(digest)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Walk calls f for every stored digest.
func (s *Store) Walk(ctx context.Context, f func(spgithash.Digest) error) error {
	fanOutEntries, err := os.ReadDir(s.objectsDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, fanOutEntry := range fanOutEntries {
		if !fanOutEntry.IsDir() || len(fanOutEntry.Name()) != 2 {
			continue
		}
		objectEntries, err := os.ReadDir(filepath.Join(s.objectsDirPath, fanOutEntry.Name()))
		if err != nil {
			return err
		}
		for _, objectEntry := range objectEntries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			digest, err := spgithash.ParseDigest(fanOutEntry.Name() + objectEntry.Name())
			if err != nil {
				// temp files and strays are not objects
				continue
			}
			if err := f(digest); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) objectPath(digest spgithash.Digest) string {
	hexDigest := digest.String()
	return filepath.Join(s.objectsDirPath, hexDigest[:2], hexDigest[2:])
}
