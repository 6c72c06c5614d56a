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

// Package spgitremotemem implements an in-memory RemoteList for tests.
package spgitremotemem

import (
	"context"
	"fmt"
	"sync"

	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"github.com/pap-art/spgit/internal/spgit/spgitremote"
)

// RemoteList is an in-memory catalog.
//
// Item metadata for identifiers never seen via SetItems is synthesized from
// the identifier, matching a catalog that can describe any valid identifier.
type RemoteList struct {
	lock       sync.RWMutex
	lists      map[string][]spgitobject.Item
	known      map[string]spgitobject.Item
	urlToList  map[string]string
	nextListID int
}

var _ spgitremote.RemoteList = (*RemoteList)(nil)

// NewRemoteList returns a new empty in-memory catalog.
func NewRemoteList() *RemoteList {
	return &RemoteList{
		lists:     make(map[string][]spgitobject.Item),
		known:     make(map[string]spgitobject.Item),
		urlToList: make(map[string]string),
	}
}

// SetItems sets the list contents directly, registering item metadata.
func (r *RemoteList) SetItems(listID string, items []spgitobject.Item) {
	r.lock.Lock()
	defer r.lock.Unlock()
	copied := make([]spgitobject.Item, len(items))
	copy(copied, items)
	for position := range copied {
		copied[position].Position = position
		r.known[copied[position].ID] = copied[position]
	}
	r.lists[listID] = copied
}

// SetURL binds a catalog URL to a list identifier for ResolveURL.
func (r *RemoteList) SetURL(url string, listID string) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.urlToList[url] = listID
}

// FetchItems implements spgitremote.RemoteList.
func (r *RemoteList) FetchItems(ctx context.Context, listID string) ([]spgitobject.Item, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	items, ok := r.lists[listID]
	if !ok {
		return nil, spgitremote.NewError("list %s does not exist", listID)
	}
	copied := make([]spgitobject.Item, len(items))
	copy(copied, items)
	return copied, nil
}

// ReplaceItems implements spgitremote.RemoteList.
func (r *RemoteList) ReplaceItems(ctx context.Context, listID string, itemIDs []string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.lists[listID]; !ok {
		return spgitremote.NewError("list %s does not exist", listID)
	}
	items := make([]spgitobject.Item, 0, len(itemIDs))
	for position, itemID := range itemIDs {
		item, ok := r.known[itemID]
		if !ok {
			item = spgitobject.Item{ID: itemID, Name: itemID}
		}
		item.Position = position
		items = append(items, item)
	}
	r.lists[listID] = items
	return nil
}

// ResolveURL implements spgitremote.RemoteList.
func (r *RemoteList) ResolveURL(ctx context.Context, url string) (string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	listID, ok := r.urlToList[url]
	if !ok {
		return "", spgitremote.NewError("unknown list URL %s", url)
	}
	return listID, nil
}

// CreateList implements spgitremote.RemoteList.
func (r *RemoteList) CreateList(ctx context.Context, name string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.nextListID++
	listID := fmt.Sprintf("list:%d:%s", r.nextListID, name)
	r.lists[listID] = nil
	return listID, nil
}
