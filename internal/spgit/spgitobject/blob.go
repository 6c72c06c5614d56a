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

package spgitobject

import "encoding/json"

// MarshalBlob returns the canonical payload of a Blob: the UTF-8 JSON of the
// item with stable key order.
func MarshalBlob(item Item) ([]byte, error) {
	return json.Marshal(item)
}

// UnmarshalBlob parses a Blob payload.
func UnmarshalBlob(payload []byte) (Item, error) {
	var item Item
	if err := json.Unmarshal(payload, &item); err != nil {
		return Item{}, NewCorruptError("invalid blob payload: %v", err)
	}
	return item, nil
}
