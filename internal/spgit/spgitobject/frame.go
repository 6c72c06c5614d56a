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

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/klauspost/compress/zlib"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"go.uber.org/multierr"
)

// Frame prefixes the canonical payload with the "<kind> <len>\x00" header.
//
// The digest of an object is the SHA-1 of this frame.
func Frame(kind Kind, payload []byte) []byte {
	header := fmt.Sprintf("%s %d\x00", kind.String(), len(payload))
	frame := make([]byte, 0, len(header)+len(payload))
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// DigestForFrame returns the digest of a framed object.
func DigestForFrame(frame []byte) spgithash.Digest {
	return spgithash.NewDigestForBytes(frame)
}

// ParseFrame splits a frame into kind and payload, validating the header and
// the declared length.
func ParseFrame(frame []byte) (Kind, []byte, error) {
	nul := bytes.IndexByte(frame, 0)
	if nul < 0 {
		return 0, nil, NewCorruptError("missing frame header terminator")
	}
	header := string(frame[:nul])
	space := bytes.IndexByte([]byte(header), ' ')
	if space < 0 {
		return 0, nil, NewCorruptError("malformed frame header %q", header)
	}
	kind, err := ParseKind(header[:space])
	if err != nil {
		return 0, nil, err
	}
	declaredLen, err := strconv.Atoi(header[space+1:])
	if err != nil {
		return 0, nil, NewCorruptError("malformed frame length in header %q", header)
	}
	payload := frame[nul+1:]
	if len(payload) != declaredLen {
		return 0, nil, NewCorruptError("frame declares %d payload bytes, got %d", declaredLen, len(payload))
	}
	return kind, payload, nil
}

// Deflate compresses a frame for disk storage.
func Deflate(frame []byte) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	writer := zlib.NewWriter(buffer)
	if _, err := writer.Write(frame); err != nil {
		return nil, multierr.Append(err, writer.Close())
	}
	// Close flushes the zlib trailer into the buffer.
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Inflate decompresses a stored object back into its frame.
//
// Truncated or garbage zlib streams return an error satisfying IsCorrupt.
func Inflate(compressed []byte) (_ []byte, retErr error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, NewCorruptError("invalid zlib stream: %v", err)
	}
	defer func() {
		retErr = multierr.Append(retErr, reader.Close())
	}()
	frame, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewCorruptError("truncated zlib stream: %v", err)
	}
	return frame, nil
}
