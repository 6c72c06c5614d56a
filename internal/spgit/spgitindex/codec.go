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

package spgitindex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pap-art/spgit/internal/pkg/atomicfile"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"go.uber.org/zap"
)

// file layout: magic, version, flags byte, record count, then per record
// four length-prefixed strings (id, name, creator, container), duration in
// milliseconds, and the position.

var indexMagic = []byte("SPIX")

const indexVersion uint32 = 1

const flagModified byte = 1 << 0

var errCorruptIndex = errors.New("corrupt index")

// IsCorrupt returns true if the error reports an unreadable index file.
func IsCorrupt(err error) bool {
	return errors.Is(err, errCorruptIndex)
}

// Save writes the index file atomically.
func (i *Index) Save() error {
	buffer := bytes.NewBuffer(nil)
	buffer.Write(indexMagic)
	writeUint32(buffer, indexVersion)
	var flags byte
	if i.Modified {
		flags |= flagModified
	}
	buffer.WriteByte(flags)
	writeUint32(buffer, uint32(len(i.Items)))
	for _, item := range i.Items {
		if err := writeString(buffer, item.ID); err != nil {
			return err
		}
		if err := writeString(buffer, item.Name); err != nil {
			return err
		}
		if err := writeString(buffer, item.Creator); err != nil {
			return err
		}
		if err := writeString(buffer, item.Container); err != nil {
			return err
		}
		writeUint64(buffer, uint64(item.DurationMS))
		writeUint32(buffer, uint32(item.Position))
	}
	if err := atomicfile.Write(i.path, buffer.Bytes(), 0644); err != nil {
		return err
	}
	i.logger.Debug("index saved", zap.Int("items", len(i.Items)), zap.Bool("modified", i.Modified))
	return nil
}

func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	reader := bytes.NewReader(data)
	magic := make([]byte, len(indexMagic))
	if _, err := io.ReadFull(reader, magic); err != nil {
		return newCorruptIndexError("short magic")
	}
	if !bytes.Equal(magic, indexMagic) {
		return newCorruptIndexError("bad magic %q", magic)
	}
	version, err := readUint32(reader)
	if err != nil {
		return newCorruptIndexError("short version")
	}
	if version != indexVersion {
		return newCorruptIndexError("unsupported version %d", version)
	}
	flags, err := reader.ReadByte()
	if err != nil {
		return newCorruptIndexError("short flags")
	}
	count, err := readUint32(reader)
	if err != nil {
		return newCorruptIndexError("short count")
	}
	items := make([]spgitobject.Item, 0, count)
	for recordIndex := uint32(0); recordIndex < count; recordIndex++ {
		var item spgitobject.Item
		if item.ID, err = readString(reader); err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		if item.Name, err = readString(reader); err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		if item.Creator, err = readString(reader); err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		if item.Container, err = readString(reader); err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		duration, err := readUint64(reader)
		if err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		item.DurationMS = int64(duration)
		position, err := readUint32(reader)
		if err != nil {
			return newCorruptIndexError("record %d: %v", recordIndex, err)
		}
		item.Position = int(position)
		items = append(items, item)
	}
	i.Items = items
	i.Modified = flags&flagModified != 0
	return nil
}

func newCorruptIndexError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errCorruptIndex, fmt.Sprintf(format, args...))
}

func writeUint32(buffer *bytes.Buffer, value uint32) {
	var scratch [4]byte
	binary.BigEndian.PutUint32(scratch[:], value)
	buffer.Write(scratch[:])
}

func writeUint64(buffer *bytes.Buffer, value uint64) {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], value)
	buffer.Write(scratch[:])
}

func writeString(buffer *bytes.Buffer, value string) error {
	if uint64(len(value)) > math.MaxUint32 {
		return fmt.Errorf("string too long: %d", len(value))
	}
	writeUint32(buffer, uint32(len(value)))
	buffer.WriteString(value)
	return nil
}

func readUint32(reader *bytes.Reader) (uint32, error) {
	var scratch [4]byte
	if _, err := io.ReadFull(reader, scratch[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(scratch[:]), nil
}

func readUint64(reader *bytes.Reader) (uint64, error) {
	var scratch [8]byte
	if _, err := io.ReadFull(reader, scratch[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(scratch[:]), nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := readUint32(reader)
	if err != nil {
		return "", err
	}
	if int64(length) > int64(reader.Len()) {
		return "", fmt.Errorf("declared string length %d exceeds remaining %d bytes", length, reader.Len())
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return "", err
	}
	return string(data), nil
}
