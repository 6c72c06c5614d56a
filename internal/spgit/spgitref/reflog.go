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

package spgitref

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pap-art/spgit/internal/pkg/atomicfile"
	"github.com/pap-art/spgit/internal/spgit/spgithash"
	"github.com/pap-art/spgit/internal/spgit/spgitobject"
	"go.uber.org/multierr"
)

// LogRecord is one reflog entry.
//
// Old and New are filled in by Update; callers set the actor, action, and
// message.
type LogRecord struct {
	Old     spgithash.Digest
	New     spgithash.Digest
	Actor   spgitobject.Signature
	Action  string
	Message string
}

// String renders the record as its reflog line (without trailing newline):
// "<old> <new> <name> <email> <unix> <tz>\t<action>: <message>".
func (r LogRecord) String() string {
	return fmt.Sprintf(
		"%s %s %s\t%s: %s",
		r.Old.String(),
		r.New.String(),
		r.Actor.String(),
		r.Action,
		r.Message,
	)
}

// AppendLog appends a single record to the ref's log.
func (s *Store) AppendLog(ctx context.Context, name string, record LogRecord) (retErr error) {
	logPath := s.logPath(name)
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() {
		retErr = multierr.Append(retErr, file.Close())
	}()
	_, err = file.WriteString(record.String() + "\n")
	return err
}

// ReadLog reads the ref's log, newest entry first.
//
// A missing log reads as empty.
func (s *Store) ReadLog(ctx context.Context, name string) ([]LogRecord, error) {
	data, err := os.ReadFile(s.logPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n"))
	records := make([]LogRecord, 0, len(lines))
	// reverse so the newest entry is first
	for i := len(lines) - 1; i >= 0; i-- {
		if len(lines[i]) == 0 {
			continue
		}
		record, err := parseLogLine(string(lines[i]))
		if err != nil {
			return nil, fmt.Errorf("reflog %s: %w", name, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// RewriteLog replaces the ref's log with the given records, newest first
// (the order ReadLog returns).
//
// Used only by stash drop, which removes an arbitrary entry from the stack.
func (s *Store) RewriteLog(ctx context.Context, name string, records []LogRecord) error {
	if len(records) == 0 {
		if err := os.Remove(s.logPath(name)); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	buffer := bytes.NewBuffer(nil)
	for i := len(records) - 1; i >= 0; i-- {
		buffer.WriteString(records[i].String() + "\n")
	}
	return atomicfile.Write(s.logPath(name), buffer.Bytes(), 0644)
}

func parseLogLine(line string) (LogRecord, error) {
	head, tail, found := strings.Cut(line, "\t")
	if !found {
		return LogRecord{}, fmt.Errorf("malformed line %q", line)
	}
	fields := strings.SplitN(head, " ", 3)
	if len(fields) != 3 {
		return LogRecord{}, fmt.Errorf("malformed line %q", line)
	}
	old, err := spgithash.ParseDigest(fields[0])
	if err != nil {
		return LogRecord{}, err
	}
	newDigest, err := spgithash.ParseDigest(fields[1])
	if err != nil {
		return LogRecord{}, err
	}
	actor, err := parseLogSignature(fields[2])
	if err != nil {
		return LogRecord{}, err
	}
	action, message, _ := strings.Cut(tail, ": ")
	return LogRecord{
		Old:     old,
		New:     newDigest,
		Actor:   actor,
		Action:  action,
		Message: message,
	}, nil
}

func parseLogSignature(value string) (spgitobject.Signature, error) {
	open := strings.LastIndex(value, "<")
	closing := strings.LastIndex(value, ">")
	if open < 0 || closing < open {
		return spgitobject.Signature{}, fmt.Errorf("malformed signature %q", value)
	}
	var signature spgitobject.Signature
	signature.Name = strings.TrimSpace(value[:open])
	signature.Email = value[open+1 : closing]
	rest := strings.Fields(value[closing+1:])
	if len(rest) != 2 {
		return spgitobject.Signature{}, fmt.Errorf("malformed signature %q", value)
	}
	if _, err := fmt.Sscanf(rest[0], "%d", &signature.Unix); err != nil {
		return spgitobject.Signature{}, err
	}
	signature.TZ = rest[1]
	return signature, nil
}
