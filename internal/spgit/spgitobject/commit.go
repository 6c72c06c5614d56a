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
	"strings"

	"github.com/pap-art/spgit/internal/spgit/spgithash"
)

// Commit is a node of the history DAG.
//
// Zero parents is a root commit, one parent a normal commit, two parents a
// merge commit. Parents must exist before a child can be created, so the DAG
// is acyclic by construction.
type Commit struct {
	Tree      spgithash.Digest
	Parents   []spgithash.Digest
	Author    Signature
	Committer Signature
	Message   string
}

// Subject returns the first line of the commit message.
func (c *Commit) Subject() string {
	if i := strings.IndexByte(c.Message, '\n'); i >= 0 {
		return c.Message[:i]
	}
	return c.Message
}

// MarshalCommit returns the canonical payload of a Commit: header lines,
// a blank line, then the message.
func MarshalCommit(commit *Commit) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	fmt.Fprintf(buffer, "tree %s\n", commit.Tree.String())
	for _, parent := range commit.Parents {
		fmt.Fprintf(buffer, "parent %s\n", parent.String())
	}
	fmt.Fprintf(buffer, "author %s\n", commit.Author.String())
	fmt.Fprintf(buffer, "committer %s\n", commit.Committer.String())
	buffer.WriteString("\n")
	buffer.WriteString(commit.Message)
	return buffer.Bytes(), nil
}

// UnmarshalCommit parses a Commit payload.
func UnmarshalCommit(payload []byte) (*Commit, error) {
	headers, message, err := splitHeadersAndMessage(payload)
	if err != nil {
		return nil, NewCorruptError("commit: %v", err)
	}
	commit := &Commit{Message: message}
	sawTree := false
	for _, header := range headers {
		switch header.key {
		case "tree":
			digest, err := spgithash.ParseDigest(header.value)
			if err != nil {
				return nil, NewCorruptError("commit tree header: %v", err)
			}
			commit.Tree = digest
			sawTree = true
		case "parent":
			digest, err := spgithash.ParseDigest(header.value)
			if err != nil {
				return nil, NewCorruptError("commit parent header: %v", err)
			}
			commit.Parents = append(commit.Parents, digest)
		case "author":
			signature, err := parseSignature(header.value)
			if err != nil {
				return nil, NewCorruptError("commit author header: %v", err)
			}
			commit.Author = signature
		case "committer":
			signature, err := parseSignature(header.value)
			if err != nil {
				return nil, NewCorruptError("commit committer header: %v", err)
			}
			commit.Committer = signature
		default:
			return nil, NewCorruptError("commit: unknown header %q", header.key)
		}
	}
	if !sawTree {
		return nil, NewCorruptError("commit: missing tree header")
	}
	return commit, nil
}

type headerLine struct {
	key   string
	value string
}

func splitHeadersAndMessage(payload []byte) ([]headerLine, string, error) {
	content := string(payload)
	headerText, message, found := strings.Cut(content, "\n\n")
	if !found {
		return nil, "", fmt.Errorf("missing blank line after headers")
	}
	var headers []headerLine
	for _, line := range strings.Split(headerText, "\n") {
		key, value, found := strings.Cut(line, " ")
		if !found {
			return nil, "", fmt.Errorf("malformed header line %q", line)
		}
		headers = append(headers, headerLine{key: key, value: value})
	}
	return headers, message, nil
}
