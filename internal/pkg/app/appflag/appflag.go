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

// Package appflag binds the root persistent flags shared by every command
// and produces run functions with a configured logger.
package appflag

import (
	"context"

	"github.com/pap-art/spgit/internal/pkg/app"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/spf13/pflag"
)

// Builder builds run functions.
type Builder interface {
	BindRoot(flagSet *pflag.FlagSet)
	NewRunFunc(func(context.Context, applog.Container) error) func(context.Context, app.Container) error
}

// NewBuilder returns a new Builder.
func NewBuilder() Builder {
	return newBuilder()
}
