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

package appflag

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pap-art/spgit/internal/pkg/app"
	"github.com/pap-art/spgit/internal/pkg/app/applog"
	"github.com/pkg/profile"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type builder struct {
	logLevel  string
	logFormat string

	profilePath  string
	profileType  string
	profileLoops int
	doProfile    bool
}

func newBuilder() *builder {
	return &builder{}
}

func (b *builder) BindRoot(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&b.logLevel, "log-level", "info", "The log level [debug,info,warn,error].")
	flagSet.StringVar(&b.logFormat, "log-format", "color", "The log format [text,color,json].")

	flagSet.BoolVar(&b.doProfile, "profile", false, "Run profiling.")
	_ = flagSet.MarkHidden("profile")
	flagSet.StringVar(&b.profilePath, "profile-path", "", "The profile base directory path.")
	_ = flagSet.MarkHidden("profile-path")
	flagSet.StringVar(&b.profileType, "profile-type", "cpu", "The profile type [cpu,mem,block,mutex].")
	_ = flagSet.MarkHidden("profile-type")
	flagSet.IntVar(&b.profileLoops, "profile-loops", 1, "The number of loops to run.")
	_ = flagSet.MarkHidden("profile-loops")
}

func (b *builder) NewRunFunc(
	f func(context.Context, applog.Container) error,
) func(context.Context, app.Container) error {
	return func(ctx context.Context, appContainer app.Container) error {
		return b.run(ctx, appContainer, f)
	}
}

func (b *builder) run(
	ctx context.Context,
	appContainer app.Container,
	f func(context.Context, applog.Container) error,
) error {
	logger, err := applog.NewLogger(appContainer.Stderr(), b.logLevel, b.logFormat)
	if err != nil {
		return err
	}
	start := time.Now()
	logger.Debug("start")
	defer func() {
		logger.Debug("end", zap.Duration("duration", time.Since(start)))
	}()
	container := applog.NewContainer(appContainer, logger)
	if !b.doProfile {
		return f(ctx, container)
	}
	return b.runProfile(logger, func() error { return f(ctx, container) })
}

func (b *builder) runProfile(logger *zap.Logger, f func() error) error {
	profilePath := b.profilePath
	if profilePath == "" {
		var err error
		profilePath, err = os.MkdirTemp("", "")
		if err != nil {
			return err
		}
	}
	logger.Debug("profile", zap.String("path", profilePath))
	var profileFunc func(*profile.Profile)
	switch b.profileType {
	case "cpu", "":
		profileFunc = profile.CPUProfile
	case "mem":
		profileFunc = profile.MemProfile
	case "block":
		profileFunc = profile.BlockProfile
	case "mutex":
		profileFunc = profile.MutexProfile
	default:
		return fmt.Errorf("unknown profile type: %q", b.profileType)
	}
	loops := b.profileLoops
	if loops == 0 {
		loops = 1
	}
	stop := profile.Start(
		profile.Quiet,
		profile.ProfilePath(profilePath),
		profileFunc,
	)
	defer stop.Stop()
	for i := 0; i < loops; i++ {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}
