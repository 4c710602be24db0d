// Copyright Project Contour Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log wires up the process-wide logrus.Logger and exposes it as a
// go-logr/logr.Logger for libraries (such as gopcua) that expect the logr
// interface rather than logrus directly.
package log

import (
	"io"
	"os"

	"github.com/bombsimon/logrusr/v4"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"
)

// Option configures a *logrus.Logger produced by New.
type Option func(*logrus.Logger)

// LevelOption sets the logger's minimum level. An empty string leaves the
// default (Info) level in place.
func LevelOption(level string) Option {
	return func(l *logrus.Logger) {
		if level == "" {
			return
		}
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			l.WithField("level", level).Warn("ignoring unparseable log level, using default")
			return
		}
		l.SetLevel(lvl)
	}
}

// WriterOption redirects the logger's output away from os.Stderr.
func WriterOption(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// New builds a JSON-formatted logrus.Logger with the given options applied.
func New(opts ...Option) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// AsLogr adapts a *logrus.Logger to the logr.Logger interface expected by
// gopcua and other logr-based dependencies.
func AsLogr(l *logrus.Logger) logr.Logger {
	return logrusr.New(l)
}
