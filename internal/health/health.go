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

// Package health provides liveness and readiness HTTP handlers for the
// monitoring engine. Readiness reflects only the flag set through
// SetReady, which the serve wiring sets once the monitoring engine has been
// wired up; liveness is a static 200 so long as the process answers.
package health

import (
	"net/http"
	"sync/atomic"
)

// Checker reports whether the server is ready to serve the management API
// and have its samples trusted by a publish consumer.
type Checker struct {
	ready atomic.Bool
}

// SetReady marks the server ready (or not ready) for traffic.
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// LivezHandler always reports 200 OK; it only verifies the process is
// scheduling HTTP handlers at all.
func (c *Checker) LivezHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// ReadyzHandler reports 200 OK once SetReady(true) has been called, and 503
// otherwise.
func (c *Checker) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !c.ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
