//go:build !datachange

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

package main

import (
	"context"

	"github.com/basyskom-jvoe/open62541-go/internal/health"
	"github.com/basyskom-jvoe/open62541-go/internal/metrics"
)

// wireMonitoring is the elided stub compiled when the "datachange" build
// tag is absent: the monitoring engine (internal/mon, internal/addrspace,
// internal/publish) is not linked into the binary at all. The serve
// subcommand still starts its metrics and health listeners; it just never
// becomes ready, signalling to an operator that this build carries no
// monitoring capability.
func wireMonitoring(ctx context.Context, sctx *serveContext, m *metrics.Metrics, checker *health.Checker) error {
	sctx.log.Warn("uamond built without the datachange tag: monitoring engine disabled")
	<-ctx.Done()
	return ctx.Err()
}
