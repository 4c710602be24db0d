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

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/basyskom-jvoe/open62541-go/internal/config"
	"github.com/basyskom-jvoe/open62541-go/internal/health"
	"github.com/basyskom-jvoe/open62541-go/internal/httpsvc"
	"github.com/basyskom-jvoe/open62541-go/internal/metrics"
	"github.com/basyskom-jvoe/open62541-go/internal/workgroup"
)

// serveContext carries the flags and loaded configuration for the serve
// subcommand, grounded on the teacher's cmd/contour/serve.go serveContext.
type serveContext struct {
	configFile string
	log        logrus.FieldLogger
	params     config.Parameters
}

func registerServe(app *kingpin.Application, log logrus.FieldLogger) (*kingpin.CmdClause, *serveContext) {
	ctx := &serveContext{log: log}

	serve := app.Command("serve", "Run the monitoring engine server.")
	serve.Flag("config-path", "Path to the server configuration file.").StringVar(&ctx.configFile)

	return serve, ctx
}

func doServe(ctx *serveContext) error {
	if ctx.configFile != "" {
		p, err := config.Load(ctx.configFile)
		if err != nil {
			return err
		}
		ctx.params = p
	} else {
		ctx.params = config.Defaults()
	}

	ctx.log.WithField("config", ctx.params.String()).Info("starting uamond")

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	var checker health.Checker

	var g workgroup.Group

	g.Add(func(stop <-chan struct{}) error {
		svc := httpsvc.Service{
			Addr:        ctx.params.Metrics.Address,
			Port:        ctx.params.Metrics.Port,
			FieldLogger: ctx.log.WithField("context", "metrics"),
		}
		svc.ServeMux.Handle("/metrics", metrics.Handler(registry))
		return svc.Start(contextFromStop(stop))
	})

	g.Add(func(stop <-chan struct{}) error {
		svc := httpsvc.Service{
			Addr:        ctx.params.Health.Address,
			Port:        ctx.params.Health.Port,
			FieldLogger: ctx.log.WithField("context", "health"),
		}
		svc.ServeMux.HandleFunc("/livez", checker.LivezHandler())
		svc.ServeMux.HandleFunc("/readyz", checker.ReadyzHandler())
		return svc.Start(contextFromStop(stop))
	})

	runID := uuid.NewString()
	ctx.log.WithField("run_id", runID).Info("monitoring engine wiring")

	g.Add(func(stop <-chan struct{}) error {
		return wireMonitoring(contextFromStop(stop), ctx, m, &checker)
	})

	return g.Run()
}

// contextFromStop adapts a workgroup stop channel to a context.Context,
// the same bridging idiom the teacher's httpsvc.Service.Start expects of
// its caller.
func contextFromStop(stop <-chan struct{}) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stop
		cancel()
	}()
	return ctx
}
