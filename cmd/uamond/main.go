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

// Command uamond runs the data-change monitoring engine server.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/basyskom-jvoe/open62541-go/internal/build"
	applog "github.com/basyskom-jvoe/open62541-go/internal/log"
)

func main() {
	log := applog.New()

	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.WithField("context", "automaxprocs").Debugf(format, args...)
	})); err != nil {
		log.WithError(err).Warn("failed to set GOMAXPROCS")
	}

	app := kingpin.New("uamond", "OPC-UA data-change monitoring engine server.")
	app.HelpFlag.Short('h')

	serve, serveCtx := registerServe(app, log)
	version := app.Command("version", "Build information for uamond.")

	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case serve.FullCommand():
		if err := doServe(serveCtx); err != nil {
			log.WithError(err).Fatal("server exited with error")
		}
	case version.FullCommand():
		fmt.Print(build.PrintBuildInfo())
	}
}
