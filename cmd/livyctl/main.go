// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"fmt"
	"os"

	"github.com/MKhiriev/livyflow/internal/cli"
	"github.com/MKhiriev/livyflow/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	root := cli.NewRootCommand()
	root.Version = models.NewAppBuildInfo(buildVersion, buildDate, buildCommit).String()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
