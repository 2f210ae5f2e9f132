// filter-clipped: removing heavily clipped alignments from SAM/BAM files.
// Copyright (c) 2022 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/filter-clipped/blob/master/LICENSE.txt>.

package cmd

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	"github.com/exascience/filter-clipped/filters"
)

// readClipConfigFile reads the thresholds from a YAML file, on top of
// the given defaults. Keys that are missing in the file keep their
// default value.
func readClipConfigFile(file string, defaults filters.ClipConfig) (filters.ClipConfig, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return defaults, fmt.Errorf("failed to open the config file: %w", err)
	}
	config := defaults
	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return defaults, fmt.Errorf("failed to parse the config file %v: %w", file, err)
	}
	return config, nil
}

// readClipConfig builds the clip thresholds from the defaults, the
// optional --config file, and the command line, in that order of
// increasing precedence, and validates the result.
func readClipConfig(c *cli.Context) (config filters.ClipConfig, err error) {
	config = filters.DefaultClipConfig()
	if file := c.String("config"); file != "" {
		if config, err = readClipConfigFile(file, config); err != nil {
			return config, err
		}
	}
	if c.IsSet("left-side") {
		config.LeftSide = c.Float64("left-side")
	}
	if c.IsSet("right-side") {
		config.RightSide = c.Float64("right-side")
	}
	if c.IsSet("both-end") {
		config.BothEnd = c.Float64("both-end")
	}
	if c.IsSet("inverse") {
		config.Inverse = c.Bool("inverse")
	}
	if c.IsSet("unalign") {
		config.Unalign = c.Bool("unalign")
	}
	return config, config.Validate()
}
