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

// Package interval parses the duration settings that configure the
// monitoring engine: default sampling interval and default publishing
// interval. These are server
// configuration concerns, distinct from a MonitoredItem's own
// samplingInterval field (internal/mon carries that as a plain
// time.Duration set directly by the management API).
package interval

import "time"

// Setting describes an interval setting that is exactly one of: use the
// default, or use a specific value. The zero value is a Setting
// representing "use the default".
type Setting struct {
	val time.Duration
}

// UseDefault returns whether the default interval value should be used.
func (s Setting) UseDefault() bool {
	return s.val == 0
}

// Duration returns the explicit interval value if one exists.
func (s Setting) Duration() time.Duration {
	return s.val
}

// DefaultSetting returns a Setting representing "use the default".
func DefaultSetting() Setting {
	return Setting{}
}

// DurationSetting returns an interval setting with the given duration.
func DurationSetting(duration time.Duration) Setting {
	return Setting{val: duration}
}

// Parse parses string representations of interval settings:
//   - an empty string means "use the default".
//   - any valid representation of "0" means "use the default".
//   - a valid Go duration string is used as the specific interval value.
func Parse(s string) (Setting, error) {
	if s == "" {
		return DefaultSetting(), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return DefaultSetting(), err
	}
	if d == 0 {
		return DefaultSetting(), nil
	}

	return DurationSetting(d), nil
}
