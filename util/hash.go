// Copyright 2018 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"github.com/spaolacci/murmur3"
)

// StringHash returns the 32-bit MurmurHash3 of key.
func StringHash(key string) uint32 {
	return murmur3.Sum32([]byte(key))
}

// Fraction maps key onto [0, 1) so callers can pick a stable position
// on a continuous scale, such as a hue.
func Fraction(key string) float64 {
	return float64(StringHash(key)) / (1 << 32)
}
