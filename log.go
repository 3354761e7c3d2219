// Copyright 2024 The promisekit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package promise

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// defLogger is the logger used by the default uncaught-result handlers.
var defLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	defLogger.Store(&l)
}

// SetLogger replaces the logger used by the default uncaught-result handlers,
// for all groups that don't override them.
// It's safe to call it concurrently with promise creation.
func SetLogger(l zerolog.Logger) {
	defLogger.Store(&l)
}

func defUncaughtPanicHandler(v any) {
	defLogger.Load().Error().
		Interface("value", v).
		Msg("promise: uncaught panic")
}

func defUncaughtErrorHandler(err error) {
	defLogger.Load().Error().
		Err(err).
		Msg("promise: uncaught error")
}
