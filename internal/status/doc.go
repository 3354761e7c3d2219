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

// Package status implements the packed status word of a promise.
//
// The status word is a single uint32, split into four sections:
//
//	state: Pending, Fulfilled, Rejected, or Panicked.
//	fate: Unresolved, Resolving, Resolved, or Handled.
//	chain: the strongest call registered on the promise, None, Wait, Read,
//	or Follow.
//	flags: behavior flags, inherited by follow promises.
//
// All updates go through CAS loops, so concurrent registration and resolving
// calls never lose updates, and readers never observe a torn value.
package status
