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

// DelayCond describes a condition on which a Delay call applies its delay.
type DelayCond int

// any values other than the listed below will be ignored
const (
	OnAll     DelayCond = iota // the default behavior if no conditions are passed
	OnSuccess DelayCond = iota
	OnError   DelayCond = iota
	OnPanic   DelayCond = iota
)

func (m DelayCond) String() string {
	switch m {
	case OnAll:
		return "OnAll"
	case OnSuccess:
		return "OnSuccess"
	case OnError:
		return "OnError"
	case OnPanic:
		return "OnPanic"
	default:
		return "<unknown condition>"
	}
}

type delayFlags struct {
	onSuccess bool
	onError   bool
	onPanic   bool
}

var delayAllFlags = delayFlags{
	onSuccess: true,
	onError:   true,
	onPanic:   true,
}

func getDelayFlags(conds []DelayCond) delayFlags {
	if len(conds) == 0 {
		return delayAllFlags
	}

	f := delayFlags{}
	for _, m := range conds {
		switch m {
		case OnAll:
			f.onSuccess = true
			f.onError = true
			f.onPanic = true
		case OnSuccess:
			f.onSuccess = true
		case OnError:
			f.onError = true
		case OnPanic:
			f.onPanic = true
		}
	}
	return f
}
