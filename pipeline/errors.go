// Copyright 2025 Poiesic Systems
//
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


package pipeline

import "errors"

var (
	// ErrCacheRequired is returned when a result cache is not provided.
	ErrCacheRequired = errors.New("result cache required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrInvalidDuration is returned when a debounce interval or cache latency is negative.
	ErrInvalidDuration = errors.New("duration cannot be negative")

	// ErrInvalidPoolSize is returned when the worker pool size is less than 1.
	ErrInvalidPoolSize = errors.New("pool size must be at least 1")

	// ErrFetchPanicked is reported when a search panics inside a worker.
	ErrFetchPanicked = errors.New("search panicked")
)
