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


package core

import "errors"

// FetchErrorMessage is the user-facing message published when a search fails.
// It does not depend on the underlying cause.
const FetchErrorMessage = "Error loading products. (Check network connectivity)"

var (
	// ErrFetchFailed indicates that the external search operation failed.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMalformedEntry indicates that an encoded cache entry is inconsistent.
	ErrMalformedEntry = errors.New("malformed cache entry")
)
