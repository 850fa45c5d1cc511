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


// Package pipeline implements the reactive product search pipeline.
//
// A Pipeline consumes two inputs, raw query text (SetQuery) and an in-stock
// toggle (SetInStockOnly), and exposes three observation points: the view
// model stream (ViewModels), the loading/error status (Status) and the raw
// resolved items (Results).
//
// # Query flow
//
//   - Text is normalized (trimmed, lower-cased) and debounced; a query runs
//     only after DefaultDebounce of silence.
//   - A query equal to the previous one is dropped.
//   - Each issued query receives a new execution token. Results are served
//     from the cache after DefaultCacheLatency or fetched from the searcher
//     on a worker pool; only the outcome holding the latest token is applied.
//   - Failed searches yield an empty item list plus core.FetchErrorMessage on
//     the status stream and are never cached.
//
// # Sharing
//
// The query loop and the combiner start with the first subscriber, are
// shared by all subscribers and stop when the last one leaves. A later
// subscription starts from scratch with fresh debounce, deduplication and
// token state. The cache outlives individual runs.
package pipeline
