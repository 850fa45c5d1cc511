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


// Package storage provides the result cache abstraction for searchpipe.
//
// The ResultCache interface decouples the query executor from the cache
// implementation so that different backends (in-memory map, bounded LRU,
// BadgerDB) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors of cache implementations return the storage.ResultCache
// interface:
//
//	cache := memory.NewCache()            // unbounded
//	cache, err := memory.NewLRUCache(512) // bounded
//	cache, err := badger.NewCache(backend)
//
// Use concrete types only inside implementation packages.
//
// # Semantics
//
// Entries are keyed by exact Query equality. Put never overwrites an existing
// entry: the first successful result for a query wins and is never mutated.
// Callers must treat returned slices as read-only.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use from multiple
// goroutines.
package storage
