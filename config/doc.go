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


// Package config loads application settings for the searchpipe command
// from a TOML file.
//
// Every field has a default, so a missing file or a partial file is valid:
//
//	[pipeline]
//	debounce = "300ms"
//	cache_latency = "150ms"
//
//	[cache]
//	backend = "lru"
//	capacity = 512
//
//	[catalog]
//	base_url = "https://dummyjson.com"
//	timeout = "10s"
package config
