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


// Package catalog defines the product search operation consumed by the query
// pipeline.
//
// A Searcher resolves a normalized query into raw product records. The
// dummyjson subpackage implements Searcher against the public DummyJSON
// products API; the mock subpackage provides a controllable test double.
//
// # Configuration
//
//	cfg := catalog.NewConfig(
//	    catalog.WithBaseURL("https://dummyjson.com"),
//	    catalog.WithTimeout(5*time.Second),
//	)
//	searcher, err := dummyjson.NewClient(cfg)
package catalog
