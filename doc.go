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


// Package searchpipe assembles a reactive product search pipeline.
//
// A Session owns the result cache, the catalog client and the metrics
// registry, and exposes the pipeline built on top of them:
//
//	session, err := searchpipe.NewSession(searchpipe.WithConfig(cfg))
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	p := session.Pipeline()
//	views := p.ViewModels(ctx)
//	p.SetQuery("phone")
//
// The pipeline normalizes and debounces query text, drops repeated queries,
// serves repeated searches from the cache and only ever shows the results of
// the most recent query.
package searchpipe
