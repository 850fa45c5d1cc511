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


// Package stream provides small channel-based building blocks for reactive
// pipelines.
//
// Two stateful types form the backbone:
//   - Value holds a current value and replays it to every new subscriber,
//     then forwards each update.
//   - Shared runs a producer lazily on behalf of any number of subscribers,
//     tears it down when the last subscriber leaves and starts a fresh run on
//     the next subscription.
//
// The operators Map, Debounce, Distinct and CombineLatest transform channels
// and stop when their context is cancelled.
//
// # Delivery
//
// Subscribers never block a writer. Each subscription owns a one-slot mailbox
// that always holds the newest undelivered value, so a slow reader skips
// intermediate values and observes the latest one.
package stream
