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


// Package search answers attribute queries over employment records.
//
// The ledger has no indexes, so every search scans the current and previous
// year through a scan.Enumerator. The Searcher picks one strategy per query,
// in priority order:
//   - exact ID: national ID and employer ID
//   - composite key: name, employer ID and employment start date
//   - name and employer: tiered exact, partial and fuzzy name matching
//   - name only: ranked by similarity
//   - employer only
//
// Results are classified by count. Multiple matches carry disambiguation
// summaries, and responses always include guidance tips.
package search
