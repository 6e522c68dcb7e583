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


package search

import "errors"

var (
	// ErrEnumeratorRequired is returned when a record enumerator is not provided.
	ErrEnumeratorRequired = errors.New("record enumerator required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrInvalidMaxResults is returned when a default result limit is not positive.
	ErrInvalidMaxResults = errors.New("max results must be positive")

	// ErrIdentifiersRequired is returned when a national ID or employer ID is blank.
	ErrIdentifiersRequired = errors.New("national id and employer id required")

	// ErrNotFound is returned when no record carries the requested identifiers.
	ErrNotFound = errors.New("no matching record")

	// ErrAmbiguous is returned when identifiers expected to be unique match several records.
	ErrAmbiguous = errors.New("ambiguous identifiers")
)
