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


package records

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/empverify/duplicate"
)

var (
	// ErrReaderRequired is returned when a ledger reader is not provided.
	ErrReaderRequired = errors.New("ledger reader required")

	// ErrDetectorRequired is returned when a duplicate detector is not provided.
	ErrDetectorRequired = errors.New("duplicate detector required")

	// ErrResolverRequired is returned when an identifier resolver is not provided.
	ErrResolverRequired = errors.New("identifier resolver required")

	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("employment record not found")

	// ErrDuplicate is returned, wrapped in a *DuplicateError, when a write is blocked.
	ErrDuplicate = errors.New("duplicate record detected")

	// ErrWriteRejected is returned when the ledger accepts a call but reports failure.
	ErrWriteRejected = errors.New("ledger rejected write")
)

// DuplicateError reports a create or update blocked by duplicate prevention.
type DuplicateError struct {
	Operation string
	Result    *duplicate.Result
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s blocked, %s (%s)", ErrDuplicate, e.Operation,
		e.Result.Message, strings.Join(e.Result.ExistingEmployeeIDs, ", "))
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}
