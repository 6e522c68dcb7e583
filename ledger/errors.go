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


package ledger

import "errors"

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrUnavailable indicates that the ledger could not be reached.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrUnknownFunction indicates a function name the ledger does not implement.
	ErrUnknownFunction = errors.New("unknown ledger function")

	// ErrInvalidArguments indicates missing or malformed function arguments.
	ErrInvalidArguments = errors.New("invalid ledger arguments")

	// ErrSerializationFailed indicates a payload could not be encoded or decoded.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrClientRequired is returned when a ledger client is not provided.
	ErrClientRequired = errors.New("ledger client required")
)
