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


// Package ledger defines the contract with the employment record ledger.
//
// The ledger is a point-lookup store. It can fetch one record by its
// deterministic employee ID and report a per-year counter; it cannot query,
// index or search. Everything richer is built on top of these two reads by
// the scan, search and duplicate packages.
//
// # Functions
//
// Reads go through Client.Evaluate:
//
//   - getRecord(employeeID)
//   - getEmployeeCounter([year])
//   - getRecordHistory(employeeID)
//   - getSystemInfo()
//
// Writes go through Client.Submit:
//
//   - createRecord(recordJSON)
//   - updateRecord(recordJSON)
//
// # Lookups
//
// Reader.Lookup turns a getRecord round trip into a Lookup value whose
// Status is Found, NotFound, DecodeError or Failed. Callers branch on the
// status instead of inspecting errors.
//
// # Implementations
//
// The ledger/badger package provides an embedded implementation backed by
// BadgerDB. The ledger/mock package provides a test double.
package ledger
