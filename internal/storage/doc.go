/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage implements the host-side durable key-value stores an
// editor session saves its serialized project to.
//
// FileStore keeps one JSON file per key with transactional writes and
// timestamped backups. SQLiteStore keeps keys in an embedded database and
// additionally records a merge-patch delta per save plus a cache of page
// preview images. MemoryStore is the in-process variant used by tests.
package storage
