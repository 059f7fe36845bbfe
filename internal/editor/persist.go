/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"inviteeditor/internal/storage"
)

// SaveToLocalStorage writes the exported project to the host store under
// the session's storage key.
func (s *Session) SaveToLocalStorage() error {
	if s.store == nil {
		return ErrNoStore
	}
	data, err := s.ExportProject()
	if err == nil {
		err = s.store.Set(s.storageKey, []byte(data))
	}
	s.metrics.Save(BackendName(s.store), err)
	if err != nil {
		s.log.Error("save project", slog.String("key", s.storageKey), slog.Any("err", err))
		return fmt.Errorf("save project: %w", err)
	}
	s.log.Info("project saved", slog.String("key", s.storageKey), slog.Int("bytes", len(data)))
	return nil
}

// LoadFromLocalStorage imports the project saved under the storage key. It
// reports false without error when nothing has been saved yet.
func (s *Session) LoadFromLocalStorage() (bool, error) {
	if s.store == nil {
		return false, ErrNoStore
	}
	data, err := s.store.Get(s.storageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load project: %w", err)
	}
	if err := s.ImportProject(string(data)); err != nil {
		return false, err
	}
	s.log.Info("project loaded", slog.String("key", s.storageKey))
	return true, nil
}

// BackendName names the store type the way the config and metrics do.
func BackendName(kv storage.KeyValueStore) string {
	switch kv.(type) {
	case *storage.FileStore:
		return "file"
	case *storage.SQLiteStore:
		return "sqlite"
	case *storage.MemoryStore:
		return "memory"
	default:
		return "custom"
	}
}
