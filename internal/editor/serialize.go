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
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"inviteeditor/internal/domain"
)

// ExportProject encodes the project as indented JSON.
func (s *Session) ExportProject() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := json.MarshalIndent(s.project, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ImportProject replaces the project with the one encoded in data. The
// selection is reset to the first page. On failure a *ParseError is
// returned and the current project is kept.
func (s *Session) ImportProject(data string) error {
	p, err := s.parseProject(data)
	if err != nil {
		s.log.Warn("import rejected", slog.Any("err", err))
		return err
	}
	return s.mutate("import_project", true, func(cur *domain.EditorProject) (bool, error) {
		*cur = p
		return true, nil
	})
}

func (s *Session) parseProject(data string) (domain.EditorProject, error) {
	var p domain.EditorProject
	if strings.TrimSpace(data) == "" {
		return p, &ParseError{Err: errors.New("empty input")}
	}
	if err := domain.ValidateJSON([]byte(data)); err != nil {
		return p, &ParseError{Err: err}
	}
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return p, &ParseError{Err: err}
	}
	p.Normalize()
	if len(p.Pages) == 0 {
		p.Pages = append(p.Pages, s.newPage(1))
	}
	p.SelectedPageID = p.Pages[0].ID
	p.SelectedObjectID = ""
	if err := p.Validate(); err != nil {
		return domain.EditorProject{}, &ParseError{Err: err}
	}
	return p, nil
}
