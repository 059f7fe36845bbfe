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
	"fmt"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"inviteeditor/internal/domain"
)

// MergeObjectJSON applies an RFC 7386 merge patch to object id. The id and
// type cannot be changed this way. Unknown ids are no-ops; a malformed
// patch returns a *ParseError and a patch producing an invalid object
// returns ErrInvalidObject.
func (s *Session) MergeObjectJSON(id string, patch []byte) error {
	return s.mutate("merge_object", true, func(p *domain.EditorProject) (bool, error) {
		o := p.Object(id)
		if o == nil {
			return false, nil
		}
		orig, err := json.Marshal(o)
		if err != nil {
			return false, err
		}
		merged, err := jsonpatch.MergePatch(orig, patch)
		if err != nil {
			return false, &ParseError{Err: err}
		}
		var next domain.EditorObject
		if err := json.Unmarshal(merged, &next); err != nil {
			return false, &ParseError{Err: err}
		}
		next.ID = o.ID
		next.Type = o.Type
		if err := next.Validate(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidObject, err)
		}
		if reflect.DeepEqual(*o, next) {
			return false, nil
		}
		*o = next
		return true, nil
	})
}
