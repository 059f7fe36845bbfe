/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/storage"
)

// DefaultThumbScale is the raster scale of page thumbnails.
const DefaultThumbScale = 0.25

// PagePreview returns a PNG thumbnail of pg, served from the previews cache
// of st while the page content is unchanged.
func PagePreview(ctx context.Context, st *storage.SQLiteStore, pg domain.EditorPage, opt PNGOptions) ([]byte, error) {
	if opt.Scale <= 0 {
		opt.Scale = DefaultThumbScale
	}
	content, err := json.Marshal(pg)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	w, h := PixelSize(pg, opt.Scale)
	render := func(context.Context) ([]byte, error) {
		var buf bytes.Buffer
		if err := RenderPagePNG(&buf, pg, opt); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if st == nil {
		return render(ctx)
	}
	return st.GetOrCreatePreview(ctx, pg.ID, w, h, content, render)
}
