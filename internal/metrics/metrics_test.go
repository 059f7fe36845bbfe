/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.Mutation("addShape", KindCommitted)
	r.Mutation("addShape", KindCommitted)
	r.Mutation("updateObjectSilent", KindSilent)
	r.HistoryDepth(7)
	r.SyncPass(time.Millisecond, 2, 1, 0, 3)
	r.Save("file", nil)
	r.Save("file", errors.New("disk full"))

	if got := testutil.ToFloat64(r.mutations.WithLabelValues("addShape", KindCommitted)); got != 2 {
		t.Fatalf("addShape committed = %v", got)
	}
	if got := testutil.ToFloat64(r.historyDepth); got != 7 {
		t.Fatalf("history depth = %v", got)
	}
	if got := testutil.ToFloat64(r.syncActions.WithLabelValues("remove")); got != 3 {
		t.Fatalf("remove actions = %v", got)
	}
	if got := testutil.ToFloat64(r.saves.WithLabelValues("file", "error")); got != 1 {
		t.Fatalf("failed saves = %v", got)
	}
	if n := testutil.CollectAndCount(r.syncDuration); n != 1 {
		t.Fatalf("expected one histogram, got %d", n)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Mutation("x", KindCommitted)
	r.HistoryDepth(1)
	r.SyncPass(time.Second, 1, 1, 1, 1)
	r.Save("file", nil)
	if r.Registry() != nil {
		t.Fatalf("nil recorder has no registry")
	}
}

func TestHandlerServesTextFormat(t *testing.T) {
	r := New()
	r.Mutation("addPage", KindCommitted)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	if !strings.Contains(body, `editor_mutations_total{kind="committed",op="addPage"} 1`) {
		t.Fatalf("metric missing from output:\n%s", body)
	}
}
