package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nlcmd/translator/internal/translate"
	pkgerrors "github.com/nlcmd/translator/pkg/errors"
)

type fakeExecutor struct {
	lastSentence string
	lastLimit    int
	result       *translate.TranslationResult
	err          error
}

func (f *fakeExecutor) Translate(_ context.Context, sentence string, limit int) (*translate.TranslationResult, error) {
	f.lastSentence = sentence
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &translate.TranslationResult{Sentence: sentence}, nil
}

func doTranslate(h *Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Translate(rec, req)
	return rec
}

func TestTranslateRequiresQuery(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, 10, 50)
	rec := doTranslate(h, "/api/v1/translate")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTranslateRejectsBadLimit(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, 10, 50)
	for _, limit := range []string{"0", "-3", "abc"} {
		rec := doTranslate(h, "/api/v1/translate?q=copy+files&limit="+limit)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestTranslateDefaultsAndClampsLimit(t *testing.T) {
	exec := &fakeExecutor{}
	h := New(exec, nil, nil, nil, 10, 50)

	doTranslate(h, "/api/v1/translate?q=copy+files")
	if exec.lastLimit != 10 {
		t.Errorf("default limit = %d, want 10", exec.lastLimit)
	}

	doTranslate(h, "/api/v1/translate?q=copy+files&limit=500")
	if exec.lastLimit != 50 {
		t.Errorf("clamped limit = %d, want 50", exec.lastLimit)
	}
}

func TestTranslateSuccess(t *testing.T) {
	exec := &fakeExecutor{result: &translate.TranslationResult{
		Sentence:    "copy the file",
		TotalParses: 7,
	}}
	h := New(exec, nil, nil, nil, 10, 50)

	rec := doTranslate(h, "/api/v1/translate?q=copy+the+file")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body translate.TranslationResult
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if body.Sentence != "copy the file" || body.TotalParses != 7 {
		t.Errorf("body = %+v", body)
	}
	if exec.lastSentence != "copy the file" {
		t.Errorf("executor saw sentence %q", exec.lastSentence)
	}
}

func TestTranslateReportsExecutorFailure(t *testing.T) {
	h := New(&fakeExecutor{err: errors.New("grammar rejected a legal token")}, nil, nil, nil, 10, 50)
	rec := doTranslate(h, "/api/v1/translate?q=copy+files")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestTranslateMapsErrorsToStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"store outage", fmt.Errorf("%w: connection refused", pkgerrors.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"invalid input", pkgerrors.New(pkgerrors.ErrInvalidInput, http.StatusBadRequest, "bad request"), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := New(&fakeExecutor{err: tc.err}, nil, nil, nil, 10, 50)
			rec := doTranslate(h, "/api/v1/translate?q=copy+files")
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestCacheEndpointsWithoutCache(t *testing.T) {
	h := New(&fakeExecutor{}, nil, nil, nil, 10, 50)

	rec := httptest.NewRecorder()
	h.CacheStats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("CacheStats status = %d, want 200", rec.Code)
	}
	var stats map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats["status"] != "disabled" {
		t.Errorf("stats = %v, want disabled", stats)
	}

	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("CacheInvalidate status = %d, want 503", rec.Code)
	}
}
