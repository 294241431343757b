package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/codespire/rca-console/internal/models"
	"github.com/codespire/rca-console/internal/utils"
)

func TestVectorSearchQueryAndDecode(t *testing.T) {
	client := NewBackendClient("https://backend.test/base", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodGet {
			t.Fatalf("unexpected method %s", req.Method)
		}
		if req.URL.Path != "/base/v1/playbooks/search/vector" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("query") != "vpn timeout" || q.Get("topK") != "3" || q.Get("minScore") != "0.1" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if req.Header.Get("X-Request-ID") == "" {
			t.Fatalf("expected request id header")
		}
		return jsonResponse(http.StatusOK, `{"success":true,"data":[
			{"playbook":{"playbook_id":"PB-1","title":"VPN","tags":["vpn"],"usage":{"times_used":4}},"similarity":0.72},
			{"_id":"PB-2","title":"DNS","score":0.41}
		]}`), nil
	}))

	hits, err := client.VectorSearch(context.Background(), models.VectorSearchRequest{Query: "vpn timeout", TopK: 3, MinScore: 0.1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Playbook.ID != "PB-1" || hits[0].Score != 0.72 || hits[0].Playbook.Usage.TimesUsed != 4 {
		t.Fatalf("unexpected nested hit: %+v", hits[0])
	}
	if hits[1].Playbook.ID != "PB-2" || hits[1].Score != 0.41 {
		t.Fatalf("unexpected flat hit: %+v", hits[1])
	}
}

func TestHybridSearchParameters(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		if req.URL.Path != "/v1/playbooks/search/hybrid" || q.Get("vectorWeight") != "0.7" || q.Get("textWeight") != "0.3" || q.Get("maxResults") != "5" || q.Get("tags") != "email,smtp" {
			t.Fatalf("unexpected request: %s?%s", req.URL.Path, req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"data":[]}`), nil
	}))

	hits, err := client.HybridSearch(context.Background(), models.HybridSearchRequest{
		Query: "mail", VectorWeight: 0.7, TextWeight: 0.3, MaxResults: 5, Tags: []string{"email", "smtp"},
	})
	if err != nil || len(hits) != 0 {
		t.Fatalf("unexpected result %v, %v", hits, err)
	}
}

func TestBackendFailureIsUpstreamError(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream down`), nil
	}))

	_, err := client.VectorSearch(context.Background(), models.VectorSearchRequest{Query: "x"})
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.Status != http.StatusBadGateway {
		t.Fatalf("expected status error, got %#v", err)
	}
}

func TestTransportErrorIsUpstreamError(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}))
	if _, err := client.ListPlaybooks(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestEnvelopeFailureIsUpstreamError(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false,"message":"index offline"}`), nil
	}))
	_, err := client.SearchGuidance(context.Background(), []string{"PB-1"}, "root cause")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetPlaybookNotFound(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"success":false}`), nil
	}))
	if _, err := client.GetPlaybook(context.Background(), "PB-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchGuidancePayloadAndShapes(t *testing.T) {
	bodies := []string{
		`{"success":true,"data":[{"playbookId":"PB-1","playbookTitle":"VPN","triggerTitle":"Tunnel drops","action":"Restart the tunnel"}]}`,
		`{"success":true,"data":{"results":[{"playbookId":"PB-1","playbookTitle":"VPN","triggerTitle":"Tunnel drops","action":"Restart the tunnel"}]}}`,
	}
	for _, body := range bodies {
		client := NewBackendClient("https://backend.test", time.Second)
		client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost || req.URL.Path != "/v1/ai/playbook-recommender/search-guidance" {
				t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
			}
			data, _ := io.ReadAll(req.Body)
			var payload struct {
				PlaybookIDs      []string `json:"playbookIds"`
				GuidanceQuestion string   `json:"guidanceQuestion"`
			}
			if err := json.Unmarshal(data, &payload); err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if len(payload.PlaybookIDs) != 2 || payload.GuidanceQuestion != "root cause" {
				t.Fatalf("unexpected payload: %s", data)
			}
			return jsonResponse(http.StatusOK, body), nil
		}))

		results, err := client.SearchGuidance(context.Background(), []string{"PB-1", "PB-2"}, "root cause")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0].Action != "Restart the tunnel" {
			t.Fatalf("unexpected results: %+v", results)
		}
	}
}

func TestIncrementUsageReturnsCount(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost || req.URL.Path != "/v1/playbooks/PB-7/increment-usage" {
			t.Fatalf("unexpected request %s %s", req.Method, req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"playbook_id":"PB-7","usage":{"times_used":9}}}`), nil
	}))
	count, err := client.IncrementUsage(context.Background(), "PB-7")
	if err != nil || count != 9 {
		t.Fatalf("unexpected result %d, %v", count, err)
	}
}

func TestIncrementUsageWithoutData(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true}`), nil
	}))
	count, err := client.IncrementUsage(context.Background(), "PB-7")
	if err != nil || count != 0 {
		t.Fatalf("unexpected result %d, %v", count, err)
	}
}

func TestIncrementUsageNoContent(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNoContent,
			Status:     "204 No Content",
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader("")),
			Request:    req,
		}, nil
	}))
	count, err := client.IncrementUsage(context.Background(), "PB-7")
	if err != nil || count != 0 {
		t.Fatalf("unexpected result %d, %v", count, err)
	}
}

func TestSearchByTagsAndPriority(t *testing.T) {
	client := NewBackendClient("https://backend.test", time.Second)
	client.httpClient = newTestClient(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v1/playbooks/search" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(http.StatusOK, `{"success":true,"data":[{"playbook_id":"PB-1","priority":"High"}],"total":1}`), nil
	}))
	byTag, err := client.SearchByTags(context.Background(), []string{"vpn"})
	if err != nil || len(byTag) != 1 {
		t.Fatalf("tag search: %v %v", byTag, err)
	}
	byPriority, err := client.SearchByPriority(context.Background(), models.PriorityHigh)
	if err != nil || len(byPriority) != 1 || byPriority[0].Priority != models.PriorityHigh {
		t.Fatalf("priority search: %v %v", byPriority, err)
	}
	if _, err := client.SearchByTags(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty tags")
	}
}

func TestMissingBaseURL(t *testing.T) {
	client := NewBackendClient("", time.Second)
	if _, err := client.ListPlaybooks(context.Background()); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
