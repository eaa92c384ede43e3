package httpapi_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/scanlog/internal/httpapi"
	"github.com/BrandonDHaskell/scanlog/internal/logging"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/service"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store/memory"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/store/mock"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/types"
	"github.com/BrandonDHaskell/scanlog/internal/scanlog/wire"
)

// newTestServer wires the export surface over st and returns an
// httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T, st store.ScanEventStore, last *service.LastScan) *httptest.Server {
	t.Helper()

	if last == nil {
		last = service.NewLastScan()
	}
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:   logging.Discard(),
		Addr:     ":0",
		Exporter: service.NewRangeExporter(st),
		LastScan: last,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// seededStore holds three scans over two days, accepted through a real gate.
func seededStore(t *testing.T, last *service.LastScan) *memory.ScanEventStore {
	t.Helper()

	st := memory.NewScanEventStore()
	gate := service.NewScanGate(st, service.GateConfig{}, logging.Discard())
	if last != nil {
		gate.Register(last)
	}

	ctx := context.Background()
	for _, s := range []struct {
		code string
		at   time.Time
	}{
		{"A", time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"B", time.Date(2024, 1, 1, 9, 15, 30, 0, time.UTC)},
		{"C", time.Date(2024, 1, 2, 7, 0, 0, 0, time.UTC)},
	} {
		if _, err := gate.Evaluate(ctx, s.code, s.at); err != nil {
			t.Fatalf("evaluate %s: %v", s.code, err)
		}
	}
	return st
}

func get(t *testing.T, url, accept string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

// ── Health ───────────────────────────────────────────────────────────────────

func TestHealthz_OK(t *testing.T) {
	ts := newTestServer(t, memory.NewScanEventStore(), nil)

	resp := get(t, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

// ── Export ───────────────────────────────────────────────────────────────────

func TestExport_JSON(t *testing.T) {
	ts := newTestServer(t, seededStore(t, nil), nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-01&to=2024-01-01", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		From string      `json:"from"`
		To   string      `json:"to"`
		Rows []types.Row `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.From != "2024-01-01" || body.To != "2024-01-01" {
		t.Errorf("unexpected range %s..%s", body.From, body.To)
	}
	if len(body.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Rows))
	}
	if body.Rows[0].Content != "A" || body.Rows[1].Content != "B" {
		t.Errorf("unexpected order: %+v", body.Rows)
	}
	if body.Rows[1].Time != "09:15:30" {
		t.Errorf("expected time=09:15:30, got %q", body.Rows[1].Time)
	}
}

func TestExport_FromAfterTo_EmptyRows(t *testing.T) {
	ts := newTestServer(t, seededStore(t, nil), nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-02&to=2024-01-01", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Rows []types.Row `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Rows == nil || len(body.Rows) != 0 {
		t.Errorf("expected an empty rows array, got %v", body.Rows)
	}
}

func TestExport_CSV(t *testing.T) {
	ts := newTestServer(t, seededStore(t, nil), nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-01&to=2024-01-02", "text/csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	want := `attachment; filename="barcode_scans_2024-01-01_to_2024-01-02.csv"`
	if got := resp.Header.Get("Content-Disposition"); got != want {
		t.Errorf("expected Content-Disposition %q, got %q", want, got)
	}

	records, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(records))
	}
	if records[0][0] != "No." {
		t.Errorf("expected header first, got %v", records[0])
	}
	if got := records[3]; got[0] != "3" || got[1] != "C" || got[2] != "02/01/2024" {
		t.Errorf("unexpected last row %v", got)
	}
}

func TestExport_Protobuf(t *testing.T) {
	ts := newTestServer(t, seededStore(t, nil), nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-02&to=2024-01-02", "application/x-protobuf")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/x-protobuf" {
		t.Errorf("expected protobuf content type, got %q", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var list structpb.ListValue
	if err := proto.Unmarshal(raw, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rows, err := wire.RowsFromProto(&list)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 || rows[0].Content != "C" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestExport_BadDate_400(t *testing.T) {
	ts := newTestServer(t, memory.NewScanEventStore(), nil)

	for _, q := range []string{
		"from=2024-13-01&to=2024-01-02",
		"from=2024-01-01&to=yesterday",
		"from=&to=2024-01-02",
	} {
		resp := get(t, ts.URL+"/v1/scans?"+q, "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", q, resp.StatusCode)
		}
		if body := decodeError(t, resp); body.Error != "bad_date" {
			t.Errorf("%s: expected error=bad_date, got %q", q, body.Error)
		}
	}
}

func TestExport_MissingRange_400(t *testing.T) {
	ts := newTestServer(t, memory.NewScanEventStore(), nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-01", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Error != "missing_range" {
		t.Errorf("expected error=missing_range, got %q", body.Error)
	}
}

func TestExport_StorageError_500(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mock.NewMockScanEventStore(ctrl)
	st.EXPECT().
		QueryRange(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, store.NewStorageError("query_range", errors.New("disk I/O error")))

	ts := newTestServer(t, st, nil)

	resp := get(t, ts.URL+"/v1/scans?from=2024-01-01&to=2024-01-02", "")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if body := decodeError(t, resp); body.Error != "storage_error" {
		t.Errorf("expected error=storage_error, got %q", body.Error)
	}
}

// ── Last scan ────────────────────────────────────────────────────────────────

func TestLastScan_NothingYet_404(t *testing.T) {
	ts := newTestServer(t, memory.NewScanEventStore(), nil)

	resp := get(t, ts.URL+"/v1/scans/last", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLastScan_ReturnsNewest(t *testing.T) {
	last := service.NewLastScan()
	ts := newTestServer(t, seededStore(t, last), last)

	resp := get(t, ts.URL+"/v1/scans/last", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ev types.ScanEvent
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Content != "C" || ev.ID != 3 {
		t.Errorf("expected scan 3 (C), got %d (%s)", ev.ID, ev.Content)
	}
	if ev.Date != "2024-01-02" {
		t.Errorf("expected date=2024-01-02, got %q", ev.Date)
	}
}
