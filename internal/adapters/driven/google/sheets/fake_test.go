package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google"
)

// apiCall records one request received by the fake API.
type apiCall struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

// fakeAPI answers Sheets and Drive requests from canned responses.
type fakeAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	values    map[string][][]any // A1 range -> values returned by GET
	files     []*drive.File
	createdID string
	status    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{values: make(map[string][][]any), createdID: "new-sheet"}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := apiCall{Method: r.Method, Path: r.URL.Path, Query: map[string]string{}}
	for k := range r.URL.Query() {
		call.Query[k] = r.URL.Query().Get(k)
	}
	_ = json.NewDecoder(r.Body).Decode(&call.Body)
	f.calls = append(f.calls, call)

	if f.status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":401,"message":"denied"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/files":
		_ = json.NewEncoder(w).Encode(&drive.FileList{Files: f.files})
	case r.URL.Path == "/v4/spreadsheets" && r.Method == http.MethodPost:
		_ = json.NewEncoder(w).Encode(&sheets.Spreadsheet{SpreadsheetId: f.createdID})
	case strings.Contains(r.URL.Path, "/values/") && r.Method == http.MethodGet:
		rng := r.URL.Path[strings.Index(r.URL.Path, "/values/")+len("/values/"):]
		_ = json.NewEncoder(w).Encode(&sheets.ValueRange{Range: rng, Values: f.values[rng]})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeAPI) recorded() []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]apiCall(nil), f.calls...)
}

func testLimiter() *google.RateLimiter {
	return google.NewRateLimiterWithConfig(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
}

func newTestServices(t *testing.T, fake *fakeAPI) (*sheets.Service, *drive.Service) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sheetsSvc, err := sheets.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	driveSvc, err := drive.NewService(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return sheetsSvc, driveSvc
}
