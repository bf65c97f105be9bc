//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/plantrec/internal/api/handlers"
	"github.com/cloo-solutions/plantrec/internal/cache"
	"github.com/cloo-solutions/plantrec/internal/engine"
	"github.com/cloo-solutions/plantrec/internal/repository"
	"github.com/cloo-solutions/plantrec/internal/server"
	"github.com/cloo-solutions/plantrec/internal/service"
	"github.com/cloo-solutions/plantrec/internal/storage"
	"github.com/cloo-solutions/plantrec/internal/testutil"
)

// E2ETestEnv wires the real services against containers.
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	S3Client   *storage.S3Client
	Catalog    *service.CatalogService
	Requests   *service.RecommendationLogService
	HTTPClient *http.Client
}

func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	s3C := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { _ = s3C.Terminate(context.Background()) })

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")
	t.Cleanup(pool.Close)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "plantrec-exports",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	c := cache.New(cache.NewMemoryBackend(1000), time.Minute)
	txRunner := repository.NewTxRunner(pool)
	catalog := service.NewCatalogService(repository.NewPlantRepository(pool), txRunner, c, time.Minute)
	requests := service.NewRecommendationLogService(repository.NewRecommendationRequestRepository(pool), txRunner, c, time.Minute)
	recommender := service.NewRecommendationService(catalog, engine.New(), requests, c, time.Minute)

	srv := httptest.NewServer(server.NewRouter(server.RouterConfig{
		RecommendationHandler: handlers.NewRecommendationHandler(recommender, requests),
		PlantHandler:          handlers.NewPlantHandler(catalog),
		Cache:                 c,
		CatalogTTL:            time.Minute,
		AggregateTTL:          time.Minute,
	}))
	t.Cleanup(srv.Close)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		Pool:       pool,
		Server:     srv,
		S3Client:   s3Client,
		Catalog:    catalog,
		Requests:   requests,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Response is a decoded HTTP exchange.
type Response struct {
	Status int
	Header http.Header
	Data   json.RawMessage
	Raw    []byte
}

func (e *E2ETestEnv) Do(method, path string, body any) *Response {
	e.T.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.T.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.Server.URL+path, reader)
	if err != nil {
		e.T.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "e2e-user")
	req.Header.Set("X-Session-ID", "e2e-session")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		e.T.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e.T.Fatalf("read body: %v", err)
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header, Raw: raw}
	if len(raw) > 0 {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err == nil {
			out.Data = env.Data
		}
	}
	return out
}

func (r *Response) Decode(t *testing.T, dst any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, dst); err != nil {
		t.Fatalf("decode %s: %v", string(r.Raw), err)
	}
}

func (r *Response) String() string {
	return fmt.Sprintf("%d %s", r.Status, r.Raw)
}
