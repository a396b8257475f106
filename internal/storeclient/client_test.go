package storeclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/shelf/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/catalog"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/database"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/server"
	"github.com/MarcoPoloResearchLab/shelf/backend/internal/works"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func TestControllerSynchronizesThroughStoreAPI(testContext *testing.T) {
	backend := newBackend(testContext)
	client := backend.client(testContext, backend.key)

	confirmAll := catalog.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	controller, err := catalog.NewController(catalog.Config{Store: client, Confirmer: confirmAll})
	if err != nil {
		testContext.Fatalf("failed to build controller: %v", err)
	}
	ctx := context.Background()

	draft, err := works.ParseDraft(works.DraftInput{Title: "Blue Period", Genres: "art, drama", TotalChapters: "60"})
	if err != nil {
		testContext.Fatalf("unexpected draft error: %v", err)
	}
	if err := controller.Create(ctx, draft); err != nil {
		testContext.Fatalf("unexpected create error: %v", err)
	}

	items := controller.Works()
	if len(items) != 1 {
		testContext.Fatalf("expected one work after create, got %d", len(items))
	}
	created := items[0]
	if created.ID == "" || created.Title != "Blue Period" || len(created.Genres) != 2 {
		testContext.Fatalf("unexpected created work %#v", created)
	}

	if _, err := controller.AppendNote(ctx, created, "A"); err != nil {
		testContext.Fatalf("unexpected append error: %v", err)
	}
	refreshed, _ := controller.Find(created.ID)
	if _, err := controller.AppendNote(ctx, refreshed, "B"); err != nil {
		testContext.Fatalf("unexpected append error: %v", err)
	}
	refreshed, _ = controller.Find(created.ID)
	if refreshed.Notes != "A\nB" {
		testContext.Fatalf("expected notes %q, got %q", "A\nB", refreshed.Notes)
	}
	if !refreshed.CreatedAt.Equal(created.CreatedAt) {
		testContext.Fatalf("creation time changed across updates")
	}

	deleted, err := controller.Delete(ctx, created.ID)
	if err != nil || !deleted {
		testContext.Fatalf("unexpected delete result %t, %v", deleted, err)
	}
	if len(controller.Works()) != 0 {
		testContext.Fatalf("expected empty collection after delete")
	}
}

func TestClientMapsNotFound(testContext *testing.T) {
	backend := newBackend(testContext)
	client := backend.client(testContext, backend.key)

	err := client.Delete(context.Background(), "missing")
	if !errors.Is(err, works.ErrWorkNotFound) {
		testContext.Fatalf("expected not found, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound || statusErr.Slug != "not_found" {
		testContext.Fatalf("unexpected status error %#v", err)
	}
}

func TestClientMapsValidationErrors(testContext *testing.T) {
	backend := newBackend(testContext)
	client := backend.client(testContext, backend.key)

	_, err := client.Insert(context.Background(), works.Record{Fields: works.Fields{
		Title:             "",
		PublicationStatus: works.PublicationOngoing,
		ReadingStatus:     works.ReadingPlanned,
	}})
	if !errors.Is(err, works.ErrValidation) {
		testContext.Fatalf("expected validation error, got %v", err)
	}
	var validationErr *works.ValidationError
	if !errors.As(err, &validationErr) || len(validationErr.Errors) != 1 || validationErr.Errors[0].Field != works.FieldTitle {
		testContext.Fatalf("expected title field error, got %#v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != "works.insert.invalid_record" {
		testContext.Fatalf("unexpected status error %#v", err)
	}
}

func TestClientReportsRejectedKey(testContext *testing.T) {
	backend := newBackend(testContext)
	client := backend.client(testContext, "not-a-key")

	_, err := client.List(context.Background(), works.RecentlyUpdatedFirst)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		testContext.Fatalf("expected unauthorized status error, got %v", err)
	}
	if errors.Is(err, works.ErrWorkNotFound) || errors.Is(err, works.ErrValidation) {
		testContext.Fatalf("unauthorized must not map onto a works sentinel")
	}
}

func TestNewValidatesConfig(testContext *testing.T) {
	if _, err := New(Config{APIKey: "key"}); !errors.Is(err, errMissingBaseURL) {
		testContext.Fatalf("expected missing url error, got %v", err)
	}
	if _, err := New(Config{BaseURL: "http://localhost"}); !errors.Is(err, errMissingAPIKey) {
		testContext.Fatalf("expected missing key error, got %v", err)
	}
}

type backend struct {
	server *httptest.Server
	key    string
}

func newBackend(testContext *testing.T) backend {
	testContext.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenSQLite(filepath.Join(testContext.TempDir(), "shelf.db"), zap.NewNop())
	if err != nil {
		testContext.Fatalf("failed to open database: %v", err)
	}
	service, err := works.NewService(works.ServiceConfig{Database: db, IDProvider: works.NewUUIDProvider()})
	if err != nil {
		testContext.Fatalf("failed to build works service: %v", err)
	}
	issuer, err := auth.NewKeyIssuer(auth.KeyIssuerConfig{
		SigningSecret: []byte("client-test-signing-secret"),
		Issuer:        auth.DefaultKeyIssuer,
		Audience:      auth.DefaultKeyAudience,
		KeyTTL:        time.Hour,
	})
	if err != nil {
		testContext.Fatalf("failed to build key issuer: %v", err)
	}
	key, _, err := issuer.IssueKey(context.Background(), "reader-1")
	if err != nil {
		testContext.Fatalf("failed to issue key: %v", err)
	}
	handler, err := server.NewHTTPHandler(server.Dependencies{KeyValidator: issuer, WorkStore: service})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}

	httpServer := httptest.NewServer(handler)
	testContext.Cleanup(httpServer.Close)
	return backend{server: httpServer, key: key}
}

func (b backend) client(testContext *testing.T, key string) *Client {
	testContext.Helper()
	client, err := New(Config{BaseURL: b.server.URL, APIKey: key, HTTPClient: b.server.Client()})
	if err != nil {
		testContext.Fatalf("failed to build client: %v", err)
	}
	return client
}
