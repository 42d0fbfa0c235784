package api

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
	
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/katatrina/gundam-notification/internal/db/sqlite"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/katatrina/gundam-notification/internal/gateway"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/katatrina/gundam-notification/internal/testutil"
	"github.com/katatrina/gundam-notification/internal/token"
	"github.com/katatrina/gundam-notification/internal/util"
	"github.com/katatrina/gundam-notification/internal/worker"
	"github.com/stretchr/testify/require"
)

const (
	testSecretKey   = "0123456789abcdef0123456789abcdef"
	testInternalKey = "internal-secret"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeDistributor struct {
	mu           sync.Mutex
	priceChanges []worker.PayloadPriceChange
	sends        []worker.PayloadSendNotification
}

func (d *fakeDistributor) DistributeTaskSendNotification(_ context.Context, payload *worker.PayloadSendNotification, _ ...asynq.Option) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sends = append(d.sends, *payload)
	return nil
}

func (d *fakeDistributor) DistributeTaskPriceChange(_ context.Context, payload *worker.PayloadPriceChange, _ ...asynq.Option) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.priceChanges = append(d.priceChanges, *payload)
	return nil
}

func (d *fakeDistributor) Close() error {
	return nil
}

type testServer struct {
	*Server
	store   *sqlite.Store
	broker  *event.Broker
	maker   token.Maker
	service *notification.Service
}

func newTestServer(t *testing.T, distributor worker.TaskDistributor, sinks ...event.Sink) *testServer {
	t.Helper()
	
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	
	config := &util.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		TokenSecretKey: testSecretKey,
		InternalAPIKey: testInternalKey,
		DeliveryMode:   util.DeliveryModeDirect,
	}
	
	store := testutil.NewTestStore(t)
	broker := event.NewBroker(sinks...)
	go broker.Run(ctx)
	
	maker, err := token.NewJWTMaker(testSecretKey)
	require.NoError(t, err)
	verifier := token.NewMakerVerifier(maker)
	
	service := notification.NewService(store, broker)
	gw := gateway.New(service, verifier, broker)
	
	server := NewServer(config, store, service, gw, broker, verifier, distributor, nil)
	return &testServer{
		Server:  server,
		store:   store,
		broker:  broker,
		maker:   maker,
		service: service,
	}
}

func (s *testServer) accessToken(t *testing.T, userID string) string {
	t.Helper()
	
	accessToken, _, err := s.maker.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	return accessToken
}
