package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"foodbridge/config"
	"foodbridge/internal/domain/entity"
	domainerrors "foodbridge/internal/domain/errors"
	"foodbridge/internal/domain/service"
	"foodbridge/internal/infra/auth"
	"foodbridge/internal/infra/persistence/postgres"
	"foodbridge/internal/infra/persistence/sqlitetest"
	"foodbridge/internal/infra/qrcode"
	"foodbridge/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	return &config.Config{
		SecretKey: config.SecretKeyConfig{Access: "test-secret"},
		Auth: &config.AuthConfig{
			BcryptCost: bcrypt.MinCost,
			TokenTTL:   time.Hour,
		},
	}
}

func ptr[T any](v T) *T {
	return &v
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.DonationEvent
	err    error
}

func (p *recordingPublisher) PublishDonationEvent(_ context.Context, event *service.DonationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) types() []service.DonationEventType {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]service.DonationEventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}

	return types
}

// fakeGoogleVerifier accepts exactly the credentials it knows.
type fakeGoogleVerifier struct {
	identities map[string]*service.GoogleIdentity
}

func (f *fakeGoogleVerifier) VerifyIDToken(_ context.Context, idToken string) (*service.GoogleIdentity, error) {
	identity, ok := f.identities[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}

	return identity, nil
}

// testApp wires every use case onto one in-memory database.
type testApp struct {
	db        *gorm.DB
	clock     time.Time
	publisher *recordingPublisher
	google    *fakeGoogleVerifier
	tokens    service.TokenService

	auth      *authService
	profiles  *profileService
	donations *donationService
	chats     *chatService
	devices   *deviceService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db := sqlitetest.New(t)
	cfg := newTestConfig()
	logger := newDiscardLogger()

	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	app := &testApp{
		db:        db,
		clock:     time.Now().UTC().Truncate(time.Second),
		publisher: &recordingPublisher{},
		google:    &fakeGoogleVerifier{identities: map[string]*service.GoogleIdentity{}},
		tokens:    tokens,
	}

	txManager := postgres.NewTransactionManager(db)
	accountRepo := postgres.NewAccountRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	app.auth = NewAuthService(AuthServiceParams{
		TxManager:         txManager,
		AccountRepo:       accountRepo,
		ProfileRepo:       profileRepo,
		Hasher:            auth.NewBcryptHasher(cfg),
		TokenService:      tokens,
		GoogleAuthService: app.google,
		Logger:            logger,
	}).(*authService)

	app.profiles = NewProfileService(ProfileServiceParams{
		TxManager: txManager,
		Logger:    logger,
	}).(*profileService)

	app.donations = NewDonationService(DonationServiceParams{
		TxManager:      txManager,
		DonationRepo:   postgres.NewDonationRepository(db),
		EventPublisher: app.publisher,
		QRCodeService:  qrcode.NewQRCodeService(256, "M"),
		Logger:         logger,
	}).(*donationService)
	app.donations.now = app.now

	app.chats = NewChatService(ChatServiceParams{
		ChatRepo:    postgres.NewChatRepository(db),
		ProfileRepo: profileRepo,
		Logger:      logger,
	}).(*chatService)
	app.chats.now = app.now

	app.devices = NewDeviceService(DeviceServiceParams{
		DeviceRepo: postgres.NewDeviceRepository(db),
		Logger:     logger,
	}).(*deviceService)

	return app
}

func (app *testApp) now() time.Time {
	return app.clock
}

func (app *testApp) advance(d time.Duration) {
	app.clock = app.clock.Add(d)
}

func (app *testApp) register(t *testing.T, role entity.Role, email string, location *entity.GeoLocation) *entity.Account {
	t.Helper()

	out, err := app.auth.Register(context.Background(), &usecase.RegisterInput{
		Role:     role,
		Name:     "Account " + email,
		Email:    email,
		Phone:    "555-0100",
		Password: "s3cret-pass",
		Location: location,
	})
	require.NoError(t, err)

	return out.Account
}

func (app *testApp) restaurant(t *testing.T, email string) entity.RestaurantActor {
	t.Helper()

	account := app.register(t, entity.RoleRestaurant, email, &entity.GeoLocation{
		Latitude:  ptr(25.0330),
		Longitude: ptr(121.5654),
		Address:   "Xinyi Rd",
	})

	return entity.RestaurantActor{ID: account.ID}
}

func (app *testApp) ngo(t *testing.T, email string) entity.NGOActor {
	t.Helper()

	account := app.register(t, entity.RoleNGO, email, &entity.GeoLocation{
		Latitude:  ptr(25.0478),
		Longitude: ptr(121.5170),
		Address:   "Zhongzheng Rd",
	})

	return entity.NGOActor{ID: account.ID}
}

func requireAppError(t *testing.T, err error, httpCode int) domainerrors.AppError {
	t.Helper()

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an application error, got %v", err)
	require.Equal(t, httpCode, appErr.HTTPCode(), "unexpected error %q", appErr.ErrorCode())

	return appErr
}

func (app *testApp) offer(t *testing.T, actor entity.RestaurantActor, quantity string, ttl time.Duration) *entity.Donation {
	t.Helper()

	donation, err := app.donations.AsRestaurant(actor).Create(context.Background(), &usecase.CreateDonationInput{
		FoodType:        "Rice",
		Quantity:        quantity,
		ExpiryTime:      app.clock.Add(ttl),
		PickupLocation:  "Back door",
		PreferredOption: entity.OptionNGOPickup,
	})
	require.NoError(t, err)

	return donation
}
