package geolib

import (
	"context"
	"net"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

type RichProviderMock struct {
	mock.Mock
}

func (m *RichProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *RichProviderMock) Lookup(ctx context.Context, ip net.IP) (*RichPayload, error) {
	args := m.Called(ctx, ip)
	rv, _ := args.Get(0).(*RichPayload)

	return rv, args.Error(1)
}

type OfflineProviderMock struct {
	mock.Mock
}

func (m *OfflineProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *OfflineProviderMock) LookupIP(ctx context.Context, ip net.IP) (*CompactPayload, error) {
	args := m.Called(ctx, ip)
	rv, _ := args.Get(0).(*CompactPayload)

	return rv, args.Error(1)
}

func (m *OfflineProviderMock) LookupHost(ctx context.Context, host string) (*CompactPayload, error) {
	args := m.Called(ctx, host)
	rv, _ := args.Get(0).(*CompactPayload)

	return rv, args.Error(1)
}

type UpdatableProviderMock struct {
	mock.Mock
}

func (m *UpdatableProviderMock) Name() string {
	return m.Called().String(0)
}

func (m *UpdatableProviderMock) UpdateEvery() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

func (m *UpdatableProviderMock) BaseDirectory() string {
	return m.Called().String(0)
}

func (m *UpdatableProviderMock) Open(fs *afero.BasePathFs) error {
	return m.Called(fs).Error(0)
}

func (m *UpdatableProviderMock) Download(ctx context.Context, fs afero.Fs) error {
	return m.Called(ctx, fs).Error(0)
}

func (m *UpdatableProviderMock) Shutdown() {
	m.Called()
}

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) EnsureSchema(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *StoreMock) Close() error {
	return m.Called().Error(0)
}

func (m *StoreMock) CreateGeoLocation(ctx context.Context, record *Record) (*GeoLocation, error) {
	args := m.Called(ctx, record)
	rv, _ := args.Get(0).(*GeoLocation)

	return rv, args.Error(1)
}

func (m *StoreMock) GetGeoLocation(ctx context.Context, id int64) (*GeoLocation, error) {
	args := m.Called(ctx, id)
	rv, _ := args.Get(0).(*GeoLocation)

	return rv, args.Error(1)
}

func (m *StoreMock) ListGeoLocations(ctx context.Context) ([]GeoLocation, error) {
	args := m.Called(ctx)
	rv, _ := args.Get(0).([]GeoLocation)

	return rv, args.Error(1)
}

func (m *StoreMock) UpdateGeoLocation(ctx context.Context, id int64, record *Record) (*GeoLocation, error) {
	args := m.Called(ctx, id, record)
	rv, _ := args.Get(0).(*GeoLocation)

	return rv, args.Error(1)
}

func (m *StoreMock) DeleteGeoLocation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *StoreMock) CreateLocation(ctx context.Context, changes *LocationChanges) (*Location, error) {
	args := m.Called(ctx, changes)
	rv, _ := args.Get(0).(*Location)

	return rv, args.Error(1)
}

func (m *StoreMock) UpdateLocation(ctx context.Context, id int64, changes *LocationChanges) (*Location, error) {
	args := m.Called(ctx, id, changes)
	rv, _ := args.Get(0).(*Location)

	return rv, args.Error(1)
}

func (m *StoreMock) GetLocation(ctx context.Context, id int64) (*Location, error) {
	args := m.Called(ctx, id)
	rv, _ := args.Get(0).(*Location)

	return rv, args.Error(1)
}

func (m *StoreMock) ListLocations(ctx context.Context) ([]Location, error) {
	args := m.Called(ctx)
	rv, _ := args.Get(0).([]Location)

	return rv, args.Error(1)
}

func (m *StoreMock) DeleteLocation(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *StoreMock) CreateLanguage(ctx context.Context, draft LanguageDraft) (*Language, error) {
	args := m.Called(ctx, draft)
	rv, _ := args.Get(0).(*Language)

	return rv, args.Error(1)
}

func (m *StoreMock) GetLanguage(ctx context.Context, id int64) (*Language, error) {
	args := m.Called(ctx, id)
	rv, _ := args.Get(0).(*Language)

	return rv, args.Error(1)
}

func (m *StoreMock) UpdateLanguage(ctx context.Context, id int64, draft LanguageDraft) (*Language, error) {
	args := m.Called(ctx, id, draft)
	rv, _ := args.Get(0).(*Language)

	return rv, args.Error(1)
}

func (m *StoreMock) DeleteLanguage(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *StoreMock) ListLanguages(ctx context.Context) ([]Language, error) {
	args := m.Called(ctx)
	rv, _ := args.Get(0).([]Language)

	return rv, args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(key, provider string, err error) {
	m.Called(key, provider, err)
}

func (m *LoggerMock) IngestInfo(key string, shape Shape, id int64) {
	m.Called(key, shape, id)
}

func (m *LoggerMock) IngestError(key string, err error) {
	m.Called(key, err)
}

func (m *LoggerMock) UpdateInfo(provider, msg string) {
	m.Called(provider, msg)
}

func (m *LoggerMock) UpdateError(provider string, err error) {
	m.Called(provider, err)
}
