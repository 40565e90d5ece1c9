package providers_test

import (
	"net/http"
	"time"

	"github.com/9seconds/geolocations/geolib"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"
)

type MockedProviderTestSuite struct {
	suite.Suite

	http geolib.HTTPClient
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) SetupTest() {
	suite.http = geolib.NewHTTPClient(&http.Client{},
		"test-agent",
		time.Millisecond,
		100,
		100,
		time.Minute,
		time.Minute)
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
}
