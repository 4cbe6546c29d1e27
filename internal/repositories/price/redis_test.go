package price

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/veldrin/orepay/internal/common/clock/mocks"
)

type RedisOracleTestSuite struct {
	suite.Suite
	mr        *miniredis.Miniredis
	client    *redis.Client
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	oracle    Oracle
	testNow   time.Time
}

func (s *RedisOracleTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.testNow = time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

	oracle, err := NewRedis(&Config{
		RedisClient: s.client,
		MaxAge:      time.Hour,
		Clock:       s.mockClock,
	})
	s.Require().NoError(err)
	s.oracle = oracle
}

func (s *RedisOracleTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.client.Close()
	s.mr.Close()
}

func TestRedisOracleTestSuite(t *testing.T) {
	suite.Run(t, new(RedisOracleTestSuite))
}

func (s *RedisOracleTestSuite) TestSetAndGetPrice() {
	s.mockClock.EXPECT().Now().Return(s.testNow).Times(2)

	err := s.oracle.SetPrice(context.Background(), &SetPriceInput{
		Commodity: "Quantainium",
		UnitPrice: 88,
	})
	s.Require().NoError(err)

	// Lookup is case-insensitive
	output, err := s.oracle.GetPrice(context.Background(), &GetPriceInput{
		Commodity: "quantainium",
	})
	s.Require().NoError(err)
	s.Equal(int64(88), output.UnitPrice)
	s.Equal(s.testNow.Unix(), output.UpdatedAt.Unix())
	s.False(output.Stale)
}

func (s *RedisOracleTestSuite) TestStalePrice() {
	s.mockClock.EXPECT().Now().Return(s.testNow)

	err := s.oracle.SetPrice(context.Background(), &SetPriceInput{
		Commodity: "laranite",
		UnitPrice: 31,
	})
	s.Require().NoError(err)

	// Two hours later the one-hour max age has passed
	s.mockClock.EXPECT().Now().Return(s.testNow.Add(2 * time.Hour))

	output, err := s.oracle.GetPrice(context.Background(), &GetPriceInput{
		Commodity: "laranite",
	})
	s.Require().NoError(err)
	s.Equal(int64(31), output.UnitPrice)
	s.True(output.Stale)
}

func (s *RedisOracleTestSuite) TestGetUnknownCommodity() {
	_, err := s.oracle.GetPrice(context.Background(), &GetPriceInput{
		Commodity: "agricium",
	})
	s.Require().Error(err)
	s.Equal(ErrPriceNotFound, err)
}

func (s *RedisOracleTestSuite) TestSetNegativePrice() {
	err := s.oracle.SetPrice(context.Background(), &SetPriceInput{
		Commodity: "laranite",
		UnitPrice: -1,
	})
	s.Require().Error(err)
}
