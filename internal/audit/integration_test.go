//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"admin-gateway/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.DB.Exec(Schema)
	s.Require().NoError(err)
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE audit_events`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestAppendAndListRecent() {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.store.Append(ctx, Event{
			ID:        uuid.New(),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Action:    ActionLoginSucceeded,
			Username:  "alice",
			IPAddress: "10.0.0.1",
		})
		s.Require().NoError(err)
	}

	events, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(base.Add(2*time.Minute), events[0].Timestamp.UTC())
	s.Equal("alice", events[0].Username)
}

func (s *PostgresStoreSuite) TestAppendIsIdempotentByID() {
	ctx := context.Background()
	event := Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Action:    ActionLogout,
	}
	s.Require().NoError(s.store.Append(ctx, event))
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Len(events, 1)
}

func (s *PostgresStoreSuite) TestEmptyFieldsRoundTripAsEmpty() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Action:    ActionSessionExpired,
	}))

	events, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Empty(events[0].Username)
	s.Empty(events[0].Reason)
}

type KafkaPublisherSuite struct {
	suite.Suite
	broker    *containers.RedpandaContainer
	publisher *KafkaPublisher
}

func TestKafkaPublisherSuite(t *testing.T) {
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.NewRedpandaContainer(s.T())

	publisher, err := NewKafkaPublisher(s.broker.Brokers, "admin-gateway.audit")
	s.Require().NoError(err)
	s.T().Cleanup(publisher.Close)
	s.publisher = publisher

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1))
}

func (s *KafkaPublisherSuite) TestEnsureTopicIsIdempotent() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.NoError(s.publisher.EnsureTopic(ctx, 1, 1))
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Action:    ActionGrantsUpdated,
		UserID:    "u-1",
		Subject:   "r-9",
	}
	s.Require().NoError(s.publisher.Publish(ctx, event))

	consumer := s.broker.NewClient(s.T(),
		kgo.ConsumeTopics("admin-gateway.audit"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(event.ID, got.ID)
	s.Equal(ActionGrantsUpdated, got.Action)
	s.Equal("u-1", string(records[0].Key))
}
