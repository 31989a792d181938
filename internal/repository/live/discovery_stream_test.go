package live

import (
	"context"
	"testing"
	"time"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/model"
	"plant-journal-be/internal/repository/implementation"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newStream(t *testing.T) (*DiscoveryStream, func(ownerId, name string, capturedAt int64) uuid.UUID, func(id uuid.UUID)) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Discovery{}))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := implementation.NewDiscoveryRepository(db, pubSub)
	stream := NewDiscoveryStream(repo, pubSub)

	insert := func(ownerId, name string, capturedAt int64) uuid.UUID {
		id, err := repo.Insert(context.Background(), &entity.Discovery{
			OwnerId:    ownerId,
			Name:       name,
			ImagePath:  "uploads/x.jpg",
			Category:   entity.CategoryPlant,
			CapturedAt: capturedAt,
		})
		require.NoError(t, err)
		return id
	}
	remove := func(id uuid.UUID) {
		require.NoError(t, repo.DeleteById(context.Background(), id))
	}
	return stream, insert, remove
}

func recv(t *testing.T, ch <-chan []*entity.Discovery) []*entity.Discovery {
	t.Helper()
	select {
	case records, ok := <-ch:
		require.True(t, ok, "stream closed unexpectedly")
		return records
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a record list")
		return nil
	}
}

func TestStreamEmitsSnapshotThenDeltas(t *testing.T) {
	stream, insert, remove := newStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	insert("owner-1", "Mint", 100)

	ch, err := stream.StreamByOwner(ctx, "owner-1")
	require.NoError(t, err)

	snapshot := recv(t, ch)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Mint", snapshot[0].Name)

	oakId := insert("owner-1", "Oak", 200)
	records := recv(t, ch)
	require.Len(t, records, 2)
	assert.Equal(t, "Oak", records[0].Name, "newest first")

	remove(oakId)
	records = recv(t, ch)
	require.Len(t, records, 1)
	assert.Equal(t, "Mint", records[0].Name)
}

func TestStreamIsOwnerScoped(t *testing.T) {
	stream, insert, _ := newStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := stream.StreamByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Empty(t, recv(t, ch))

	insert("owner-2", "Rose", 100)

	select {
	case records := <-ch:
		t.Fatalf("another owner's mutation leaked into the stream: %v", records)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestStreamClosesOnContextCancel(t *testing.T) {
	stream, _, _ := newStream(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := stream.StreamByOwner(ctx, "owner-1")
	require.NoError(t, err)
	recv(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should close after cancel")
	case <-time.After(3 * time.Second):
		t.Fatal("stream did not close after context cancel")
	}
}

func TestStreamIsRestartable(t *testing.T) {
	stream, insert, _ := newStream(t)

	ctx1, cancel1 := context.WithCancel(context.Background())
	ch1, err := stream.StreamByOwner(ctx1, "owner-1")
	require.NoError(t, err)
	recv(t, ch1)
	cancel1()

	insert("owner-1", "Mint", 100)

	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()
	ch2, err := stream.StreamByOwner(ctx2, "owner-1")
	require.NoError(t, err)

	snapshot := recv(t, ch2)
	require.Len(t, snapshot, 1, "restarted stream must start from the current snapshot")
	assert.Equal(t, "Mint", snapshot[0].Name)
}
