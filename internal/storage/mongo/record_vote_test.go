package mongo

import (
	"context"
	"testing"

	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// These run against the driver's mock deployment, so no server is needed.
// Responses are consumed in the order RecordVote issues its commands.

type sentCommand struct {
	name string
	coll string
}

func sentCommands(mt *mtest.T) []sentCommand {
	var cmds []sentCommand
	for _, evt := range mt.GetAllStartedEvents() {
		coll, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
		cmds = append(cmds, sentCommand{name: evt.CommandName, coll: coll})
	}
	return cmds
}

func TestRecordVote_Compensation(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	pollID := primitive.NewObjectID().Hex()
	optionID := primitive.NewObjectID().Hex()

	inserted := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1})
	noMatch := mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
	deleted := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1})

	mt.Run("missing option removes the ledger entry", func(mt *mtest.T) {
		s := newStorage(mt.Client, mt.DB)
		mt.AddMockResponses(
			inserted,
			noMatch,
			deleted,
			mtest.CreateCursorResponse(0, mt.DB.Name()+".polls", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		_, err := s.RecordVote(context.Background(), "user", pollID, optionID)
		require.Error(mt, err)
		assert.ErrorIs(mt, err, storage.ErrOptionNotFound)

		assert.Equal(mt, []sentCommand{
			{name: "insert", coll: "votes"},
			{name: "findAndModify", coll: "polls"},
			{name: "delete", coll: "votes"},
			{name: "aggregate", coll: "polls"},
		}, sentCommands(mt))
	})

	mt.Run("missing poll removes the ledger entry", func(mt *mtest.T) {
		s := newStorage(mt.Client, mt.DB)
		mt.AddMockResponses(
			inserted,
			noMatch,
			deleted,
			mtest.CreateCursorResponse(0, mt.DB.Name()+".polls", mtest.FirstBatch),
		)

		_, err := s.RecordVote(context.Background(), "user", pollID, optionID)
		assert.ErrorIs(mt, err, storage.ErrPollNotFound)

		cmds := sentCommands(mt)
		require.Len(mt, cmds, 4)
		assert.Equal(mt, sentCommand{name: "delete", coll: "votes"}, cmds[2])
	})

	mt.Run("failed tally update and failed cleanup are both reported", func(mt *mtest.T) {
		s := newStorage(mt.Client, mt.DB)
		mt.AddMockResponses(
			inserted,
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "tally update failed"}),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "ledger delete failed"}),
		)

		_, err := s.RecordVote(context.Background(), "user", pollID, optionID)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, storage.ErrOptionNotFound)
		assert.NotErrorIs(mt, err, storage.ErrPollNotFound)
		assert.Contains(mt, err.Error(), "tally update failed")
		assert.Contains(mt, err.Error(), "ledger cleanup")
		assert.Contains(mt, err.Error(), "ledger delete failed")

		cmds := sentCommands(mt)
		require.Len(mt, cmds, 3)
		assert.Equal(mt, sentCommand{name: "delete", coll: "votes"}, cmds[2])
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelAfterInsert := options.Client().SetMonitor(&event.CommandMonitor{
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			if evt.CommandName == "insert" {
				cancel()
			}
		},
	})

	mt.RunOpts("cleanup runs after the request is cancelled", mtest.NewOptions().ClientOptions(cancelAfterInsert), func(mt *mtest.T) {
		s := newStorage(mt.Client, mt.DB)
		mt.AddMockResponses(inserted, deleted, deleted)

		_, err := s.RecordVote(ctx, "user", pollID, optionID)
		require.Error(mt, err)
		require.ErrorIs(mt, ctx.Err(), context.Canceled)

		var cleaned bool
		for _, evt := range mt.GetAllSucceededEvents() {
			if evt.CommandName == "delete" {
				cleaned = true
			}
		}
		assert.True(mt, cleaned, "ledger entry must be removed with a cancelled request context")
	})

	mt.Run("duplicate vote leaves the poll untouched", func(mt *mtest.T) {
		s := newStorage(mt.Client, mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: votes index: user_id_1_poll_id_1",
		}))

		_, err := s.RecordVote(context.Background(), "user", pollID, optionID)
		assert.ErrorIs(mt, err, storage.ErrVoteExists)
		assert.Equal(mt, []sentCommand{{name: "insert", coll: "votes"}}, sentCommands(mt))
	})
}
