package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const compensationTimeout = 5 * time.Second

type Storage struct {
	client *mongo.Client
	db     *mongo.Database
	users  *mongo.Collection
	tasks  *mongo.Collection
	polls  *mongo.Collection
	votes  *mongo.Collection
}

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	PassHash  []byte             `bson:"pass_hash"`
	CreatedAt time.Time          `bson:"created_at"`
}

type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"due_date,omitempty"`
	Completed   bool               `bson:"completed"`
	OwnerID     string             `bson:"owner_id"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

type optionDoc struct {
	ID    primitive.ObjectID `bson:"_id"`
	Text  string             `bson:"text"`
	Votes int64              `bson:"votes"`
}

type pollDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Options   []optionDoc        `bson:"options"`
	AuthorID  string             `bson:"author_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

type voteDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	PollID    string             `bson:"poll_id"`
	CreatedAt time.Time          `bson:"created_at"`
}

// New connects to uri, selects database and makes sure the indexes the storage relies on exist.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := newStorage(client, client.Database(database))

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func newStorage(client *mongo.Client, db *mongo.Database) *Storage {
	return &Storage{
		client: client,
		db:     db,
		users:  db.Collection("users"),
		tasks:  db.Collection("tasks"),
		polls:  db.Collection("polls"),
		votes:  db.Collection("votes"),
	}
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{s.tasks, mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		{s.polls, mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}},
		{s.votes, mongo.IndexModel{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "poll_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.votes, mongo.IndexModel{Keys: bson.D{{Key: "poll_id", Value: 1}}}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) SaveUser(ctx context.Context, email, name string, passHash []byte) (string, error) {
	const op = "storage.mongo.SaveUser"

	res, err := s.users.InsertOne(ctx, userDoc{
		Email:     email,
		Name:      name,
		PassHash:  passHash,
		CreatedAt: now(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.mongo.User"

	var doc userDoc
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.User{
		ID:        doc.ID.Hex(),
		Email:     doc.Email,
		Name:      doc.Name,
		PassHash:  doc.PassHash,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (s *Storage) SaveTask(ctx context.Context, task models.Task) (models.Task, error) {
	const op = "storage.mongo.SaveTask"

	ts := now()
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		OwnerID:     task.OwnerID,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

func (s *Storage) Tasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	const op = "storage.mongo.Tasks"

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.tasks.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toModel())
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error) {
	const op = "storage.mongo.UpdateTask"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}

	set := bson.M{"updated_at": now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Priority != nil {
		set["priority"] = string(*upd.Priority)
	}
	if upd.DueDate != nil && !upd.ClearDueDate {
		set["due_date"] = upd.DueDate.UTC()
	}
	if upd.Completed != nil {
		set["completed"] = *upd.Completed
	}

	update := bson.M{"$set": set}
	if upd.ClearDueDate {
		update["$unset"] = bson.M{"due_date": ""}
	}

	var doc taskDoc
	err = s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "owner_id": ownerID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Task{}, fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
		}
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

func (s *Storage) DeleteTask(ctx context.Context, ownerID, id string) error {
	const op = "storage.mongo.DeleteTask"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}
	return nil
}

// SavePoll stores the poll with its options embedded, so both appear in one write.
func (s *Storage) SavePoll(ctx context.Context, title string, opts []string, authorID string) (models.Poll, error) {
	const op = "storage.mongo.SavePoll"

	doc := pollDoc{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Options:   make([]optionDoc, 0, len(opts)),
		AuthorID:  authorID,
		CreatedAt: now(),
	}
	for _, text := range opts {
		doc.Options = append(doc.Options, optionDoc{ID: primitive.NewObjectID(), Text: text})
	}

	if _, err := s.polls.InsertOne(ctx, doc); err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

func (s *Storage) Poll(ctx context.Context, id string) (models.Poll, error) {
	const op = "storage.mongo.Poll"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}

	var doc pollDoc
	if err := s.polls.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
		}
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return doc.toModel(), nil
}

func (s *Storage) Polls(ctx context.Context) ([]models.Poll, error) {
	const op = "storage.mongo.Polls"

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.polls.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var docs []pollDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	polls := make([]models.Poll, 0, len(docs))
	for _, doc := range docs {
		polls = append(polls, doc.toModel())
	}
	return polls, nil
}

func (s *Storage) DeletePoll(ctx context.Context, id string) error {
	const op = "storage.mongo.DeletePoll"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}

	res, err := s.polls.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}
	return nil
}

func (s *Storage) HasVoted(ctx context.Context, userID, pollID string) (bool, error) {
	const op = "storage.mongo.HasVoted"

	n, err := s.votes.CountDocuments(ctx,
		bson.M{"user_id": userID, "poll_id": pollID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

// RecordVote inserts the ledger entry first; the unique {user_id, poll_id} index makes
// it the single point where concurrent votes of one user are decided. The tally is then
// bumped with a positional $inc. If that finds no matching poll option the ledger entry
// is removed again.
func (s *Storage) RecordVote(ctx context.Context, userID, pollID, optionID string) (models.Poll, error) {
	const op = "storage.mongo.RecordVote"

	pid, err := primitive.ObjectIDFromHex(pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}
	oid, err := primitive.ObjectIDFromHex(optionID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrOptionNotFound)
	}

	vote := voteDoc{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		PollID:    pollID,
		CreatedAt: now(),
	}
	if _, err := s.votes.InsertOne(ctx, vote); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrVoteExists)
		}
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	var doc pollDoc
	err = s.polls.FindOneAndUpdate(ctx,
		bson.M{"_id": pid, "options._id": oid},
		bson.M{"$inc": bson.M{"options.$.votes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}

	if cerr := s.removeVote(ctx, vote.ID); cerr != nil {
		err = errors.Join(err, fmt.Errorf("ledger cleanup: %w", cerr))
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Poll{}, fmt.Errorf("%s: %w", op, s.missingTarget(ctx, pid))
	}
	return models.Poll{}, fmt.Errorf("%s: %w", op, err)
}

// removeVote deletes a ledger entry even if the request context is already cancelled.
func (s *Storage) removeVote(ctx context.Context, id primitive.ObjectID) error {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	_, err := s.votes.DeleteOne(cctx, bson.M{"_id": id})
	return err
}

func (s *Storage) missingTarget(ctx context.Context, pid primitive.ObjectID) error {
	n, err := s.polls.CountDocuments(ctx, bson.M{"_id": pid}, options.Count().SetLimit(1))
	if err == nil && n > 0 {
		return storage.ErrOptionNotFound
	}
	return storage.ErrPollNotFound
}

func (s *Storage) DeleteVotesByPoll(ctx context.Context, pollID string) (int64, error) {
	const op = "storage.mongo.DeleteVotesByPoll"

	res, err := s.votes.DeleteMany(ctx, bson.M{"poll_id": pollID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

// SweepOrphanVotes removes ledger entries whose poll no longer exists.
func (s *Storage) SweepOrphanVotes(ctx context.Context) (int64, error) {
	const op = "storage.mongo.SweepOrphanVotes"

	raw, err := s.votes.Distinct(ctx, "poll_id", bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}

	referenced := make(map[string]struct{}, len(raw))
	oids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		id, ok := v.(string)
		if !ok {
			continue
		}
		referenced[id] = struct{}{}
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}

	cursor, err := s.polls.Find(ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		delete(referenced, doc.ID.Hex())
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if len(referenced) == 0 {
		return 0, nil
	}

	orphans := make([]string, 0, len(referenced))
	for id := range referenced {
		orphans = append(orphans, id)
	}

	res, err := s.votes.DeleteMany(ctx, bson.M{"poll_id": bson.M{"$in": orphans}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

func (s *Storage) CountVotes(ctx context.Context, pollID string) (int64, error) {
	const op = "storage.mongo.CountVotes"

	n, err := s.votes.CountDocuments(ctx, bson.M{"poll_id": pollID})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (d taskDoc) toModel() models.Task {
	task := models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    models.Priority(d.Priority),
		Completed:   d.Completed,
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}

func (d pollDoc) toModel() models.Poll {
	poll := models.Poll{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Options:   make([]models.Option, 0, len(d.Options)),
		AuthorID:  d.AuthorID,
		CreatedAt: d.CreatedAt.UTC(),
	}
	for _, o := range d.Options {
		poll.Options = append(poll.Options, models.Option{ID: o.ID.Hex(), Text: o.Text, VoteCount: o.Votes})
	}
	return poll
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
