package notifications

import (
	"context"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/uniformhub/gateway/pkg/firestore"
)

const (
	collectionName = "notifications"
	maxBatchWrites = 500
)

// Notification mirrors a document in the notifications collection. Writers
// store Email lowercased; every lookup here matches it exactly against
// normalizeEmail of the caller.
type Notification struct {
	ID           string    `firestore:"-" json:"id"`
	Email        string    `firestore:"email" json:"email"`
	Title        string    `firestore:"title" json:"title"`
	Content      string    `firestore:"content" json:"content"`
	CreationDate time.Time `firestore:"creation_date" json:"creation_date"`
	Read         bool      `firestore:"read" json:"read"`
}

// Repository exposes persistence helpers for notifications.
type Repository interface {
	List(ctx context.Context, params listNotificationsParams) ([]Notification, error)
	MarkRead(ctx context.Context, email, notificationID string) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, email string) (int64, error)
	Watch(ctx context.Context, email string, emit func([]Notification) error) error
}

type repositoryImpl struct {
	client *gcfirestore.Client
}

// NewRepository returns a notifications repository bound to Firestore.
func NewRepository(client *firestore.Client) Repository {
	return &repositoryImpl{client: client.Raw()}
}

type listNotificationsParams struct {
	Email      string
	Limit      int
	UnreadOnly bool
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) col() *gcfirestore.CollectionRef {
	return r.client.Collection(collectionName)
}

func (r *repositoryImpl) query(email string, unreadOnly bool) gcfirestore.Query {
	q := r.col().Where("email", "==", normalizeEmail(email))
	if unreadOnly {
		q = q.Where("read", "==", false)
	}
	return q.OrderBy("creation_date", gcfirestore.Desc)
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]Notification, error) {
	q := r.query(params.Email, params.UnreadOnly)
	if params.Limit > 0 {
		q = q.Limit(params.Limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	out := []Notification{}
	for {
		doc, err := iter.Next()
		if firestore.IsDone(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		n, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *repositoryImpl) MarkRead(ctx context.Context, email, notificationID string) (notificationMarkResult, error) {
	ref := r.col().Doc(notificationID)
	doc, err := ref.Get(ctx)
	if firestore.IsNotFound(err) {
		return notificationMarkResult{}, nil
	}
	if err != nil {
		return notificationMarkResult{}, err
	}

	n, err := decode(doc)
	if err != nil {
		return notificationMarkResult{}, err
	}
	if !ownedBy(n, email) {
		return notificationMarkResult{}, nil
	}
	if n.Read {
		return notificationMarkResult{Found: true}, nil
	}

	if _, err := ref.Update(ctx, []gcfirestore.Update{{Path: "read", Value: true}}); err != nil {
		if firestore.IsNotFound(err) {
			return notificationMarkResult{}, nil
		}
		return notificationMarkResult{}, err
	}
	return notificationMarkResult{Found: true, Updated: true}, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, email string) (int64, error) {
	iter := r.col().
		Where("email", "==", normalizeEmail(email)).
		Where("read", "==", false).
		Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	pending := 0
	var total int64
	for {
		doc, err := iter.Next()
		if firestore.IsDone(err) {
			break
		}
		if err != nil {
			return total, err
		}
		batch.Update(doc.Ref, []gcfirestore.Update{{Path: "read", Value: true}})
		pending++
		if pending == maxBatchWrites {
			if _, err := batch.Commit(ctx); err != nil {
				return total, err
			}
			total += int64(pending)
			pending = 0
			batch = r.client.Batch()
		}
	}
	if pending > 0 {
		if _, err := batch.Commit(ctx); err != nil {
			return total, err
		}
		total += int64(pending)
	}
	return total, nil
}

func (r *repositoryImpl) Watch(ctx context.Context, email string, emit func([]Notification) error) error {
	snapshots := r.query(email, false).Snapshots(ctx)
	defer snapshots.Stop()

	for {
		snap, err := snapshots.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			return err
		}
		items := make([]Notification, 0, len(docs))
		for _, doc := range docs {
			n, err := decode(doc)
			if err != nil {
				return err
			}
			items = append(items, n)
		}
		if err := emit(items); err != nil {
			return err
		}
	}
}

// ownedBy applies the same rule as the email queries, so a document MarkRead
// accepts is one List would return.
func ownedBy(n Notification, email string) bool {
	return n.Email == normalizeEmail(email)
}

func decode(doc *gcfirestore.DocumentSnapshot) (Notification, error) {
	var n Notification
	if err := doc.DataTo(&n); err != nil {
		return Notification{}, err
	}
	n.ID = doc.Ref.ID
	return n, nil
}
