package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/studytracker/api/internal/model"
)

// Layout: courses/<id>/{meta, studySessions/<seq>, qcmExams/<seq>}
var (
	coursesBucket  = []byte("courses")
	sessionsBucket = []byte("studySessions")
	examsBucket    = []byte("qcmExams")
	metaKey        = []byte("meta")
)

type courseMeta struct {
	Name          string    `json:"name"`
	SessionTarget int       `json:"sessionTarget"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BoltGateway keeps the course tree in an embedded bbolt file, one nested
// bucket per course.
type BoltGateway struct {
	db       *bbolt.DB
	notifier Notifier
	now      func() time.Time
}

// OpenBolt opens (or creates) the database file at path.
func OpenBolt(path string, notifier Notifier) (*BoltGateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(coursesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	if notifier == nil {
		notifier = NewLocalNotifier()
	}
	return &BoltGateway{db: db, notifier: notifier, now: time.Now}, nil
}

func (g *BoltGateway) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	return subscribe(ctx, g.notifier, path, g.load)
}

func (g *BoltGateway) AppendChild(ctx context.Context, path string, course model.Course) (string, error) {
	if err := collectionPath(path); err != nil {
		return "", err
	}

	id := newCourseID()
	course = prepareNew(course, id, g.now())

	err := g.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(coursesBucket).CreateBucket([]byte(id))
		if err != nil {
			return err
		}
		meta := courseMeta{
			Name:          course.Name,
			SessionTarget: course.SessionTarget,
			CreatedAt:     course.CreatedAt,
			UpdatedAt:     course.UpdatedAt,
		}
		if err := putJSON(b, metaKey, meta); err != nil {
			return err
		}
		if err := writeSequence(b, sessionsBucket, course.StudySessions); err != nil {
			return err
		}
		return writeSequence(b, examsBucket, course.QCMExams)
	})
	if err != nil {
		return "", err
	}

	return id, g.notifier.Notify(ctx, CoursePath(id))
}

func (g *BoltGateway) Update(ctx context.Context, path string, patch Patch) error {
	id, err := nodeID(path)
	if err != nil {
		return err
	}

	err = g.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(coursesBucket).Bucket([]byte(id))
		if b == nil {
			return ErrNotFound
		}

		var meta courseMeta
		if err := json.Unmarshal(b.Get(metaKey), &meta); err != nil {
			return err
		}
		if patch.Name != nil {
			meta.Name = *patch.Name
		}
		if patch.SessionTarget != nil {
			meta.SessionTarget = *patch.SessionTarget
		}
		meta.UpdatedAt = g.now()
		if err := putJSON(b, metaKey, meta); err != nil {
			return err
		}

		if patch.StudySessions != nil {
			if err := writeSequence(b, sessionsBucket, patch.StudySessions); err != nil {
				return err
			}
		}
		if patch.QCMExams != nil {
			if err := writeSequence(b, examsBucket, patch.QCMExams); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return g.notifier.Notify(ctx, path)
}

func (g *BoltGateway) Remove(ctx context.Context, path string) error {
	id, err := splitPath(path)
	if err != nil {
		return err
	}

	err = g.db.Update(func(tx *bbolt.Tx) error {
		if id == "" {
			if err := tx.DeleteBucket(coursesBucket); err != nil {
				return err
			}
			_, err := tx.CreateBucket(coursesBucket)
			return err
		}

		root := tx.Bucket(coursesBucket)
		if root.Bucket([]byte(id)) == nil {
			return ErrNotFound
		}
		return root.DeleteBucket([]byte(id))
	})
	if err != nil {
		return err
	}

	return g.notifier.Notify(ctx, path)
}

func (g *BoltGateway) Close() error {
	if err := g.notifier.Close(); err != nil {
		g.db.Close()
		return err
	}
	return g.db.Close()
}

func (g *BoltGateway) load(context.Context) (model.Collection, error) {
	snapshot := model.Collection{}

	err := g.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(coursesBucket)
		return root.ForEach(func(k, v []byte) error {
			// only nested buckets (v == nil) are courses
			if v != nil {
				return nil
			}
			b := root.Bucket(k)

			var meta courseMeta
			if err := json.Unmarshal(b.Get(metaKey), &meta); err != nil {
				return err
			}
			sessions, err := readSequence[model.StudySession](b, sessionsBucket)
			if err != nil {
				return err
			}
			exams, err := readSequence[model.QCMExam](b, examsBucket)
			if err != nil {
				return err
			}

			snapshot = append(snapshot, model.Course{
				ID:            string(k),
				Name:          meta.Name,
				SessionTarget: meta.SessionTarget,
				StudySessions: sessions,
				QCMExams:      exams,
				CreatedAt:     meta.CreatedAt,
				UpdatedAt:     meta.UpdatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func putJSON(b *bbolt.Bucket, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

// writeSequence replaces the nested bucket name with items keyed by their
// big-endian position.
func writeSequence[T any](parent *bbolt.Bucket, name []byte, items []T) error {
	if parent.Bucket(name) != nil {
		if err := parent.DeleteBucket(name); err != nil {
			return err
		}
	}
	b, err := parent.CreateBucket(name)
	if err != nil {
		return err
	}
	for _, item := range items {
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := putJSON(b, itob(seq), item); err != nil {
			return err
		}
	}
	return nil
}

func readSequence[T any](parent *bbolt.Bucket, name []byte) ([]T, error) {
	items := []T{}
	b := parent.Bucket(name)
	if b == nil {
		return items, nil
	}
	err := b.ForEach(func(_, v []byte) error {
		var item T
		if err := json.Unmarshal(v, &item); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
