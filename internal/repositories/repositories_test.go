package repositories

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/yopdevs/platform/backend/internal/models"
)

// sqlRecorder keeps every statement gorm builds, with its values inlined.
type sqlRecorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stmts = append(r.stmts, sql)
}

func (r *sqlRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

// dryRunDB returns a postgres-dialect gorm handle that builds statements
// without connecting.
func dryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

func TestInsertIfFriends_RequiresAcceptedPair(t *testing.T) {
	db, _ := dryRunDB(t)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	msg := &models.Message{SenderID: "zoe", ReceiverID: "adam", Content: "hi", CreatedAt: at}

	stmt := insertIfFriends(db, msg).Statement
	sql := stmt.SQL.String()

	assert.Contains(t, sql, "INSERT INTO messages (sender_id, receiver_id, content, created_at)")
	assert.Contains(t, sql, "SELECT $1, $2, $3, $4")
	assert.Contains(t, sql, "WHERE EXISTS")
	assert.Contains(t, sql, "WHERE pair_low = $5 AND pair_high = $6 AND status = $7")
	assert.Contains(t, sql, "RETURNING id")
	assert.Less(t, strings.Index(sql, "WHERE EXISTS"), strings.Index(sql, "RETURNING"))

	assert.Equal(t, []interface{}{"zoe", "adam", "hi", at, "adam", "zoe", models.FriendRequestAccepted}, stmt.Vars,
		"the pair is matched in canonical order whoever sends")
}

func TestCreateLocked_LocksAndCountsBeforeInsert(t *testing.T) {
	db, rec := dryRunDB(t)
	since := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	post := &models.Post{AuthorID: "ana", Title: "hello", Content: "body", CreatedAt: since.Add(time.Hour)}

	used, err := createLocked(db, QuotaPosts, "ana", since, 5, post)
	require.NoError(t, err)
	assert.Zero(t, used)

	stmts := rec.all()
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "pg_advisory_xact_lock(hashtext('posts:ana'))")
	assert.Contains(t, stmts[1], "count(*)")
	assert.Contains(t, stmts[1], `"posts"`)
	assert.Contains(t, stmts[1], "author_id = 'ana' AND created_at >=")
	assert.Contains(t, stmts[2], `INSERT INTO "posts"`)
}

func TestCreateLocked_ProjectsLockOnOwner(t *testing.T) {
	db, rec := dryRunDB(t)
	since := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := createLocked(db, QuotaProjects, "bruno", since, 3, &models.Project{OwnerID: "bruno", Title: "app"})
	require.NoError(t, err)

	stmts := rec.all()
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "hashtext('projects:bruno')")
	assert.Contains(t, stmts[1], "owner_id = 'bruno'")
	assert.Contains(t, stmts[2], `INSERT INTO "projects"`)
}

func TestCreateLocked_AtLimitSkipsInsert(t *testing.T) {
	db, rec := dryRunDB(t)
	post := &models.Post{AuthorID: "ana", Title: "hello", Content: "body"}

	_, err := createLocked(db, QuotaPosts, "ana", time.Now(), 0, post)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	stmts := rec.all()
	require.Len(t, stmts, 2, "lock and count only")
	for _, s := range stmts {
		assert.NotContains(t, s, "INSERT")
	}
}

func TestCreateLocked_UnknownKind(t *testing.T) {
	db, rec := dryRunDB(t)

	_, err := createLocked(db, QuotaKind("badges"), "ana", time.Now(), 5, &models.Post{})
	assert.ErrorContains(t, err, `unknown quota kind "badges"`)
	for _, s := range rec.all() {
		assert.NotContains(t, s, "INSERT")
	}
}

func TestFriendRequest_OpenPairIndexIsPartialUnique(t *testing.T) {
	s, err := schema.Parse(&models.FriendRequest{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	var found bool
	for _, idx := range s.ParseIndexes() {
		if idx.Name != "idx_friend_pair_open" {
			continue
		}
		found = true
		assert.Equal(t, "UNIQUE", idx.Class)
		assert.Equal(t, "status <> 'rejected'", idx.Where, "rejected requests do not hold the pair")

		var cols []string
		for _, f := range idx.Fields {
			cols = append(cols, f.DBName)
		}
		assert.ElementsMatch(t, []string{"pair_low", "pair_high"}, cols)
	}
	assert.True(t, found, "idx_friend_pair_open is declared")
}

func TestGetPosts_RanksBeforePaging(t *testing.T) {
	tests := []struct {
		order PostOrder
		rank  string
	}{
		{PostOrderLikes, "ORDER BY (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) DESC,posts.created_at DESC"},
		{PostOrderComments, "ORDER BY (SELECT COUNT(*) FROM post_comments WHERE post_comments.post_id = posts.id) DESC,posts.created_at DESC"},
		{PostOrderRecent, "ORDER BY posts.created_at DESC,posts.id DESC"},
		{PostOrder("bogus"), "ORDER BY posts.created_at DESC,posts.id DESC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			db, rec := dryRunDB(t)
			_, err := NewPostgresPostRepository(db).GetPosts(context.Background(), "go", tt.order, 2, 2)
			require.NoError(t, err)

			stmts := rec.all()
			require.Len(t, stmts, 1)
			sql := stmts[0]
			assert.Contains(t, sql, "posts.tags ILIKE '%go%'")
			assert.Contains(t, sql, tt.rank)
			assert.Contains(t, sql, "LIMIT 2 OFFSET 2")
			assert.Less(t, strings.Index(sql, "ORDER BY"), strings.Index(sql, "LIMIT"))
		})
	}
}
