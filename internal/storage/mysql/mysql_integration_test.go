//go:build integration

package mysql_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placereview/internal/app"
	"placereview/internal/domain"
	mysqlrepo "placereview/internal/storage/mysql"
)

func startMySQL(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "dockertest")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=placereview",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "run mysql")
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/placereview?parseTime=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sqlx.DB
	require.NoError(t, pool.Retry(func() error {
		var e error
		db, e = mysqlrepo.Open(context.Background(), dsn)
		return e
	}), "connect mysql")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, mysqlrepo.Migrate(db.DB))
	// second run is a no-op
	require.NoError(t, mysqlrepo.Migrate(db.DB))
	return db
}

func TestRepo_MySQL_ConcurrentUpsertAndReviews(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	up := app.NewPlaceUpserter(repo)
	cand := domain.PlaceCandidate{
		ExternalID: "1234567", Name: "Cafe Seoul", Address: "Seoul Jung-gu 1",
		Category: pstr("카페"), Lat: 37.5665, Lon: 126.978,
	}

	const n = 8
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, f := up.Upsert(ctx, cand).Unwrap()
			if f == nil {
				ids[i] = id
			}
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	require.NotZero(t, ids[0])

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM places WHERE external_id = ?`, cand.ExternalID))
	assert.Equal(t, 1, count)

	_, err := repo.InsertReview(ctx, domain.Review{PlaceID: ids[0], Nickname: "ana", CredentialDigest: "$2a$10$x", Rating: 5})
	require.NoError(t, err)
	_, err = repo.InsertReview(ctx, domain.Review{PlaceID: ids[0], Nickname: "bob", CredentialDigest: "$2a$10$y", Rating: 4, Text: pstr("good")})
	require.NoError(t, err)

	ratings, err := repo.ListRatings(ctx, ids[0])
	require.NoError(t, err)
	assert.ElementsMatch(t, []float64{5, 4}, ratings)

	reviews, err := repo.ListReviews(ctx, ids[0])
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "bob", reviews[0].Nickname)

	places, err := repo.ListPlacesWithReviewCounts(ctx)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, 2, places[0].ReviewCount)

	_, err = repo.GetPlace(ctx, ids[0]+1000)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepo_MySQL_RatingCheckConstraint(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	id, err := repo.InsertPlace(ctx, domain.PlaceCandidate{ExternalID: "9", Name: "n", Address: "a", Lat: 1, Lon: 1})
	require.NoError(t, err)

	_, err = repo.InsertReview(ctx, domain.Review{PlaceID: id, Nickname: "x", CredentialDigest: "d", Rating: 2.3})
	assert.Error(t, err)
}

func TestRepo_MySQL_ExternalIDIsCaseSensitive(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()
	up := app.NewPlaceUpserter(repo)

	lower, f := up.Upsert(ctx, domain.PlaceCandidate{ExternalID: "h_ab12", Name: "a", Address: "a", Lat: 1, Lon: 1}).Unwrap()
	require.Nil(t, f)
	upper, f := up.Upsert(ctx, domain.PlaceCandidate{ExternalID: "H_AB12", Name: "b", Address: "b", Lat: 2, Lon: 2}).Unwrap()
	require.Nil(t, f)
	assert.NotEqual(t, lower, upper)

	id, err := repo.FindPlaceIDByExternalID(ctx, "H_AB12")
	require.NoError(t, err)
	assert.Equal(t, upper, id)

	_, err = repo.FindPlaceIDByExternalID(ctx, "h_AB12")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
