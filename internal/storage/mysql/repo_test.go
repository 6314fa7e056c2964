package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placereview/internal/domain"
	mysqlrepo "placereview/internal/storage/mysql"
)

func newMockRepo(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return mysqlrepo.New(sqlx.NewDb(db, "mysql")), mock
}

func pstr(s string) *string { return &s }

func TestInsertPlace_ReturnsNewID(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO places").
		WithArgs("1234", "Cafe Seoul", "Seoul Jung-gu 1", "카페", 37.5, 127.0).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.InsertPlace(context.Background(), domain.PlaceCandidate{
		ExternalID: "1234", Name: "Cafe Seoul", Address: "Seoul Jung-gu 1",
		Category: pstr("카페"), Lat: 37.5, Lon: 127.0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertPlace_DuplicateKeyIsClassified(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO places").
		WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry '1234' for key 'uq_places_external_id'"})

	_, err := repo.InsertPlace(context.Background(), domain.PlaceCandidate{ExternalID: "1234", Name: "n", Address: "a", Lat: 1, Lon: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestInsertPlace_OtherErrorPassesThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO places").WillReturnError(boom)

	_, err := repo.InsertPlace(context.Background(), domain.PlaceCandidate{ExternalID: "1", Name: "n", Address: "a", Lat: 1, Lon: 1})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
}

func TestFindPlaceIDByExternalID(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT id FROM places WHERE external_id").
		WithArgs("1234").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT id FROM places WHERE external_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FindPlaceIDByExternalID(context.Background(), "1234")
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	_, err = repo.FindPlaceIDByExternalID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPlace_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM places").WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "address", "category", "latitude", "longitude", "created_at", "updated_at"}))

	_, err := repo.GetPlace(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetPlace_NullCategory(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("FROM places").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "address", "category", "latitude", "longitude", "created_at", "updated_at"}).
			AddRow(int64(1), "1234", "Cafe", "Seoul", nil, 37.5, 127.0, now, now))

	p, err := repo.GetPlace(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, p.Category)
	assert.Equal(t, 37.5, p.Lat)
	assert.Equal(t, 127.0, p.Lon)
}

func TestListRatings_DecimalColumn(t *testing.T) {
	repo, mock := newMockRepo(t)
	// DECIMAL arrives as text from the driver
	mock.ExpectQuery("SELECT rating FROM reviews").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow("4.0").AddRow("5.0"))

	rs, err := repo.ListRatings(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4.0, 5.0}, rs)
}

func TestListReviews_NeverSelectsDigest(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, place_id, nickname, rating, review_text, created_at, updated_at\s+FROM reviews`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "place_id", "nickname", "rating", "review_text", "created_at", "updated_at"}).
			AddRow(int64(2), int64(1), "bob", "3.5", nil, now, now).
			AddRow(int64(1), int64(1), "ana", "5.0", "great", now.Add(-time.Hour), now.Add(-time.Hour)))

	rs, err := repo.ListReviews(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "bob", rs[0].Nickname)
	assert.Nil(t, rs[0].Text)
	require.NotNil(t, rs[1].Text)
	assert.Equal(t, "great", *rs[1].Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPlacesWithReviewCounts(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("LEFT JOIN reviews").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "address", "category", "latitude", "longitude", "review_count"}).
			AddRow(int64(1), "1234", "Cafe", "Seoul", "카페", 37.5, 127.0, 2).
			AddRow(int64(2), "5678", "Bar", "Busan", nil, 35.1, 129.0, 0))

	ps, err := repo.ListPlacesWithReviewCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, 2, ps[0].ReviewCount)
	assert.Equal(t, 0, ps[1].ReviewCount)
	assert.Nil(t, ps[1].Category)
}

func TestInsertReview(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(int64(1), "ana", "$2a$10$digest", 4.5, nil).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.InsertReview(context.Background(), domain.Review{
		PlaceID: 1, Nickname: "ana", CredentialDigest: "$2a$10$digest", Rating: 4.5,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
