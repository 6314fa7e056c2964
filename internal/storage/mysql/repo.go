package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"placereview/internal/domain"
)

// MySQL server error for a unique key violation.
const erDupEntry = 1062

type placeRow struct {
	ID         int64     `db:"id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	Address    string    `db:"address"`
	Category   *string   `db:"category"`
	Lat        float64   `db:"latitude"`
	Lon        float64   `db:"longitude"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type placeCountRow struct {
	ID          int64   `db:"id"`
	ExternalID  string  `db:"external_id"`
	Name        string  `db:"name"`
	Address     string  `db:"address"`
	Category    *string `db:"category"`
	Lat         float64 `db:"latitude"`
	Lon         float64 `db:"longitude"`
	ReviewCount int     `db:"review_count"`
}

type reviewRow struct {
	ID        int64     `db:"id"`
	PlaceID   int64     `db:"place_id"`
	Nickname  string    `db:"nickname"`
	Rating    float64   `db:"rating"`
	Text      *string   `db:"review_text"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Repo implements domain.PlaceRepository and domain.ReviewRepository.
type Repo struct{ db *sqlx.DB }

func New(db *sqlx.DB) *Repo { return &Repo{db: db} }

// Open connects with the mysql driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (r *Repo) InsertPlace(ctx context.Context, p domain.PlaceCandidate) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertPlaceSQL,
		p.ExternalID,
		p.Name,
		p.Address,
		p.Category,
		p.Lat,
		p.Lon,
	)
	if err != nil {
		if isDuplicate(err) {
			return 0, domain.ErrDuplicate
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) FindPlaceIDByExternalID(ctx context.Context, externalID string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, findPlaceIDSQL, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *Repo) GetPlace(ctx context.Context, id int64) (domain.Place, error) {
	var row placeRow
	if err := r.db.GetContext(ctx, &row, getPlaceSQL, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}
	return domain.Place{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
		Address:    row.Address,
		Category:   row.Category,
		Lat:        row.Lat,
		Lon:        row.Lon,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (r *Repo) ListPlacesWithReviewCounts(ctx context.Context) ([]domain.PlaceSummary, error) {
	var rows []placeCountRow
	if err := r.db.SelectContext(ctx, &rows, listPlacesWithCountsSQL); err != nil {
		return nil, err
	}
	out := make([]domain.PlaceSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.PlaceSummary{
			ID:          row.ID,
			ExternalID:  row.ExternalID,
			Name:        row.Name,
			Address:     row.Address,
			Latitude:    row.Lat,
			Longitude:   row.Lon,
			Category:    row.Category,
			ReviewCount: row.ReviewCount,
		})
	}
	return out, nil
}

func (r *Repo) InsertReview(ctx context.Context, rv domain.Review) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.PlaceID,
		rv.Nickname,
		rv.CredentialDigest,
		rv.Rating,
		rv.Text,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListRatings(ctx context.Context, placeID int64) ([]float64, error) {
	var out []float64
	if err := r.db.SelectContext(ctx, &out, listRatingsSQL, placeID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListReviews(ctx context.Context, placeID int64) ([]domain.ReviewView, error) {
	var rows []reviewRow
	if err := r.db.SelectContext(ctx, &rows, listReviewsSQL, placeID); err != nil {
		return nil, err
	}
	out := make([]domain.ReviewView, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ReviewView{
			ID:        row.ID,
			PlaceID:   row.PlaceID,
			Nickname:  row.Nickname,
			Rating:    row.Rating,
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return out, nil
}

func isDuplicate(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == erDupEntry
}
