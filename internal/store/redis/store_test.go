package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/vendry-cloud/vendry/internal/domain/geo"
	"github.com/vendry-cloud/vendry/internal/domain/vendor"
	"github.com/vendry-cloud/vendry/internal/store"
)

func testRecord(t *testing.T) vendor.Record {
	t.Helper()
	p, err := geo.NewPoint(37.7749, -122.4194)
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	rec, err := vendor.New("v1", p, []string{"plumbing", "heating"}, 4.5, 12,
		[]string{"licensed"}, 85, true, time.UnixMilli(1700000000000).UTC())
	if err != nil {
		t.Fatalf("vendor.New: %v", err)
	}
	return rec
}

func vendorHash() map[string]rueidis.RedisMessage {
	return map[string]rueidis.RedisMessage{
		fieldLat:        mock.RedisString("37.7749"),
		fieldLng:        mock.RedisString("-122.4194"),
		fieldCategories: mock.RedisString("plumbing,heating"),
		fieldRating:     mock.RedisString("4.5"),
		fieldReviews:    mock.RedisString("12"),
		fieldTags:       mock.RedisString("licensed"),
		fieldRate:       mock.RedisString("85"),
		fieldOnline:     mock.RedisString("1"),
		fieldUpdated:    mock.RedisString("1700000000000"),
	}
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(9)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	if err := s.Upsert(context.Background(), testRecord(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_GeoAddError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(9)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), testRecord(t))
	if err == nil {
		t.Fatal("expected error")
	}
	var se *store.Error
	if !errors.As(err, &se) || se.Op != store.OpGeoAdd {
		t.Errorf("want store.Error with op GEOADD, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "vendry:vendor:v1")).
		Return(mock.Result(mock.RedisMap(vendorHash())))

	s := NewStoreForTest(c)
	rec, err := s.Get(context.Background(), "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "v1" {
		t.Errorf("want v1, got %s", rec.ID())
	}
	if rec.Rating() != 4.5 {
		t.Errorf("want rating 4.5, got %f", rec.Rating())
	}
	if len(rec.Categories()) != 2 {
		t.Errorf("want 2 categories, got %v", rec.Categories())
	}
	if !rec.Online() {
		t.Error("want online=true")
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "vendry:vendor:missing")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "vendry:vendor:v1")).
		Return(mock.Result(mock.RedisInt64(1)))
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(1)),
		})

	s := NewStoreForTest(c)
	if err := s.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "vendry:vendor:v1")).
		Return(mock.Result(mock.RedisInt64(0)))

	s := NewStoreForTest(c)
	if err := s.Delete(context.Background(), "v1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("ZCARD", "vendry:geo")).
		Return(mock.Result(mock.RedisInt64(7)))

	s := NewStoreForTest(c)
	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Errorf("want 7, got %d", n)
	}
}

func TestFetchInBox_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "GEOSEARCH" && cmd[1] == "vendry:geo"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisString("v1"))))
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(vendorHash())),
		})

	s := NewStoreForTest(c)
	box := geo.Box{MinLat: 37.7, MaxLat: 37.9, MinLng: -122.5, MaxLng: -122.3}
	recs, err := s.FetchInBox(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "v1" {
		t.Fatalf("want [v1], got %d records", len(recs))
	}
}

func TestFetchInBox_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "GEOSEARCH"
		})).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	box := geo.Box{MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 1}
	recs, err := s.FetchInBox(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("want no records, got %d", len(recs))
	}
}

func TestFetchInBox_SkipsOrphanedGeoEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "GEOSEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString("v1"), mock.RedisString("ghost"),
		)))
	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisMap(vendorHash())),
			mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})),
		})

	s := NewStoreForTest(c)
	box := geo.Box{MinLat: 37.7, MaxLat: 37.9, MinLng: -122.5, MaxLng: -122.3}
	recs, err := s.FetchInBox(context.Background(), box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != "v1" {
		t.Fatalf("want only v1, got %d records", len(recs))
	}
}

func TestVendorFields_Roundtrip(t *testing.T) {
	rec := testRecord(t)
	fields := vendorToFields(rec)

	m := make(map[string]string, len(fields))
	for _, fv := range fields {
		m[fv[0]] = fv[1]
	}

	got, err := vendorFromFields(rec.ID(), m)
	if err != nil {
		t.Fatalf("vendorFromFields: %v", err)
	}
	if got.ID() != rec.ID() || got.Rating() != rec.Rating() ||
		got.ReviewCount() != rec.ReviewCount() || got.Online() != rec.Online() {
		t.Errorf("roundtrip mismatch: %+v vs %+v", got, rec)
	}
	if !got.UpdatedAt().Equal(rec.UpdatedAt()) {
		t.Errorf("updatedAt mismatch: %v vs %v", got.UpdatedAt(), rec.UpdatedAt())
	}
	if got.Location().Lat() != rec.Location().Lat() {
		t.Errorf("lat mismatch: %f vs %f", got.Location().Lat(), rec.Location().Lat())
	}
}
