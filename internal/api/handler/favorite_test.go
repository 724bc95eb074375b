package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tashuroute/tashuroute/internal/api/models"
	"github.com/tashuroute/tashuroute/internal/station"
)

func TestFavoriteHandler_Lifecycle(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(http.MethodPost, "/v1/me/favorites", `{"stationId":"TASHU003","nickname":"출근"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/v1/me/favorites/TASHU003", rec.Header().Get("Location"))
	fav := decode[models.Favorite](t, rec)
	assert.Equal(t, "출근", fav.DisplayName)
	assert.Equal(t, "TASHU003", fav.Station.ID)

	rec = f.do(http.MethodPost, "/v1/me/favorites", `{"stationId":"TASHU003","nickname":"다른 이름"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "출근", decode[models.Favorite](t, rec).DisplayName)

	rec = f.do(http.MethodPost, "/v1/me/favorites", `{"stationId":"TASHU001"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/v1/me/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[models.FavoriteList](t, rec)
	require.Len(t, list.Favorites, 2)
	assert.Equal(t, "TASHU003", list.Favorites[0].Station.ID)
	assert.Equal(t, "대전역 1번 출구", list.Favorites[1].DisplayName)

	rec = f.do(http.MethodPatch, "/v1/me/favorites/TASHU001", `{"nickname":"역"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "역", decode[models.Favorite](t, rec).DisplayName)

	rec = f.do(http.MethodGet, "/v1/me/favorites/TASHU001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	membership := decode[models.FavoriteMembership](t, rec)
	assert.True(t, membership.Saved)
	require.NotNil(t, membership.Favorite)

	rec = f.do(http.MethodDelete, "/v1/me/favorites/TASHU001", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/v1/me/favorites/TASHU001", "")
	membership = decode[models.FavoriteMembership](t, rec)
	assert.False(t, membership.Saved)
	assert.Nil(t, membership.Favorite)

	rec = f.do(http.MethodDelete, "/v1/me/favorites", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/v1/me/favorites", "")
	assert.Empty(t, decode[models.FavoriteList](t, rec).Favorites)
}

// fixedProvider serves the given records as its feed.
type fixedProvider struct {
	records []station.RawRecord
}

func (p *fixedProvider) Name() string { return "fixed" }

func (p *fixedProvider) FetchFeed(_ context.Context) (*station.Feed, error) {
	return &station.Feed{Records: p.records, Provider: "fixed", FetchedAt: time.Now()}, nil
}

func TestFavoriteHandler_EscapesStationIDs(t *testing.T) {
	const id = "ST 7/B"
	f := newFixture(t, &fixedProvider{records: station.Records([]station.Station{
		{ID: id, Name: "Dunsan", Address: "Dunsan-ro", Lat: 36.3515, Lon: 127.3789, ParkingCount: 2},
	})}, nil)

	rec := f.do(http.MethodPost, "/v1/me/favorites", `{"stationId":"ST 7/B"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	location := rec.Header().Get("Location")
	assert.Equal(t, "/v1/me/favorites/ST%207%2FB", location)

	rec = f.do(http.MethodGet, location, "")
	require.Equal(t, http.StatusOK, rec.Code)
	membership := decode[models.FavoriteMembership](t, rec)
	assert.True(t, membership.Saved)

	rec = f.do(http.MethodGet, "/v1/stations/ST%207%2FB", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, decode[models.Station](t, rec).ID)

	rec = f.do(http.MethodDelete, location, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, decode[models.FavoriteList](t, f.do(http.MethodGet, "/v1/me/favorites", "")).Favorites)
}

func TestFavoriteHandler_Errors(t *testing.T) {
	f := newFixture(t, nil, nil)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "unknown station", method: http.MethodPost, target: "/v1/me/favorites", body: `{"stationId":"TASHU999"}`, wantStatus: http.StatusNotFound},
		{name: "missing station id", method: http.MethodPost, target: "/v1/me/favorites", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "invalid json", method: http.MethodPost, target: "/v1/me/favorites", body: `[`, wantStatus: http.StatusBadRequest},
		{name: "nickname too long", method: http.MethodPost, target: "/v1/me/favorites", body: `{"stationId":"TASHU003","nickname":"` + longNickname() + `"}`, wantStatus: http.StatusBadRequest},
		{name: "remove missing", method: http.MethodDelete, target: "/v1/me/favorites/TASHU003", wantStatus: http.StatusNotFound},
		{name: "rename missing", method: http.MethodPatch, target: "/v1/me/favorites/TASHU003", body: `{"nickname":"x"}`, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func longNickname() string {
	b := make([]rune, models.MaxNicknameLength+1)
	for i := range b {
		b[i] = '가'
	}
	return string(b)
}
