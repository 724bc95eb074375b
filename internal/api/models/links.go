package models

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/tashuroute/tashuroute/internal/geo"
)

// MapLinks are deep links into third-party map apps.
type MapLinks struct {
	KakaoMap  string `json:"kakaoMap"`
	NaverMap  string `json:"naverMap"`
	GoogleMap string `json:"googleMap,omitempty"`
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StationLinks returns walking-directions links to a named point.
func StationLinks(name string, p geo.Coordinates) MapLinks {
	escaped := url.PathEscape(name)
	return MapLinks{
		KakaoMap: fmt.Sprintf("https://map.kakao.com/link/to/%s,%s,%s", escaped, coord(p.Lat), coord(p.Lon)),
		NaverMap: fmt.Sprintf("https://map.naver.com/index.nhn?elng=%s&elat=%s&etext=%s&menu=route&pathType=1",
			coord(p.Lon), coord(p.Lat), escaped),
	}
}

// DirectionLinks returns cycling directions between two named points.
func DirectionLinks(fromName string, from geo.Coordinates, toName string, to geo.Coordinates) MapLinks {
	q := url.Values{}
	q.Set("sName", fromName)
	q.Set("eName", toName)
	q.Set("sp", coord(from.Lat)+","+coord(from.Lon))
	q.Set("ep", coord(to.Lat)+","+coord(to.Lon))

	return MapLinks{
		KakaoMap: "https://map.kakao.com/?" + q.Encode(),
		NaverMap: fmt.Sprintf("https://map.naver.com/p/directions/%s,%s,%s/%s,%s,%s/-/bicycle",
			coord(from.Lon), coord(from.Lat), url.PathEscape(fromName),
			coord(to.Lon), coord(to.Lat), url.PathEscape(toName)),
		GoogleMap: fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%s,%s&destination=%s,%s&travelmode=bicycling",
			coord(from.Lat), coord(from.Lon), coord(to.Lat), coord(to.Lon)),
	}
}
