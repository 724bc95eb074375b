package tashu

import "github.com/tashuroute/tashuroute/internal/station"

// DemoStations returns the fixed demo feed served when no API key is
// configured. Counts are static.
func DemoStations() []station.Station {
	return []station.Station{
		{ID: "TASHU001", Name: "대전역 1번 출구", Address: "대전광역시 동구 중앙로 215", Lat: 36.3293, Lon: 127.4245, ParkingCount: 12},
		{ID: "TASHU002", Name: "충남대학교", Address: "대전광역시 유성구 대학로 99", Lat: 36.3686, Lon: 127.3450, ParkingCount: 8},
		{ID: "TASHU003", Name: "대전시청", Address: "대전광역시 서구 한밭대로 480", Lat: 36.3504, Lon: 127.3847, ParkingCount: 15},
		{ID: "TASHU004", Name: "대전과학관", Address: "대전광역시 유성구 어은로 124", Lat: 36.3866, Lon: 127.3145, ParkingCount: 10},
		{ID: "TASHU005", Name: "카이스트", Address: "대전광역시 유성구 과학로 291", Lat: 36.3742, Lon: 127.3606, ParkingCount: 9},
		{ID: "TASHU006", Name: "대전시민공원", Address: "대전광역시 중구 시민로 204", Lat: 36.3080, Lon: 127.4126, ParkingCount: 7},
		{ID: "TASHU007", Name: "홈플러스 신안점", Address: "대전광역시 동구 동부로 184", Lat: 36.3249, Lon: 127.4073, ParkingCount: 11},
		{ID: "TASHU008", Name: "대전선 월평역", Address: "대전광역시 서구 월평로 10", Lat: 36.3446, Lon: 127.3948, ParkingCount: 6},
	}
}
