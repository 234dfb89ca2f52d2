package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

const maxFacilityResults = 3

var facilityToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"latitude": {"type": "number", "description": "Patient latitude"},
		"longitude": {"type": "number", "description": "Patient longitude"},
		"city": {"type": "string", "description": "City name when coordinates are unknown"},
		"facility_type": {"type": "string", "enum": ["hospital", "clinic", "pharmacy"], "description": "Kind of facility to look for"}
	}
}`)

type Facility struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	City     string  `json:"city"`
	Address  string  `json:"address"`
	Phone    string  `json:"phone"`
	Open24h  bool    `json:"open_24h"`
	Lat      float64 `json:"latitude"`
	Lon      float64 `json:"longitude"`
	Distance float64 `json:"distance_km,omitempty"`
}

// Seed directory used until a real facility provider is connected.
// TODO: replace with the government facility registry feed once access
// is granted.
var facilityDirectory = []Facility{
	{Name: "District Government Hospital", Type: "hospital", City: "Lucknow", Address: "Hazratganj, Lucknow", Phone: "+91-522-2620000", Open24h: true, Lat: 26.8467, Lon: 80.9462},
	{Name: "Sanjeevani Multi-speciality Clinic", Type: "clinic", City: "Lucknow", Address: "Gomti Nagar, Lucknow", Phone: "+91-522-4005500", Open24h: false, Lat: 26.8625, Lon: 81.0089},
	{Name: "City Care Pharmacy", Type: "pharmacy", City: "Lucknow", Address: "Aminabad, Lucknow", Phone: "+91-522-2614477", Open24h: true, Lat: 26.8485, Lon: 80.9320},
	{Name: "Apex Emergency Hospital", Type: "hospital", City: "Kanpur", Address: "Mall Road, Kanpur", Phone: "+91-512-2305000", Open24h: true, Lat: 26.4499, Lon: 80.3319},
	{Name: "Arogya Primary Health Centre", Type: "clinic", City: "Kanpur", Address: "Kidwai Nagar, Kanpur", Phone: "+91-512-2601212", Open24h: false, Lat: 26.4240, Lon: 80.3318},
	{Name: "Jeevan Medical Store", Type: "pharmacy", City: "Kanpur", Address: "Swaroop Nagar, Kanpur", Phone: "+91-512-2551100", Open24h: false, Lat: 26.4795, Lon: 80.3170},
}

type facilityInput struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	City         string  `json:"city"`
	FacilityType string  `json:"facility_type"`
}

type facilityOutput struct {
	Found      bool       `json:"found"`
	Facilities []Facility `json:"facilities"`
}

type facilityTool struct {
	directory []Facility
}

func newFacilityTool() *facilityTool {
	return &facilityTool{directory: facilityDirectory}
}

func (t *facilityTool) Name() string {
	return "find_facilities"
}

func (t *facilityTool) Description() string {
	return "Find nearby healthcare facilities (hospitals, clinics, pharmacies). Input is a JSON object with optional latitude/longitude or city, and an optional facility_type filter."
}

func (t *facilityTool) Call(_ context.Context, input string) (string, error) {
	var req facilityInput
	if input != "" {
		if err := json.Unmarshal([]byte(input), &req); err != nil {
			return "", fmt.Errorf("invalid facility query JSON: %w", err)
		}
	}

	matches := make([]Facility, 0, len(t.directory))

	for _, f := range t.directory {
		if req.FacilityType != "" && f.Type != req.FacilityType {
			continue
		}
		if req.City != "" && !strings.EqualFold(f.City, req.City) {
			continue
		}

		if req.Latitude != 0 || req.Longitude != 0 {
			f.Distance = haversineKm(req.Latitude, req.Longitude, f.Lat, f.Lon)
		}

		matches = append(matches, f)
	}

	if req.Latitude != 0 || req.Longitude != 0 {
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].Distance < matches[j].Distance
		})
	}

	if len(matches) > maxFacilityResults {
		matches = matches[:maxFacilityResults]
	}

	out, err := json.Marshal(facilityOutput{
		Found:      len(matches) > 0,
		Facilities: matches,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal facilities: %w", err)
	}

	return string(out), nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
