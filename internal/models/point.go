package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// EntityProfile holds the free-text contact fields of a collection point.
type EntityProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"whatsapp"`
}

type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RegionSelection is the two-level administrative selection. StateCode is the
// federative unit (uf) and CityName one of the cities listed for it.
type RegionSelection struct {
	StateCode string `json:"uf"`
	CityName  string `json:"city"`
}

type CatalogEntry struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// ImageAsset is the single optional photo of the point.
type ImageAsset struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"-"`
}

// CreationRequest is the point-in-time aggregate sent to the creation service.
// Items is kept in ascending order.
type CreationRequest struct {
	Profile    EntityProfile   `json:"profile"`
	Region     RegionSelection `json:"region"`
	Coordinate GeoCoordinate   `json:"coordinate"`
	Items      []int           `json:"items"`
	Image      *ImageAsset     `json:"image,omitempty"`
}

// ItemsField renders Items the way the creation service expects them: a
// comma-joined, ascending, duplicate-free id list.
func (r *CreationRequest) ItemsField() string {
	ids := append([]int(nil), r.Items...)
	sort.Ints(ids)

	parts := make([]string, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// Point is the record returned by the creation service.
type Point struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Whatsapp  string    `json:"whatsapp"`
	UF        string    `json:"uf"`
	City      string    `json:"city"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Image     string    `json:"image,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Items     []int     `json:"items,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// WithState returns the selection for code. The city always belongs to the
// previous state, so it is cleared.
func (r RegionSelection) WithState(code string) RegionSelection {
	return RegionSelection{StateCode: code}
}
