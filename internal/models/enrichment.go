package models

// Enrichment holds optional fields merged onto a catalog record by slug from enrichment overlays.
// Every field is optional; an absent field leaves the record untouched.
type Enrichment struct {
	Rating          *float64      `json:"rating,omitempty" validate:"omitempty,finite,gte=0,lte=10"`
	Coordinates     *Coordinates  `json:"coordinates,omitempty"`
	Nearby          []POI         `json:"nearby,omitempty" validate:"dive"`
	Photos          []string      `json:"photos,omitempty" validate:"dive,url"`
	Contacts        *Contacts     `json:"contacts,omitempty"`
	Awards          []string      `json:"awards,omitempty" validate:"dive,required"`
	OpeningYear     *int          `json:"openingYear,omitempty" validate:"omitempty,gte=1800,lte=2100"`
	Rooms           *int          `json:"rooms,omitempty" validate:"omitempty,gt=0"`
	ReviewsPositive []string      `json:"reviewsPositive,omitempty" validate:"dive,required"`
	ReviewsNegative []string      `json:"reviewsNegative,omitempty" validate:"dive,required"`
	BookingLinks    []BookingLink `json:"bookingLinks,omitempty" validate:"dive"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat" validate:"finite,gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"finite,gte=-180,lte=180"`
}

// POI is a point of interest near a project. DistanceM is filled in when both positions are known.
type POI struct {
	Name        string       `json:"name" validate:"required"`
	Kind        string       `json:"kind,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	DistanceM   *float64     `json:"distanceM,omitempty" validate:"omitempty,finite,gte=0"`
}

// Contacts of the project operator or sales office.
type Contacts struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Website string `json:"website,omitempty" validate:"omitempty,url"`
	Address string `json:"address,omitempty"`
}

// BookingLink points at an external booking platform.
type BookingLink struct {
	Provider string `json:"provider" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

// Merge copies every non-empty field of other onto e. Later overlays win per field.
func (e *Enrichment) Merge(other *Enrichment) {
	if other == nil {
		return
	}
	if other.Rating != nil {
		e.Rating = other.Rating
	}
	if other.Coordinates != nil {
		e.Coordinates = other.Coordinates
	}
	if len(other.Nearby) > 0 {
		e.Nearby = other.Nearby
	}
	if len(other.Photos) > 0 {
		e.Photos = other.Photos
	}
	if other.Contacts != nil {
		e.Contacts = other.Contacts
	}
	if len(other.Awards) > 0 {
		e.Awards = other.Awards
	}
	if other.OpeningYear != nil {
		e.OpeningYear = other.OpeningYear
	}
	if other.Rooms != nil {
		e.Rooms = other.Rooms
	}
	if len(other.ReviewsPositive) > 0 {
		e.ReviewsPositive = other.ReviewsPositive
	}
	if len(other.ReviewsNegative) > 0 {
		e.ReviewsNegative = other.ReviewsNegative
	}
	if len(other.BookingLinks) > 0 {
		e.BookingLinks = other.BookingLinks
	}
}
