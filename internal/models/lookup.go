package models

// VALookupResult is one record returned by a VA registry.
type VALookupResult struct {
	Source       VASource       `json:"source"`
	Name         string         `json:"name"`
	Branch       string         `json:"branch,omitempty"`
	Rank         string         `json:"rank,omitempty"`
	BirthDate    string         `json:"birthDate,omitempty"`
	DeathDate    string         `json:"deathDate,omitempty"`
	Cemetery     string         `json:"cemetery,omitempty"`
	Location     string         `json:"location,omitempty"`
	ServiceDates string         `json:"serviceDates,omitempty"`
	Awards       []string       `json:"awards,omitempty"`
	Metadata     map[string]any `json:"metadata"`
}

// VALookupResponse is the result of searching a single registry.
type VALookupResponse struct {
	Query        string           `json:"query"`
	Source       VASource         `json:"source,omitempty"`
	TotalResults int              `json:"totalResults"`
	Results      []VALookupResult `json:"results"`
	Cached       bool             `json:"cached"`
}

// VAAggregateResponse merges every registry under one total.
type VAAggregateResponse struct {
	Query        string                        `json:"query"`
	TotalResults int                           `json:"totalResults"`
	Sources      map[VASource]VALookupResponse `json:"sources"`
}

// LookupQuery carries the filters accepted by the lookup endpoints.
type LookupQuery struct {
	FirstName string
	LastName  string
	State     string
	Branch    MilitaryBranch
}

// Text is the human query string, "first last" trimmed.
func (q LookupQuery) Text() string {
	switch {
	case q.FirstName != "" && q.LastName != "":
		return q.FirstName + " " + q.LastName
	case q.FirstName != "":
		return q.FirstName
	default:
		return q.LastName
	}
}

// Empty reports whether neither name was given.
func (q LookupQuery) Empty() bool {
	return q.FirstName == "" && q.LastName == ""
}
