package apifootball

// Wire types for the api-sports v3 football API. Only the fields the worker
// reads are declared.

// Fixture is one entry of a /fixtures response.
type Fixture struct {
	Fixture FixtureInfo `json:"fixture"`
	League  League      `json:"league"`
	Teams   Teams       `json:"teams"`
	Goals   Goals       `json:"goals"`
}

// FixtureInfo carries the fixture id, clock, and status.
type FixtureInfo struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Status Status `json:"status"`
}

// Status is the API's match status block. Elapsed is nil before kickoff.
type Status struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

// League identifies the competition a fixture belongs to.
type League struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Teams names the two sides of a fixture.
type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

// Team is one side of a fixture.
type Team struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Goals is the current scoreline. Values are nil until the match has started.
type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// fixturesResponse is the envelope of every /fixtures call.
type fixturesResponse struct {
	Results  int       `json:"results"`
	Response []Fixture `json:"response"`
}
