package application

// Result is the outcome of one attendance.
type Result string

const (
	// ResultSuccess marks an escaped or solved attendance.
	ResultSuccess Result = "success"
	// ResultFailure marks an attendance that ran out of time.
	ResultFailure Result = "failure"
)

// Valid reports whether r is one of the two known outcomes.
func (r Result) Valid() bool {
	return r == ResultSuccess || r == ResultFailure
}

const (
	MinScore     = 1
	MaxScore     = 5
	DefaultScore = 3
)

// ClampScore limits a rating to [MinScore, MaxScore].
func ClampScore(score int) int {
	switch {
	case score < MinScore:
		return MinScore
	case score > MaxScore:
		return MaxScore
	default:
		return score
	}
}

// normalizeScore treats 0 as an omitted rating, the same rule the persisted
// blob decoder applies, and clamps everything else.
func normalizeScore(score int) int {
	if score == 0 {
		return DefaultScore
	}
	return ClampScore(score)
}

// SubScores is the five-facet rating shown on the radar chart.
type SubScores struct {
	Puzzle       int `json:"puzzle"`
	Experience   int `json:"experience"`
	Quantity     int `json:"quantity"`
	Mystery      int `json:"mystery"`
	Cheerfulness int `json:"cheerfulness"`
}

// DefaultSubScores returns every facet at DefaultScore.
func DefaultSubScores() SubScores {
	return SubScores{
		Puzzle:       DefaultScore,
		Experience:   DefaultScore,
		Quantity:     DefaultScore,
		Mystery:      DefaultScore,
		Cheerfulness: DefaultScore,
	}
}

// Vector returns the facets in radar axis order.
func (s SubScores) Vector() []int {
	return []int{s.Puzzle, s.Experience, s.Quantity, s.Mystery, s.Cheerfulness}
}

func (s SubScores) normalized() SubScores {
	return SubScores{
		Puzzle:       normalizeScore(s.Puzzle),
		Experience:   normalizeScore(s.Experience),
		Quantity:     normalizeScore(s.Quantity),
		Mystery:      normalizeScore(s.Mystery),
		Cheerfulness: normalizeScore(s.Cheerfulness),
	}
}

// RecordInput carries every record field except the id.
type RecordInput struct {
	EventID string `json:"eventId,omitempty"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Result  Result `json:"result"`
	Score   int    `json:"score"`
	Memo    string `json:"memo"`
	SubScores
}

// Record is one user-authored attendance log entry.
type Record struct {
	ID      string `json:"id"`
	EventID string `json:"eventId,omitempty"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Result  Result `json:"result"`
	Score   int    `json:"score"`
	Memo    string `json:"memo"`
	SubScores
}

// Input strips the id from r.
func (r Record) Input() RecordInput {
	return RecordInput{
		EventID:   r.EventID,
		Title:     r.Title,
		Date:      r.Date,
		Result:    r.Result,
		Score:     r.Score,
		Memo:      r.Memo,
		SubScores: r.SubScores,
	}
}

func recordFromInput(id string, in RecordInput) Record {
	return Record{
		ID:        id,
		EventID:   in.EventID,
		Title:     in.Title,
		Date:      in.Date,
		Result:    in.Result,
		Score:     in.Score,
		Memo:      in.Memo,
		SubScores: in.SubScores,
	}
}

// FormMode tells whether a form submission creates or replaces a record.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormValues are the user-editable fields of the record form.
type FormValues struct {
	Title  string `json:"title" validate:"required"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Result Result `json:"result" validate:"required,oneof=success failure"`
	Score  int    `json:"score"`
	Memo   string `json:"memo"`
	SubScores
}

// FormState is the pre-filled form handed to the client. EditingID is set
// only in edit mode and EventID only when the form is scoped to an event.
type FormState struct {
	Mode        FormMode   `json:"mode"`
	EditingID   string     `json:"editingId,omitempty"`
	EventID     string     `json:"eventId,omitempty"`
	SubmitLabel string     `json:"submitLabel"`
	Values      FormValues `json:"values"`
}

// ActionKind identifies the record button shown on an event detail view.
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionEdit   ActionKind = "edit"
	ActionClosed ActionKind = "closed"
)

// Action is the record affordance of a view.
type Action struct {
	Kind    ActionKind `json:"kind"`
	Label   string     `json:"label"`
	Color   string     `json:"color,omitempty"`
	Enabled bool       `json:"enabled"`
	FormURL string     `json:"formUrl,omitempty"`
}
