package triage

type Severity string

const (
	SeverityEmergency Severity = "emergency"
	SeverityUrgent    Severity = "urgent"
	SeverityRoutine   Severity = "routine"
	SeveritySelfCare  Severity = "self_care"
)

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
}

type Profile struct {
	Age        int      `json:"age,omitempty"`
	Sex        string   `json:"sex,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
	Allergies  []string `json:"allergies,omitempty"`
}

// Request is one validated user submission entering the pipeline.
type Request struct {
	SessionID string
	Message   string
	Language  string
	InputMode string
	History   []Turn
	Location  *Location
	Profile   *Profile
}

func (r Request) HasHistory() bool {
	return len(r.History) > 0
}

type TellDoctor struct {
	English string `json:"english"`
	Local   string `json:"local"`
}

type ActionPlan struct {
	GoTo             string     `json:"go_to"`
	CareLevel        string     `json:"care_level"`
	Urgency          string     `json:"urgency"`
	TellDoctor       TellDoctor `json:"tell_doctor"`
	DoNot            []string   `json:"do_not"`
	FirstAid         []string   `json:"first_aid"`
	EmergencyNumbers []string   `json:"emergency_numbers,omitempty"`
}

// TriageResult is the terminal payload of a completed exchange.
type TriageResult struct {
	Severity           Severity   `json:"severity"`
	Confidence         float64    `json:"confidence"`
	SymptomsIdentified []string   `json:"symptoms_identified"`
	RedFlags           []string   `json:"red_flags"`
	NeedsFollowUp      bool       `json:"needs_follow_up"`
	FollowUpQuestion   string     `json:"follow_up_question,omitempty"`
	ActionPlan         ActionPlan `json:"action_plan"`
}

// EmergencyDetection is the pre-screen verdict. MatchedKeywords keeps
// scan order.
type EmergencyDetection struct {
	IsEmergency     bool     `json:"is_emergency"`
	MatchedKeywords []string `json:"matched_keywords"`
}
