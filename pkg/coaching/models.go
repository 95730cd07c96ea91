package coaching

// Status values shared by profiles and registration requests.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Appointment status values.
const (
	AppointmentPending     = "pending"
	AppointmentConfirmed   = "confirmed"
	AppointmentCompleted   = "completed"
	AppointmentCancelled   = "cancelled"
	AppointmentRescheduled = "rescheduled"
)

// Agreement template status values.
const (
	AgreementActive   = "active"
	AgreementInactive = "inactive"
)

// CoachingSignedAgreement is the coaching status of a freshly assigned
// coachee agreement.
const CoachingSignedAgreement = "agreement_signed"

// Base carries the fields the backend adds to every record.
type Base struct {
	ID          string `json:"id,omitempty"`
	BoardID     string `json:"boardId,omitempty"`
	CreatedDate string `json:"created_date,omitempty"`
	UpdatedDate string `json:"updated_date,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

type CoachProfile struct {
	Base
	UserID          string   `json:"user_id"`
	FullName        string   `json:"full_name"`
	Email           string   `json:"email,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
	HourlyRate      float64  `json:"hourly_rate,omitempty"`
	Rating          float64  `json:"rating,omitempty"`
	ProfileImageURL string   `json:"profile_image_url,omitempty"`
	VideoIntroURL   string   `json:"video_intro_url,omitempty"`
	IsPublished     bool     `json:"is_published"`
	Status          string   `json:"status,omitempty"`
}

type CoacheeProfile struct {
	Base
	UserID   string   `json:"user_id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Company  string   `json:"company,omitempty"`
	Role     string   `json:"role,omitempty"`
	Goals    []string `json:"goals,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// TimeSlot is a bookable window in a coach's calendar. Date is YYYY-MM-DD,
// times are HH:MM.
type TimeSlot struct {
	Base
	CoachID         string `json:"coach_id"`
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	IsAvailable     bool   `json:"is_available"`
	AppointmentID   string `json:"appointment_id,omitempty"`
}

type Appointment struct {
	Base
	CoachID          string `json:"coach_id"`
	CoachName        string `json:"coach_name,omitempty"`
	CoacheeID        string `json:"coachee_id"`
	CoacheeName      string `json:"coachee_name,omitempty"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	DurationMinutes  int    `json:"duration_minutes"`
	Status           string `json:"status"`
	Notes            string `json:"notes,omitempty"`
	SessionNotes     string `json:"session_notes,omitempty"`
	RescheduledCount int    `json:"rescheduled_count"`
}

type Message struct {
	Base
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name,omitempty"`
	ReceiverID   string `json:"receiver_id"`
	ReceiverName string `json:"receiver_name,omitempty"`
	Content      string `json:"content"`
	IsRead       bool   `json:"is_read"`
}

type Document struct {
	Base
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FileURL     string `json:"file_url"`
	FileName    string `json:"file_name,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	Category    string `json:"category,omitempty"`
}

// CoachingAgreement is an agreement template a coach offers to coachees.
type CoachingAgreement struct {
	Base
	CoachID     string `json:"coach_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	ValidUntil  string `json:"valid_until,omitempty"`
}

// CoacheeAgreement assigns one of a coach's agreement templates to a coachee
// and tracks where that coaching relationship stands.
type CoacheeAgreement struct {
	Base
	CoachID             string `json:"coach_id"`
	CoacheeID           string `json:"coachee_id,omitempty"`
	CoacheeName         string `json:"coachee_name,omitempty"`
	AgreementTemplateID string `json:"agreement_template_id,omitempty"`
	AgreementTitle      string `json:"agreement_title,omitempty"`
	CoachingStatus      string `json:"coaching_status,omitempty"`
}

type CoacheeMatchingProfile struct {
	Base
	CoacheeID          string   `json:"coachee_id"`
	Goals              []string `json:"goals,omitempty"`
	PreferredLanguages []string `json:"preferred_languages,omitempty"`
	Specializations    []string `json:"specializations,omitempty"`
	MatchedCoachIDs    []string `json:"matched_coach_ids,omitempty"`
}

// User is the account returned by /auth/me.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
	UserType string `json:"user_type,omitempty"`
}

// EffectiveRole returns the user type ("admin", "coach", "coachee") falling
// back to the platform role.
func (u User) EffectiveRole() string {
	if u.UserType != "" {
		return u.UserType
	}
	return u.Role
}
